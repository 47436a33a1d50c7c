// Package navigation describes which relationships a query traverses from its
// root entity and how loaded children are attached to their parents.
//
// A Chain is an arena of steps addressed by StepID. Edges only point at steps
// created after their source, so every chain is acyclic while branches may
// still reconverge on a shared step.
package navigation

import (
	"fmt"

	"github.com/whiteknight/neoknight/internal/entity"
)

// StepID indexes a step within its Chain.
type StepID int

// End is the terminal sentinel answered by steps without outgoing edges.
const End StepID = -1

// LinkFunc attaches child to parent. Both arguments are entity pointers.
type LinkFunc func(parent, child any)

// Edge is a relationship leaving a step.
type Edge struct {
	// Relationship is the label of the edge leaving the source step.
	Relationship string
	// Link may be nil: children are still loaded but not attached.
	Link LinkFunc
	To   StepID
}

// Step is one entity position in a chain.
type Step struct {
	Entity *entity.Descriptor
	Edges  []Edge
}

// Next returns the target of the first edge, or End.
func (s Step) Next() StepID {
	if len(s.Edges) == 0 {
		return End
	}
	return s.Edges[0].To
}

// Chain owns the steps of a navigation.
type Chain struct {
	steps []Step
}

// Step returns the step with the given id.
func (c *Chain) Step(id StepID) Step {
	return c.steps[id]
}

// Len reports the number of steps.
func (c *Chain) Len() int {
	return len(c.steps)
}

func (c *Chain) add(d *entity.Descriptor) StepID {
	c.steps = append(c.steps, Step{Entity: d})
	return StepID(len(c.steps) - 1)
}

func (c *Chain) connect(from StepID, label string, link LinkFunc, to StepID) {
	c.steps[from].Edges = append(c.steps[from].Edges, Edge{Relationship: label, Link: link, To: to})
}

// Node is a typed handle on a step; it keeps link callbacks type-checked.
type Node[T any] struct {
	chain *Chain
	id    StepID
}

// ID returns the step id.
func (n Node[T]) ID() StepID { return n.id }

// Chain returns the chain the node belongs to.
func (n Node[T]) Chain() *Chain { return n.chain }

// Start creates a new chain rooted at T.
func Start[T any]() Node[T] {
	c := &Chain{}
	return Node[T]{chain: c, id: c.add(entity.MustOf[T]())}
}

// Then adds a step of type C reached from `from` over the relationship label.
// link may be nil.
func Then[P, C any](from Node[P], label string, link func(*P, *C)) Node[C] {
	id := from.chain.add(entity.MustOf[C]())
	from.chain.connect(from.id, label, Link(link), id)
	return Node[C]{chain: from.chain, id: id}
}

// Connect adds an edge between two existing steps of the same chain. The target
// must have been created after the source.
func Connect[P, C any](from Node[P], label string, to Node[C], link func(*P, *C)) {
	if from.chain != to.chain {
		panic("navigation: cannot connect steps of different chains")
	}
	if to.id <= from.id {
		panic(fmt.Sprintf("navigation: edge %d -> %d would create a cycle", from.id, to.id))
	}
	from.chain.connect(from.id, label, Link(link), to.id)
}

// Link erases the types of a typed callback. A nil fn gives a nil LinkFunc.
func Link[P, C any](fn func(*P, *C)) LinkFunc {
	if fn == nil {
		return nil
	}
	return func(parent, child any) {
		p, ok := parent.(*P)
		if !ok {
			return
		}
		c, ok := child.(*C)
		if !ok {
			return
		}
		fn(p, c)
	}
}
