package navigation

import "github.com/whiteknight/neoknight/internal/entity"

// Strategy is a chain plus the root step a query starts from.
type Strategy struct {
	chain *Chain
	root  StepID
}

// New builds a strategy from the root of a chain.
func New[T any](root Node[T]) *Strategy {
	return &Strategy{chain: root.chain, root: root.id}
}

// Single is the default strategy: one node, no relationships.
func Single(d *entity.Descriptor) *Strategy {
	c := &Chain{}
	return &Strategy{chain: c, root: c.add(d)}
}

// Default returns s, or Single(d) when s is nil.
func Default(s *Strategy, d *entity.Descriptor) *Strategy {
	if s != nil {
		return s
	}
	return Single(d)
}

// Chain returns the underlying chain.
func (s *Strategy) Chain() *Chain { return s.chain }

// Root returns the root step id.
func (s *Strategy) Root() StepID { return s.root }

// RootStep returns the root step.
func (s *Strategy) RootStep() Step { return s.chain.Step(s.root) }

// RootOnly drops every relationship, keeping the root entity.
func (s *Strategy) RootOnly() *Strategy {
	return Single(s.RootStep().Entity)
}

// Steps lists the steps reachable from the root in depth-first preorder,
// following edges in declaration order. Each step appears once.
func (s *Strategy) Steps() []StepID {
	var out []StepID
	seen := make(map[StepID]bool)
	var walk func(StepID)
	walk = func(id StepID) {
		if id == End || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
		for _, e := range s.chain.steps[id].Edges {
			walk(e.To)
		}
	}
	walk(s.root)
	return out
}

// Traversal is one edge visited while walking a strategy.
type Traversal struct {
	From StepID
	Edge Edge
	// Revisit reports that the target was already reached through another edge.
	Revisit bool
}

// Edges lists every edge reachable from the root in the same depth-first order
// as Steps. Edges into an already visited step are reported with Revisit set
// and not descended again.
func (s *Strategy) Edges() []Traversal {
	var out []Traversal
	seen := map[StepID]bool{s.root: true}
	var walk func(StepID)
	walk = func(id StepID) {
		for _, e := range s.chain.steps[id].Edges {
			revisit := seen[e.To]
			out = append(out, Traversal{From: id, Edge: e, Revisit: revisit})
			if revisit {
				continue
			}
			seen[e.To] = true
			walk(e.To)
		}
	}
	walk(s.root)
	return out
}
