// Package specification holds the backend-agnostic predicate trees callers use
// to describe which entities a query should return.
//
// The variant set is closed: every node implements the unexported marker
// method, so translators can switch exhaustively and treat anything else as a
// programming error.
package specification

// Specification is a node of a predicate tree.
type Specification interface {
	specificationNode()
}

// All matches every entity.
type All struct{}

// None matches no entity.
type None struct{}

// Equals matches entities whose Property equals Value.
type Equals struct {
	Property string
	Value    any
}

// And matches when both sides match.
type And struct {
	Left  Specification
	Right Specification
}

// Or matches when either side matches.
type Or struct {
	Left  Specification
	Right Specification
}

// Not inverts Inner.
type Not struct {
	Inner Specification
}

// StartsWith matches string properties beginning with Value.
type StartsWith struct {
	Property string
	Value    string
}

// EndsWith matches string properties ending with Value.
type EndsWith struct {
	Property string
	Value    string
}

// Contains matches string properties containing Value.
type Contains struct {
	Property string
	Value    string
}

// Incompatible marks a predicate that cannot be expressed server-side.
// Translating a tree that contains one fails with an unparsable error and
// repositories fall back to client-side evaluation using Match.
type Incompatible struct {
	Description string
	// Match evaluates the predicate against a loaded entity pointer.
	Match func(entity any) bool
}

func (All) specificationNode()          {}
func (None) specificationNode()         {}
func (Equals) specificationNode()       {}
func (And) specificationNode()          {}
func (Or) specificationNode()           {}
func (Not) specificationNode()          {}
func (StartsWith) specificationNode()   {}
func (EndsWith) specificationNode()     {}
func (Contains) specificationNode()     {}
func (Incompatible) specificationNode() {}

// Eq is shorthand for Equals.
func Eq(property string, value any) Specification {
	return Equals{Property: property, Value: value}
}

// AndOf folds specs left to right with And. No arguments yields All.
func AndOf(specs ...Specification) Specification {
	return fold(specs, All{}, func(l, r Specification) Specification { return And{Left: l, Right: r} })
}

// OrOf folds specs left to right with Or. No arguments yields None.
func OrOf(specs ...Specification) Specification {
	return fold(specs, None{}, func(l, r Specification) Specification { return Or{Left: l, Right: r} })
}

// NotOf negates s.
func NotOf(s Specification) Specification {
	return Not{Inner: s}
}

// Where wraps a Go predicate as an Incompatible node.
func Where[T any](description string, match func(*T) bool) Specification {
	return Incompatible{
		Description: description,
		Match: func(entity any) bool {
			e, ok := entity.(*T)
			return ok && e != nil && match(e)
		},
	}
}

func fold(specs []Specification, empty Specification, join func(l, r Specification) Specification) Specification {
	if len(specs) == 0 {
		return empty
	}
	acc := specs[0]
	for _, s := range specs[1:] {
		acc = join(acc, s)
	}
	return acc
}
