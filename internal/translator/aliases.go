package translator

import (
	"fmt"

	"github.com/whiteknight/neoknight/internal/navigation"
)

// MaxAliases is the number of single-letter aliases available.
const MaxAliases = 26

// AliasTable maps navigation steps to single-letter Cypher aliases. A table is
// built per translation and must be handed to the mapper together with the rows
// of that translation.
type AliasTable map[navigation.StepID]byte

// AllocateAliases assigns 'a', 'b', ... to the steps of s in traversal order.
// Steps reached twice keep their first alias.
func AllocateAliases(s *navigation.Strategy) (AliasTable, error) {
	steps := s.Steps()
	if len(steps) > MaxAliases {
		return nil, fmt.Errorf("%w: %d steps", ErrAliasOverflow, len(steps))
	}
	t := make(AliasTable, len(steps))
	for i, id := range steps {
		t[id] = 'a' + byte(i)
	}
	return t, nil
}

// Alias returns the alias of a step.
func (t AliasTable) Alias(id navigation.StepID) (string, bool) {
	c, ok := t[id]
	if !ok {
		return "", false
	}
	return string(c), true
}

// Relationship returns the alias of the edge between two steps, "a_b".
func (t AliasTable) Relationship(from, to navigation.StepID) (string, bool) {
	f, ok := t.Alias(from)
	if !ok {
		return "", false
	}
	n, ok := t.Alias(to)
	if !ok {
		return "", false
	}
	return f + "_" + n, true
}
