package translator

import (
	"errors"
	"fmt"
)

var (
	// ErrUnparsable means the specification holds a node with no Cypher form.
	// Repositories answer it by evaluating the specification client side.
	ErrUnparsable = errors.New("specification cannot be translated to cypher")

	// ErrAliasOverflow means a navigation has more steps than single-letter aliases.
	ErrAliasOverflow = errors.New("navigation exceeds the alias range")

	// ErrNoKey means a keyed command was issued for an entity without a key property.
	ErrNoKey = errors.New("entity has no key property")
)

// InvariantError reports a command shape the translator does not know how to handle.
type InvariantError struct {
	Node   string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("translation invariant violated by %s: %s", e.Node, e.Reason)
}
