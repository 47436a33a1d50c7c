package translator

import (
	"strings"

	"github.com/whiteknight/neoknight/internal/navigation"
)

const (
	// ActionCommandPlaceholder stands in for the verb of a keyed command
	// until the caller picks one with WithAction.
	ActionCommandPlaceholder = "|ACTION_COMMAND|"

	// CommonNodeAlias is the root alias of every translation.
	CommonNodeAlias = "a"

	// CountColumn is the column count queries return.
	CountColumn = "count"

	// KeyParameter is the parameter holding the key of keyed commands.
	KeyParameter = "id"
)

// Action is the verb substituted into a keyed command.
type Action int

const (
	ActionReturn Action = iota
	ActionDelete
)

// Result is one compiled command.
type Result struct {
	QueryText   string
	CountText   string
	CountColumn string
	Parameters  map[string]any
	Aliases     AliasTable
	Strategy    *navigation.Strategy
	// Returns lists the returned columns in the order the mapper reads them.
	Returns []string
	// Template is the keyed command before its action is resolved.
	Template string
}

// WithAction resolves the action placeholder of a keyed command.
func (r *Result) WithAction(a Action) string {
	var verb string
	switch a {
	case ActionDelete:
		verb = "DETACH DELETE " + CommonNodeAlias
	default:
		verb = "RETURN " + strings.Join(r.Returns, ", ")
	}
	return strings.Replace(r.Template, ActionCommandPlaceholder, verb, 1)
}
