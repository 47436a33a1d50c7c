package translator

import (
	"fmt"
	"strings"

	"github.com/whiteknight/neoknight/internal/entity"
	"github.com/whiteknight/neoknight/internal/navigation"
	"github.com/whiteknight/neoknight/internal/specification"
)

// match renders the MATCH pattern of s and the columns it makes returnable.
// rootFilter is an inline property map for the root node, or empty.
func match(s *navigation.Strategy, aliases AliasTable, rootFilter string) (string, []string, error) {
	chain := s.Chain()
	root, ok := aliases.Alias(s.Root())
	if !ok {
		return "", nil, &InvariantError{Node: "navigation", Reason: "root step has no alias"}
	}

	var b strings.Builder
	b.WriteString("MATCH (")
	b.WriteString(root)
	b.WriteString(":")
	b.WriteString(ident(s.RootStep().Entity.Label))
	b.WriteString(rootFilter)
	b.WriteString(")")

	returns := []string{root}
	last := s.Root()
	for _, t := range s.Edges() {
		from, _ := aliases.Alias(t.From)
		to, ok := aliases.Alias(t.Edge.To)
		if !ok {
			return "", nil, &InvariantError{Node: "navigation", Reason: fmt.Sprintf("step %d has no alias", t.Edge.To)}
		}
		rel := from + "_" + to

		if t.From != last {
			b.WriteString(", (")
			b.WriteString(from)
			b.WriteString(")")
		}
		b.WriteString("-[")
		b.WriteString(rel)
		b.WriteString(":")
		b.WriteString(ident(t.Edge.Relationship))
		b.WriteString("]->(")
		b.WriteString(to)
		if !t.Revisit {
			b.WriteString(":")
			b.WriteString(ident(chain.Step(t.Edge.To).Entity.Label))
		}
		b.WriteString(")")
		last = t.Edge.To

		returns = append(returns, rel)
		if !t.Revisit {
			returns = append(returns, to)
		}
	}
	return b.String(), returns, nil
}

// where renders s as a boolean expression over alias. Incompatible nodes fail
// the whole expression.
func where(alias string, s specification.Specification) (string, error) {
	switch n := s.(type) {
	case nil, specification.All:
		return "1=1", nil
	case specification.None:
		return "0=1", nil
	case specification.Equals:
		p, err := property(alias, n.Property)
		if err != nil {
			return "", err
		}
		return p + " = " + quote(n.Value), nil
	case specification.And:
		return binary(alias, "AND", n.Left, n.Right)
	case specification.Or:
		return binary(alias, "OR", n.Left, n.Right)
	case specification.Not:
		inner, err := where(alias, n.Inner)
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil
	case specification.StartsWith:
		return stringMatch(alias, n.Property, "STARTS WITH", n.Value)
	case specification.EndsWith:
		return stringMatch(alias, n.Property, "ENDS WITH", n.Value)
	case specification.Contains:
		return stringMatch(alias, n.Property, "CONTAINS", n.Value)
	case specification.Incompatible:
		return "", fmt.Errorf("%w: %s", ErrUnparsable, n.Description)
	default:
		return "", &InvariantError{Node: fmt.Sprintf("%T", s), Reason: "unsupported specification type"}
	}
}

func binary(alias, op string, left, right specification.Specification) (string, error) {
	l, err := where(alias, left)
	if err != nil {
		return "", err
	}
	r, err := where(alias, right)
	if err != nil {
		return "", err
	}
	return "(" + l + " " + op + " " + r + ")", nil
}

func stringMatch(alias, prop, op, value string) (string, error) {
	p, err := property(alias, prop)
	if err != nil {
		return "", err
	}
	return p + " " + op + " " + quote(value), nil
}

// property renders alias.Property. Paths into related entities are not
// supported server side.
func property(alias, name string) (string, error) {
	if name == "" {
		return "", &InvariantError{Node: "property", Reason: "empty property name"}
	}
	if strings.Contains(name, ".") {
		return "", fmt.Errorf("%w: nested property %q", ErrUnparsable, name)
	}
	return alias + "." + ident(name), nil
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// quote renders every literal as a single-quoted string.
func quote(v any) string {
	return "'" + literalEscaper.Replace(entity.Format(v)) + "'"
}

// ident backtick-quotes names that are not plain identifiers.
func ident(name string) string {
	plain := name != ""
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			plain = false
		}
	}
	if plain {
		return name
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
