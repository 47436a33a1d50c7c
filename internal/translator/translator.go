// Package translator compiles query commands into Cypher.
//
// A translation allocates one alias per navigation step, renders the MATCH
// pattern from the navigation, the WHERE clause from the specification and
// assembles the query and count commands. The alias table travels with the
// result so the mapper can find the same columns in the returned rows.
package translator

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/whiteknight/neoknight/internal/entity"
	"github.com/whiteknight/neoknight/internal/logger"
	"github.com/whiteknight/neoknight/internal/navigation"
	"github.com/whiteknight/neoknight/internal/query"
)

// Translator compiles commands for entity type T. It holds no per-query state
// and is safe for concurrent use.
type Translator[T any] struct {
	entity *entity.Descriptor
	logger *slog.Logger
}

// New creates a translator for T. A nil logger uses the package default.
func New[T any](l *slog.Logger) (*Translator[T], error) {
	d, err := entity.Of[T]()
	if err != nil {
		return nil, fmt.Errorf("describing entity: %w", err)
	}
	return &Translator[T]{
		entity: d,
		logger: logger.OrDefault(l).With(logger.Scope("translator"), slog.String("entity", d.Label)),
	}, nil
}

// Entity returns the descriptor of T.
func (t *Translator[T]) Entity() *entity.Descriptor {
	return t.entity
}

// Query compiles a filtered query and its count. It fails with ErrUnparsable
// when the specification cannot be expressed in Cypher.
func (t *Translator[T]) Query(cmd query.Command[T]) (*Result, error) {
	if p := cmd.Paging; p != nil && (p.Page < 0 || p.Size < 0) {
		return nil, &InvariantError{Node: "paging", Reason: fmt.Sprintf("negative page %d or size %d", p.Page, p.Size)}
	}
	strategy, aliases, err := t.prepare(cmd.Navigation)
	if err != nil {
		return nil, err
	}

	pattern, returns, err := match(strategy, aliases, "")
	if err != nil {
		return nil, err
	}
	root, _ := aliases.Alias(strategy.Root())

	filter, err := where(root, cmd.Specification)
	if err != nil {
		if errors.Is(err, ErrUnparsable) {
			t.logger.Debug("specification not translatable", logger.Error(err))
		}
		return nil, err
	}

	head := pattern + " WHERE " + filter

	var b strings.Builder
	b.WriteString(head)
	b.WriteString(" RETURN ")
	b.WriteString(strings.Join(returns, ", "))
	if o := cmd.Order; o != nil && o.Property != "" {
		p, err := property(root, o.Property)
		if err != nil {
			return nil, err
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(p)
		if o.Descending {
			b.WriteString(" DESC")
		}
	}
	if p := cmd.Paging; p != nil {
		b.WriteString(" SKIP ")
		b.WriteString(strconv.Itoa(p.Page))
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(p.Size))
	}

	res := &Result{
		QueryText:   b.String(),
		CountText:   head + " RETURN count(DISTINCT " + root + ") AS " + CountColumn,
		CountColumn: CountColumn,
		Parameters:  map[string]any{},
		Aliases:     aliases,
		Strategy:    strategy,
		Returns:     returns,
	}
	t.logger.Debug("compiled query", slog.String("cypher", res.QueryText), slog.String("count", res.CountText))
	return res, nil
}

// All compiles an unfiltered query over the root entity only. Repositories use
// it when a specification has to be evaluated client side.
func (t *Translator[T]) All() (*Result, error) {
	return t.Query(query.Command[T]{Navigation: navigation.Single(t.entity)})
}

// Single compiles a key lookup. QueryText returns the record; use WithAction
// on the result for other verbs.
func (t *Translator[T]) Single(cmd query.SingleRecordCommand[T]) (*Result, error) {
	if t.entity.Key == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoKey, t.entity.Label)
	}
	strategy, aliases, err := t.prepare(cmd.Navigation)
	if err != nil {
		return nil, err
	}

	filter := " { " + ident(t.entity.Key) + ": $" + KeyParameter + " }"
	pattern, returns, err := match(strategy, aliases, filter)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Parameters: map[string]any{KeyParameter: entity.Format(cmd.Key)},
		Aliases:    aliases,
		Strategy:   strategy,
		Returns:    returns,
		Template:   pattern + " " + ActionCommandPlaceholder,
	}
	res.QueryText = res.WithAction(ActionReturn)
	t.logger.Debug("compiled single record command", slog.String("cypher", res.Template))
	return res, nil
}

// Update compiles an upsert. Keyed entities MERGE on the key and SET the other
// written properties; keyless entities MERGE on every written property.
// Parameter names are the lower-cased property names.
func (t *Translator[T]) Update(cmd query.UpdateCommand[T]) (*Result, error) {
	if cmd.Entity == nil {
		return nil, &InvariantError{Node: t.entity.Label, Reason: "update without entity"}
	}
	mappings, err := t.entity.CommandMappings(cmd.Entity)
	if err != nil {
		return nil, err
	}

	params := make(map[string]any, len(mappings))
	var key *entity.Mapping
	var written []entity.Mapping
	for i, m := range mappings {
		if m.Property == t.entity.Key {
			key = &mappings[i]
			params[m.Parameter] = m.Value
			continue
		}
		if len(cmd.Include) > 0 && !slices.Contains(cmd.Include, m.Property) {
			continue
		}
		if slices.Contains(cmd.Exclude, m.Property) {
			continue
		}
		written = append(written, m)
		params[m.Parameter] = m.Value
	}

	var b strings.Builder
	b.WriteString("MERGE (")
	b.WriteString(CommonNodeAlias)
	b.WriteString(":")
	b.WriteString(ident(t.entity.Label))
	switch {
	case key != nil:
		b.WriteString(" { " + assignment(*key, ": ") + " })")
		for i, m := range written {
			if i == 0 {
				b.WriteString(" SET ")
			} else {
				b.WriteString(", ")
			}
			b.WriteString(CommonNodeAlias + "." + assignment(m, " = "))
		}
	case len(written) > 0:
		parts := make([]string, len(written))
		for i, m := range written {
			parts[i] = assignment(m, ": ")
		}
		b.WriteString(" { " + strings.Join(parts, ", ") + " })")
	default:
		return nil, &InvariantError{Node: t.entity.Label, Reason: "update writes no properties"}
	}
	b.WriteString(" RETURN ")
	b.WriteString(CommonNodeAlias)

	strategy := navigation.Single(t.entity)
	aliases, err := AllocateAliases(strategy)
	if err != nil {
		return nil, err
	}
	res := &Result{
		QueryText:  b.String(),
		Parameters: params,
		Aliases:    aliases,
		Strategy:   strategy,
		Returns:    []string{CommonNodeAlias},
	}
	t.logger.Debug("compiled update command", slog.String("cypher", res.QueryText))
	return res, nil
}

func assignment(m entity.Mapping, sep string) string {
	return ident(m.Property) + sep + "$" + m.Parameter
}

func (t *Translator[T]) prepare(s *navigation.Strategy) (*navigation.Strategy, AliasTable, error) {
	s = navigation.Default(s, t.entity)
	if root := s.RootStep().Entity; root != t.entity {
		return nil, nil, &InvariantError{
			Node:   root.Type.String(),
			Reason: "navigation root does not match " + t.entity.Type.String(),
		}
	}
	aliases, err := AllocateAliases(s)
	if err != nil {
		return nil, nil, err
	}
	return s, aliases, nil
}
