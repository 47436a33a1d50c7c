// Package mapper rebuilds typed object graphs from the flat rows of a
// translated query.
//
// The mapper walks the same navigation strategy and alias table the query was
// compiled with. Root nodes are taken once each; children are found by
// following relationship columns whose start node is the current parent, so a
// cross-product shaped result set still yields one object per node per parent.
package mapper

import (
	"fmt"
	"log/slog"

	"github.com/whiteknight/neoknight/internal/graph"
	"github.com/whiteknight/neoknight/internal/logger"
	"github.com/whiteknight/neoknight/internal/navigation"
	"github.com/whiteknight/neoknight/internal/translator"
)

// Mapper maps rows onto T. It keeps no state between calls.
type Mapper[T any] struct {
	logger *slog.Logger
}

// New creates a mapper. A nil logger uses the package default.
func New[T any](l *slog.Logger) *Mapper[T] {
	return &Mapper[T]{logger: logger.OrDefault(l).With(logger.Scope("mapper"))}
}

// Map returns one T per distinct root node, with descendants attached through
// the strategy's link callbacks. Columns missing from the rows truncate the
// affected branch with a warning; conversion failures are returned.
func (m *Mapper[T]) Map(s *navigation.Strategy, aliases translator.AliasTable, rows []graph.Row) ([]*T, error) {
	out := []*T{}
	if len(rows) == 0 {
		return out, nil
	}

	root := s.RootStep()
	alias, ok := aliases.Alias(s.Root())
	if !ok {
		alias = translator.CommonNodeAlias
	}
	if !rows[0].Has(alias) {
		m.logger.Warn("root alias missing from result", slog.String("alias", alias), slog.String("entity", root.Entity.Label))
		return out, nil
	}

	w := walk{logger: m.logger, strategy: s, aliases: aliases, rows: rows}
	for _, node := range distinctNodes(rows, alias, nil) {
		obj, err := root.Entity.Create(node.Props)
		if err != nil {
			return nil, err
		}
		typed, ok := obj.(*T)
		if !ok {
			return nil, fmt.Errorf("navigation root is %s, expected %T", root.Entity.Type, (*T)(nil))
		}
		if err := w.descend(obj, s.Root(), node.ElementID); err != nil {
			return nil, err
		}
		out = append(out, typed)
	}
	return out, nil
}

type walk struct {
	logger   *slog.Logger
	strategy *navigation.Strategy
	aliases  translator.AliasTable
	rows     []graph.Row
}

// descend attaches the children of obj along every edge leaving step.
func (w *walk) descend(obj any, step navigation.StepID, elementID string) error {
	chain := w.strategy.Chain()
	for _, edge := range chain.Step(step).Edges {
		relAlias, ok := w.aliases.Relationship(step, edge.To)
		if !ok {
			w.logger.Warn("navigation step without alias", slog.String("relationship", edge.Relationship))
			continue
		}
		childAlias, _ := w.aliases.Alias(edge.To)
		if !w.rows[0].Has(relAlias) || !w.rows[0].Has(childAlias) {
			w.logger.Warn("alias missing from result",
				slog.String("relationship", relAlias),
				slog.String("node", childAlias),
			)
			continue
		}

		ends := make(map[string]struct{})
		for _, row := range w.rows {
			v, _ := row.Get(relAlias)
			rel, ok := v.(graph.Relationship)
			if ok && rel.StartElementID == elementID {
				ends[rel.EndElementID] = struct{}{}
			}
		}
		if len(ends) == 0 {
			continue
		}

		desc := chain.Step(edge.To).Entity
		for _, node := range distinctNodes(w.rows, childAlias, ends) {
			child, err := desc.Create(node.Props)
			if err != nil {
				return err
			}
			if edge.Link != nil {
				edge.Link(obj, child)
			}
			if err := w.descend(child, edge.To, node.ElementID); err != nil {
				return err
			}
		}
	}
	return nil
}

// distinctNodes returns the nodes under alias in first-seen order, one per
// element id. A non-nil filter keeps only the listed ids.
func distinctNodes(rows []graph.Row, alias string, filter map[string]struct{}) []graph.Node {
	seen := make(map[string]struct{})
	var nodes []graph.Node
	for _, row := range rows {
		v, _ := row.Get(alias)
		n, ok := v.(graph.Node)
		if !ok {
			continue
		}
		if _, dup := seen[n.ElementID]; dup {
			continue
		}
		if filter != nil {
			if _, keep := filter[n.ElementID]; !keep {
				continue
			}
		}
		seen[n.ElementID] = struct{}{}
		nodes = append(nodes, n)
	}
	return nodes
}
