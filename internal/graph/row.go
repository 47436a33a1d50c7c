package graph

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// Node is a node column of a result row.
type Node struct {
	ElementID string
	Labels    []string
	Props     map[string]any
}

// Relationship is a relationship column of a result row.
type Relationship struct {
	ElementID      string
	StartElementID string
	EndElementID   string
	Type           string
	Props          map[string]any
}

// Row is one result record keyed by column name.
type Row struct {
	Keys   []string
	Values []any
}

// Get returns the value of a column. A column that is present but null
// answers (nil, true).
func (r Row) Get(key string) (any, bool) {
	for i, k := range r.Keys {
		if k == key {
			return r.Values[i], true
		}
	}
	return nil, false
}

// Has reports whether the row carries the column.
func (r Row) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// NewRow builds a row from column/value pairs. It is mostly useful in tests.
func NewRow(pairs ...any) Row {
	var r Row
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Keys = append(r.Keys, pairs[i].(string))
		r.Values = append(r.Values, pairs[i+1])
	}
	return r
}

// FromRecord converts a driver record, replacing driver node and relationship
// values with Node and Relationship.
func FromRecord(rec *neo4j.Record) Row {
	r := Row{
		Keys:   append([]string(nil), rec.Keys...),
		Values: make([]any, len(rec.Values)),
	}
	for i, v := range rec.Values {
		r.Values[i] = convert(v)
	}
	return r
}

func convert(v any) any {
	switch x := v.(type) {
	case dbtype.Node:
		return Node{ElementID: x.ElementId, Labels: x.Labels, Props: x.Props}
	case dbtype.Relationship:
		return Relationship{
			ElementID:      x.ElementId,
			StartElementID: x.StartElementId,
			EndElementID:   x.EndElementId,
			Type:           x.Type,
			Props:          x.Props,
		}
	default:
		return v
	}
}
