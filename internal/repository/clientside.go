package repository

import (
	"cmp"
	"reflect"
	"slices"
	"time"

	"github.com/whiteknight/neoknight/internal/entity"
	"github.com/whiteknight/neoknight/internal/query"
	"github.com/whiteknight/neoknight/internal/specification"
)

// applyInMemory filters, orders and pages records the way the compiled query
// would have. The count is taken before paging.
func applyInMemory[T any](d *entity.Descriptor, cmd query.Command[T], records []*T) ([]*T, int64, error) {
	get := specification.DescriptorGetter(d)

	filtered := make([]*T, 0, len(records))
	for _, rec := range records {
		ok, err := specification.Evaluate(cmd.Specification, rec, get)
		if err != nil {
			return nil, 0, err
		}
		if ok {
			filtered = append(filtered, rec)
		}
	}

	if o := cmd.Order; o != nil && o.Property != "" {
		slices.SortStableFunc(filtered, func(x, y *T) int {
			a, _ := d.Get(x, o.Property)
			b, _ := d.Get(y, o.Property)
			c := compareValues(a, b)
			if o.Descending {
				return -c
			}
			return c
		})
	}

	count := int64(len(filtered))
	if p := cmd.Paging; p != nil {
		filtered = window(filtered, p.Page, p.Size)
	}
	return filtered, count, nil
}

// window mirrors SKIP page LIMIT size.
func window[T any](records []T, skip, limit int) []T {
	skip = max(skip, 0)
	if skip >= len(records) {
		return records[:0]
	}
	records = records[skip:]
	if limit >= 0 && limit < len(records) {
		records = records[:limit]
	}
	return records
}

// compareValues orders two property values of the same field. Nil sorts first;
// values without a natural order compare by their formatted text.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() == vb.Kind() {
		switch va.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return cmp.Compare(va.Int(), vb.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return cmp.Compare(va.Uint(), vb.Uint())
		case reflect.Float32, reflect.Float64:
			return cmp.Compare(va.Float(), vb.Float())
		case reflect.Bool:
			return cmp.Compare(boolRank(va.Bool()), boolRank(vb.Bool()))
		case reflect.String:
			return cmp.Compare(va.String(), vb.String())
		}
	}
	return cmp.Compare(entity.Format(a), entity.Format(b))
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
