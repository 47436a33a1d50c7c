package specification

import (
	"errors"
	"fmt"
	"strings"

	"github.com/whiteknight/neoknight/internal/entity"
)

// ErrNoMatcher is returned when an Incompatible node has no in-memory predicate.
var ErrNoMatcher = errors.New("incompatible specification has no in-memory matcher")

// Getter reads a named property from an entity.
type Getter func(obj any, property string) (any, bool)

// DescriptorGetter adapts an entity descriptor to a Getter.
func DescriptorGetter(d *entity.Descriptor) Getter {
	return d.Get
}

// Evaluate applies s to obj in memory. Values are compared through
// entity.Format, the same representation the Cypher translator quotes, so a
// predicate gives the same answer on both sides of the fallback. A property the
// entity does not have never matches.
func Evaluate(s Specification, obj any, get Getter) (bool, error) {
	switch n := s.(type) {
	case nil, All:
		return true, nil
	case None:
		return false, nil
	case Equals:
		v, ok := get(obj, n.Property)
		return ok && entity.Format(v) == entity.Format(n.Value), nil
	case And:
		l, err := Evaluate(n.Left, obj, get)
		if err != nil || !l {
			return false, err
		}
		return Evaluate(n.Right, obj, get)
	case Or:
		l, err := Evaluate(n.Left, obj, get)
		if err != nil || l {
			return l, err
		}
		return Evaluate(n.Right, obj, get)
	case Not:
		inner, err := Evaluate(n.Inner, obj, get)
		return !inner, err
	case StartsWith:
		return text(obj, n.Property, get, func(s string) bool { return strings.HasPrefix(s, n.Value) }), nil
	case EndsWith:
		return text(obj, n.Property, get, func(s string) bool { return strings.HasSuffix(s, n.Value) }), nil
	case Contains:
		return text(obj, n.Property, get, func(s string) bool { return strings.Contains(s, n.Value) }), nil
	case Incompatible:
		if n.Match == nil {
			return false, fmt.Errorf("%w: %s", ErrNoMatcher, n.Description)
		}
		return n.Match(obj), nil
	default:
		return false, fmt.Errorf("unsupported specification type: %T", s)
	}
}

func text(obj any, property string, get Getter, match func(string) bool) bool {
	v, ok := get(obj, property)
	if !ok || v == nil {
		return false
	}
	return match(entity.Format(v))
}
