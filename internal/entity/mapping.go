package entity

import (
	"reflect"
	"strconv"
	"strings"
)

// Mapping binds one entity property to a command parameter.
type Mapping struct {
	// Parameter is the lower-cased property name with every character that is
	// not a letter, digit or underscore replaced by an underscore.
	Parameter string
	Property  string
	// Value is the stored text representation (see Format).
	Value string
}

// CommandMappings lists the scalar properties of obj as command parameters in
// declaration order. Nil pointer fields are skipped. Parameter names are unique:
// a name already taken gets a numeric suffix.
func (d *Descriptor) CommandMappings(obj any) ([]Mapping, error) {
	v, err := d.structValue(obj)
	if err != nil {
		return nil, err
	}

	mappings := make([]Mapping, 0, len(d.fields))
	taken := make(map[string]bool, len(d.fields))
	for _, f := range d.fields {
		if !f.Scalar {
			continue
		}
		fv, err := v.FieldByIndexErr(f.index)
		if err != nil || (fv.Kind() == reflect.Pointer && fv.IsNil()) {
			continue
		}
		param := parameterName(f.Property)
		for i := 2; taken[param]; i++ {
			param = parameterName(f.Property) + "_" + strconv.Itoa(i)
		}
		taken[param] = true
		mappings = append(mappings, Mapping{
			Parameter: param,
			Property:  f.Property,
			Value:     Format(fv.Interface()),
		})
	}
	return mappings, nil
}

func parameterName(property string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, property)
	if name == "" || name[0] >= '0' && name[0] <= '9' {
		name = "p" + name
	}
	return name
}
