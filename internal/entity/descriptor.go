// Package entity describes how Go structs map onto graph node properties.
//
// A Descriptor is built once per struct type and cached. It carries the node
// label, the identifier property and one typed setter per exported field, so
// mapping a row never re-inspects the type.
//
// Field names become property names unless a `graph` tag overrides them:
//
//	type Customer struct {
//		CustomerID uuid.UUID `graph:"CustomerId,key"`
//		Name       string
//		Orders     []*Order  `graph:"-"`
//	}
package entity

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// TagName is the struct tag read by Describe.
const TagName = "graph"

// ErrNotStruct is returned when a descriptor is requested for a non-struct type.
var ErrNotStruct = errors.New("entity type must be a struct")

// Labeler lets an entity choose its node label. The struct name is used otherwise.
type Labeler interface {
	NodeLabel() string
}

// Descriptor is the cached mapping between a struct type and node properties.
type Descriptor struct {
	Type  reflect.Type
	Label string
	// Key is the identifier property name, empty for keyless entities.
	Key string

	fields []*Field
	byName map[string]*Field
}

// Field is one mapped struct field.
type Field struct {
	Property string
	Scalar   bool

	index []int
	typ   reflect.Type
	set   setter
}

var cache sync.Map // reflect.Type -> *Descriptor

// Of returns the descriptor for T.
func Of[T any]() (*Descriptor, error) {
	return Describe(reflect.TypeFor[T]())
}

// MustOf is Of for package-level declarations; it panics on non-struct types.
func MustOf[T any]() *Descriptor {
	d, err := Of[T]()
	if err != nil {
		panic(err)
	}
	return d
}

// Describe returns the cached descriptor for t, building it on first use.
// Pointer types are dereferenced.
func Describe(t reflect.Type) (*Descriptor, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v", ErrNotStruct, t)
	}
	if d, ok := cache.Load(t); ok {
		return d.(*Descriptor), nil
	}

	d, err := build(t)
	if err != nil {
		return nil, err
	}
	actual, _ := cache.LoadOrStore(t, d)
	return actual.(*Descriptor), nil
}

func build(t reflect.Type) (*Descriptor, error) {
	d := &Descriptor{
		Type:   t,
		Label:  t.Name(),
		byName: make(map[string]*Field),
	}
	if l, ok := reflect.New(t).Interface().(Labeler); ok {
		d.Label = l.NodeLabel()
	}

	for _, sf := range reflect.VisibleFields(t) {
		if !sf.IsExported() || sf.Anonymous || !settable(t, sf.Index) {
			continue
		}
		name, opts, _ := strings.Cut(sf.Tag.Get(TagName), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}

		f := &Field{
			Property: name,
			Scalar:   isScalar(sf.Type),
			index:    sf.Index,
			typ:      sf.Type,
			set:      setterFor(sf.Type),
		}
		if _, dup := d.byName[name]; dup {
			return nil, fmt.Errorf("entity %s: duplicate property %q", t.Name(), name)
		}
		d.fields = append(d.fields, f)
		d.byName[name] = f

		if opts == "key" {
			if d.Key != "" {
				return nil, fmt.Errorf("entity %s: more than one key field", t.Name())
			}
			d.Key = name
		}
	}
	return d, nil
}

// Fields returns the mapped fields in declaration order.
func (d *Descriptor) Fields() []*Field {
	return d.fields
}

// Field looks up a mapped field by property name.
func (d *Descriptor) Field(property string) (*Field, bool) {
	f, ok := d.byName[property]
	return f, ok
}

// New allocates a zero entity and returns a pointer to it.
func (d *Descriptor) New() any {
	return reflect.New(d.Type).Interface()
}

// Create allocates an entity and populates it from a property bag.
func (d *Descriptor) Create(props map[string]any) (any, error) {
	ptr := reflect.New(d.Type)
	if err := d.populate(ptr.Elem(), props); err != nil {
		return nil, err
	}
	return ptr.Interface(), nil
}

// Populate assigns props onto the entity pointed to by obj. Properties the type
// does not declare are ignored; fields absent from props keep their value.
func (d *Descriptor) Populate(obj any, props map[string]any) error {
	v, err := d.structValue(obj)
	if err != nil {
		return err
	}
	return d.populate(v, props)
}

func (d *Descriptor) populate(v reflect.Value, props map[string]any) error {
	for name, raw := range props {
		f, ok := d.byName[name]
		if !ok || raw == nil {
			continue
		}
		if err := f.set(fieldForSet(v, f.index), raw); err != nil {
			return fmt.Errorf("%s.%s: %w", d.Label, name, err)
		}
	}
	return nil
}

// Get reads a property value from obj.
func (d *Descriptor) Get(obj any, property string) (any, bool) {
	f, ok := d.byName[property]
	if !ok {
		return nil, false
	}
	v, err := d.structValue(obj)
	if err != nil {
		return nil, false
	}
	fv, err := v.FieldByIndexErr(f.index)
	if err != nil {
		return nil, false
	}
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return nil, true
		}
		fv = fv.Elem()
	}
	return fv.Interface(), true
}

// KeyValue reads the identifier of obj.
func (d *Descriptor) KeyValue(obj any) (any, bool) {
	if d.Key == "" {
		return nil, false
	}
	return d.Get(obj, d.Key)
}

func (d *Descriptor) structValue(obj any) (reflect.Value, error) {
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, fmt.Errorf("nil %s", d.Label)
		}
		v = v.Elem()
	}
	if v.Type() != d.Type {
		return reflect.Value{}, fmt.Errorf("expected %s, got %s", d.Type, v.Type())
	}
	return v, nil
}

// settable reports whether the field at index can be reached for writing. A
// field promoted through an unexported embedded pointer cannot: the pointer
// could not be allocated.
func settable(t reflect.Type, index []int) bool {
	for _, i := range index[:len(index)-1] {
		sf := t.Field(i)
		t = sf.Type
		if t.Kind() == reflect.Pointer {
			if !sf.IsExported() {
				return false
			}
			t = t.Elem()
		}
	}
	return true
}

// fieldForSet walks index like FieldByIndex, allocating nil embedded pointers.
func fieldForSet(v reflect.Value, index []int) reflect.Value {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}
