package entity

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type setter func(field reflect.Value, raw any) error

var (
	uuidType = reflect.TypeFor[uuid.UUID]()
	timeType = reflect.TypeFor[time.Time]()
)

// timeLayouts are tried in order when a temporal property arrives as text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// temporal is implemented by the driver's Date and LocalDateTime values.
type temporal interface {
	Time() time.Time
}

func isScalar(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == uuidType || t == timeType {
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func setterFor(t reflect.Type) setter {
	if t.Kind() == reflect.Pointer {
		elem := setterFor(t.Elem())
		return func(field reflect.Value, raw any) error {
			p := reflect.New(t.Elem())
			if err := elem(p.Elem(), raw); err != nil {
				return err
			}
			field.Set(p)
			return nil
		}
	}

	switch {
	case t == uuidType:
		return setUUID
	case t == timeType:
		return setTime
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return setInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return setUint
	case reflect.Float32, reflect.Float64:
		return setFloat
	case reflect.Bool:
		return setBool
	case reflect.String:
		return setString
	default:
		return setAssign
	}
}

func setUUID(field reflect.Value, raw any) error {
	if id, ok := raw.(uuid.UUID); ok {
		field.Set(reflect.ValueOf(id))
		return nil
	}
	id, err := uuid.Parse(text(raw))
	if err != nil {
		return fmt.Errorf("parsing identifier: %w", err)
	}
	field.Set(reflect.ValueOf(id))
	return nil
}

func setTime(field reflect.Value, raw any) error {
	var ts time.Time
	switch v := raw.(type) {
	case time.Time:
		ts = v
	case temporal:
		ts = v.Time()
	default:
		parsed, err := parseTime(text(raw))
		if err != nil {
			return err
		}
		ts = parsed
	}
	field.Set(reflect.ValueOf(ts))
	return nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing time %q", s)
}

func setInt(field reflect.Value, raw any) error {
	n, err := strconv.ParseInt(text(raw), 10, field.Type().Bits())
	if err != nil {
		return fmt.Errorf("parsing integer: %w", err)
	}
	field.SetInt(n)
	return nil
}

func setUint(field reflect.Value, raw any) error {
	n, err := strconv.ParseUint(text(raw), 10, field.Type().Bits())
	if err != nil {
		return fmt.Errorf("parsing unsigned integer: %w", err)
	}
	field.SetUint(n)
	return nil
}

func setFloat(field reflect.Value, raw any) error {
	n, err := strconv.ParseFloat(text(raw), field.Type().Bits())
	if err != nil {
		return fmt.Errorf("parsing float: %w", err)
	}
	field.SetFloat(n)
	return nil
}

func setBool(field reflect.Value, raw any) error {
	b, err := strconv.ParseBool(text(raw))
	if err != nil {
		return fmt.Errorf("parsing boolean: %w", err)
	}
	field.SetBool(b)
	return nil
}

func setString(field reflect.Value, raw any) error {
	field.SetString(text(raw))
	return nil
}

func setAssign(field reflect.Value, raw any) error {
	v := reflect.ValueOf(raw)
	switch {
	case v.Type().AssignableTo(field.Type()):
		field.Set(v)
	case v.Type().ConvertibleTo(field.Type()):
		field.Set(v.Convert(field.Type()))
	default:
		return fmt.Errorf("cannot assign %T to %s", raw, field.Type())
	}
	return nil
}

// text renders a raw driver value for the string-based parsers.
func text(raw any) string {
	if s, ok := raw.(string); ok {
		return s
	}
	return Format(raw)
}

// Format renders a property value the way it is stored and compared:
// identifiers in canonical form, times as RFC 3339 in UTC, everything else via fmt.
// Literal quoting in queries and command parameters both go through Format so
// that stored and compared representations agree.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case uuid.UUID:
		return x.String()
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case temporal:
		return x.Time().UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		return Format(rv.Elem().Interface())
	}
	return fmt.Sprint(v)
}
