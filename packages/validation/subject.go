package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ErrUnknownAttribute is returned when a subject has no attribute with the
// requested name.
var ErrUnknownAttribute = errors.New("unknown attribute")

// StructSubject adapts a struct pointer and a validation function to
// Validatable. Attributes are addressed by Go field name (case-insensitive)
// or by the name in the field's json tag.
type StructSubject struct {
	target   reflect.Value
	validate func() Errors
}

// NewStructSubject wraps ptr, which must be a non-nil pointer to a struct.
// validate is called on every Validate and should inspect the same struct.
func NewStructSubject(ptr any, validate func() Errors) (*StructSubject, error) {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("struct subject requires a non-nil struct pointer, got %T", ptr)
	}
	if validate == nil {
		return nil, errors.New("struct subject requires a validate function")
	}
	return &StructSubject{target: rv.Elem(), validate: validate}, nil
}

func (s *StructSubject) Validate() Errors {
	errs := s.validate()
	if errs == nil {
		errs = Errors{}
	}
	return errs
}

func (s *StructSubject) SetAttribute(name string, value any) error {
	field, err := s.field(name)
	if err != nil {
		return err
	}
	if err := assign(field, value); err != nil {
		return fmt.Errorf("setting %s: %w", name, err)
	}
	return nil
}

func (s *StructSubject) Attribute(name string) (any, bool) {
	field, err := s.field(name)
	if err != nil {
		return nil, false
	}
	if field.Kind() == reflect.Pointer && field.IsNil() {
		return nil, true
	}
	return field.Interface(), true
}

// AttributeKind reports the kind of the field's declared type, so nil
// pointer fields still resolve to the right kind.
func (s *StructSubject) AttributeKind(name string) Kind {
	field, err := s.field(name)
	if err != nil {
		return KindString
	}
	return kindOfType(field.Type())
}

func (s *StructSubject) field(name string) (reflect.Value, error) {
	t := s.target.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if tag == name || strings.EqualFold(sf.Name, name) {
			return s.target.Field(i), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("%w: %s on %s", ErrUnknownAttribute, name, t.Name())
}

// assign stores value into field, casting the way form input is usually
// cast: blank strings become the zero value of non-string fields, numbers
// are stringified for string fields, and numeric strings are parsed.
func assign(field reflect.Value, value any) error {
	ft := field.Type()
	if value == nil {
		field.Set(reflect.Zero(ft))
		return nil
	}
	if ft.Kind() == reflect.Pointer {
		elem := reflect.New(ft.Elem())
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" && ft.Elem().Kind() != reflect.String {
			field.Set(reflect.Zero(ft))
			return nil
		}
		if err := assign(elem.Elem(), value); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}

	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(ft) {
		field.Set(rv)
		return nil
	}

	switch ft.Kind() {
	case reflect.String:
		field.SetString(fmt.Sprint(value))
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt64(value)
		if err != nil {
			return err
		}
		if field.OverflowInt(n) {
			return fmt.Errorf("value %d overflows %s", n, ft)
		}
		field.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := toInt64(value)
		if err != nil {
			return err
		}
		if n < 0 || field.OverflowUint(uint64(n)) {
			return fmt.Errorf("value %d overflows %s", n, ft)
		}
		field.SetUint(uint64(n))
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := toFloat64(value)
		if err != nil {
			return err
		}
		field.SetFloat(f)
		return nil
	}

	if rv.Type().ConvertibleTo(ft) {
		field.Set(rv.Convert(ft))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, ft)
}

func toInt64(value any) (int64, error) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != float64(int64(f)) {
			return 0, fmt.Errorf("value %v is not an integer", f)
		}
		return int64(f), nil
	case reflect.String:
		s := strings.TrimSpace(rv.String())
		if s == "" {
			return 0, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not an integer", rv.String())
		}
		return n, nil
	}
	return 0, fmt.Errorf("cannot convert %T to an integer", value)
}

func toFloat64(value any) (float64, error) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.String:
		s := strings.TrimSpace(rv.String())
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not a number", rv.String())
		}
		return f, nil
	}
	return 0, fmt.Errorf("cannot convert %T to a number", value)
}
