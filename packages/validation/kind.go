package validation

import (
	"math/big"
	"reflect"
)

// Kind is the closed set of value kinds a matcher distinguishes when it has to
// synthesize a value for an attribute.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindDecimal
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	default:
		return "string"
	}
}

// ParseKind maps a kind name to a Kind. Unknown names report false.
func ParseKind(name string) (Kind, bool) {
	switch name {
	case "", "string":
		return KindString, true
	case "integer", "int":
		return KindInteger, true
	case "decimal", "float":
		return KindDecimal, true
	}
	return KindString, false
}

var (
	bigIntType   = reflect.TypeOf(big.Int{})
	bigFloatType = reflect.TypeOf(big.Float{})
	bigRatType   = reflect.TypeOf(big.Rat{})
)

// KindOf infers the kind of v. Integer and floating point types, including
// math/big numbers, are recognized; anything else is a string.
func KindOf(v any) Kind {
	if v == nil {
		return KindString
	}
	return kindOfType(reflect.TypeOf(v))
}

func kindOfType(t reflect.Type) Kind {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t {
	case bigIntType:
		return KindInteger
	case bigFloatType, bigRatType:
		return KindDecimal
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindInteger
	case reflect.Float32, reflect.Float64:
		return KindDecimal
	}
	return KindString
}
