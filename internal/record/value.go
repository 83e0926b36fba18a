package record

import (
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface for record field values.
type Value interface {
	recordValue()
}

// Null is an explicit null (a missing SQL value, a YAML ~).
type Null struct{}

func (Null) recordValue() {}

// String is a string value.
type String string

func (String) recordValue() {}

// Int is an integer value. Always int64.
type Int int64

func (Int) recordValue() {}

// Bool is a boolean value.
type Bool bool

func (Bool) recordValue() {}

// Array is an ordered list of values.
type Array []Value

func (Array) recordValue() {}

// Object maps field names to values. Use SortedKeys for deterministic
// iteration.
type Object map[string]Value

func (Object) recordValue() {}

// Field returns the named field, or false if it is absent.
func (obj Object) Field(name string) (Value, bool) {
	v, ok := obj[name]
	return v, ok
}

// Clone returns a deep copy of obj.
func (obj Object) Clone() Object {
	if obj == nil {
		return nil
	}
	out := make(Object, len(obj))
	for k, v := range obj {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v Value) Value {
	switch val := v.(type) {
	case Array:
		out := make(Array, len(val))
		for i, elem := range val {
			out[i] = cloneValue(elem)
		}
		return out
	case Object:
		return val.Clone()
	default:
		return v
	}
}

// SortedKeys returns keys in UTF-16 code unit order.
// Go's sort.Strings orders by UTF-8 bytes, which differs for some
// characters outside the BMP.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}
