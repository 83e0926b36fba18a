package record

import (
	"reflect"
	"unicode/utf8"
)

// Equal reports whether a and b are the same value. Arrays and objects are
// compared deeply.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Int:
		y, ok := b.(Int)
		return ok && x == y
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Array:
		y, ok := b.(Array)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Object:
		y, ok := b.(Object)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare orders two scalars of the same kind. Ints compare numerically,
// strings by bytes, false before true. The second result is false when the
// values are not comparable (different kinds, nulls, arrays, objects).
func Compare(a, b Value) (int, bool) {
	switch x := a.(type) {
	case Int:
		y, ok := b.(Int)
		if !ok {
			return 0, false
		}
		return cmp3(x < y, x > y), true
	case String:
		y, ok := b.(String)
		if !ok {
			return 0, false
		}
		return cmp3(x < y, x > y), true
	case Bool:
		y, ok := b.(Bool)
		if !ok {
			return 0, false
		}
		return cmp3(!bool(x) && bool(y), bool(x) && !bool(y)), true
	default:
		return 0, false
	}
}

// SameKind reports whether a and b have the same concrete type.
func SameKind(a, b Value) bool {
	return a != nil && b != nil && reflect.TypeOf(a) == reflect.TypeOf(b)
}

// Length returns the length of a string (in characters), array or object.
func Length(v Value) (int, bool) {
	switch val := v.(type) {
	case String:
		return utf8.RuneCountInString(string(val)), true
	case Array:
		return len(val), true
	case Object:
		return len(val), true
	default:
		return 0, false
	}
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	default:
		return 0
	}
}
