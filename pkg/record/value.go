package record

import "reflect"

// IsAbsent reports whether v should be treated as "no value": untyped nil or
// a nil pointer, map, slice, interface, func or channel.
func IsAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// Comparable reports whether v can be used as a map key and found again.
// Values that panic as keys and values holding a NaN, which never equals
// itself, are both rejected.
func Comparable(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Comparable() && !hasNaN(rv)
}

func hasNaN(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != f
	case reflect.Complex64, reflect.Complex128:
		c := rv.Complex()
		return real(c) != real(c) || imag(c) != imag(c)
	case reflect.Array:
		for i := range rv.Len() {
			if hasNaN(rv.Index(i)) {
				return true
			}
		}
	case reflect.Struct:
		for i := range rv.NumField() {
			if hasNaN(rv.Field(i)) {
				return true
			}
		}
	case reflect.Interface:
		return !rv.IsNil() && hasNaN(rv.Elem())
	}
	return false
}

// Lookup reads field name from rec. A missing field and a nil value are both
// reported as absent.
func Lookup(rec Record, name string) (any, bool) {
	v, ok := rec.Field(name)
	if !ok || IsAbsent(v) {
		return nil, false
	}
	return v, true
}
