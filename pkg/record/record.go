// Package record defines the capability a value needs to live in an
// ObjectStore: reading a field by name. Identifier resolution is done once
// per record type from optional IDKeyer and PrimaryKeyer implementations.
package record

import (
	"reflect"
)

// DefaultIDKey is the identifier field name used when a type declares neither
// an id key nor a primary key.
const DefaultIDKey = "id"

// Record is an application object that can be stored and indexed.
type Record interface {
	// Field returns the value of the named field and whether the field exists.
	Field(name string) (any, bool)
}

// IDKeyer is implemented by record types that declare their identifier field.
type IDKeyer interface {
	IDKey() string
}

// PrimaryKeyer is implemented by record types that declare a primary key
// field. It is consulted only when the type is not an IDKeyer.
type PrimaryKeyer interface {
	PrimaryKey() string
}

// FieldSetter is implemented by records whose fields can be written back.
// Rolling back an in-place foreign key change needs it.
type FieldSetter interface {
	SetField(name string, value any) error
}

// ResolveIDKey returns the identifier field name for records of type t.
// The methods are called on the zero value of t, so pointer receivers must
// not dereference.
func ResolveIDKey(t reflect.Type, fallback string) string {
	if fallback == "" {
		fallback = DefaultIDKey
	}
	if t == nil {
		return fallback
	}

	zero := reflect.Zero(t)
	if !zero.CanInterface() {
		return fallback
	}
	v := zero.Interface()

	if k, ok := v.(IDKeyer); ok {
		if key := k.IDKey(); key != "" {
			return key
		}
	}
	if k, ok := v.(PrimaryKeyer); ok {
		if key := k.PrimaryKey(); key != "" {
			return key
		}
	}
	return fallback
}

// Identifier reads the identifier of rec under idKey. It reports false when
// the field is missing or holds a nil value.
func Identifier(rec Record, idKey string) (any, bool) {
	if rec == nil {
		return nil, false
	}
	v, ok := rec.Field(idKey)
	if !ok || IsAbsent(v) {
		return nil, false
	}
	return v, true
}

// TypeOf returns the type descriptor under which rec is registered.
func TypeOf(rec Record) reflect.Type {
	return reflect.TypeOf(rec)
}

// TypeName is a printable name for t, used in logs, metrics and errors.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
