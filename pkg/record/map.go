package record

import "sync"

// Map is a Record backed by a string-keyed map. The zero value is not usable;
// create one with NewMap. Reads and writes are safe for concurrent use.
type Map struct {
	mu     sync.RWMutex
	fields map[string]any
}

// NewMap returns a Map holding a copy of fields.
func NewMap(fields map[string]any) *Map {
	m := &Map{fields: make(map[string]any, len(fields))}
	for k, v := range fields {
		m.fields[k] = v
	}
	return m
}

// Field implements Record.
func (m *Map) Field(name string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.fields[name]
	return v, ok
}

// SetField implements FieldSetter. A nil value deletes the field.
func (m *Map) SetField(name string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value == nil {
		delete(m.fields, name)
		return nil
	}
	m.fields[name] = value
	return nil
}

// Set is SetField without the error, for fluent test setup.
func (m *Map) Set(name string, value any) *Map {
	_ = m.SetField(name, value)
	return m
}

// Snapshot returns a copy of the current fields.
func (m *Map) Snapshot() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]any, len(m.fields))
	for k, v := range m.fields {
		out[k] = v
	}
	return out
}
