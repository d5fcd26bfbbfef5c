package evaluator

import (
	"strings"
)

// List is a mutable ordered collection.
type List struct {
	Elements []Object
}

func (l *List) Type() ObjectType { return LIST_OBJ }
func (l *List) Inspect() string {
	parts := make([]string, len(l.Elements))
	for i, el := range l.Elements {
		parts[i] = el.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// MapPair is one key-value entry of a Map.
type MapPair struct {
	Key   Object
	Value Object
}

// Map is a mutable dictionary keeping insertion order. Keys compare with
// objectsEqual: by value for primitives, by identity for objects.
type Map struct {
	Pairs []MapPair
}

func (m *Map) Type() ObjectType { return MAP_OBJ }
func (m *Map) Inspect() string {
	parts := make([]string, len(m.Pairs))
	for i, pair := range m.Pairs {
		parts[i] = pair.Key.Inspect() + ": " + pair.Value.Inspect()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (m *Map) Get(key Object) (Object, bool) {
	for _, pair := range m.Pairs {
		if objectsEqual(pair.Key, key) {
			return pair.Value, true
		}
	}
	return nil, false
}

func (m *Map) Set(key, value Object) {
	for i, pair := range m.Pairs {
		if objectsEqual(pair.Key, key) {
			m.Pairs[i].Value = value
			return
		}
	}
	m.Pairs = append(m.Pairs, MapPair{Key: key, Value: value})
}

func (m *Map) Remove(key Object) bool {
	for i, pair := range m.Pairs {
		if objectsEqual(pair.Key, key) {
			m.Pairs = append(m.Pairs[:i], m.Pairs[i+1:]...)
			return true
		}
	}
	return false
}

func (m *Map) Len() int { return len(m.Pairs) }
