package service

import "encoding/json"

// Nullable distinguishes a JSON field that was present from one that was
// omitted. A present null clears the value; an absent field leaves it
// untouched. Plain pointers cannot tell those apart.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// NullableOf wraps a concrete value for callers building inputs in code.
func NullableOf[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// NullableNull is an explicit clear.
func NullableNull[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	return json.Unmarshal(data, &n.Value)
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}
