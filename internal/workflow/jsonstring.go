package workflow

import (
	"encoding/json"
	"fmt"
)

// JSONString marks a field the engine expects as a JSON-encoded string
// rather than native JSON. It marshals Value to JSON and then emits that
// text as a string. Unmarshalling accepts either form.
type JSONString[T any] struct {
	Value T
}

// Stringified wraps v.
func Stringified[T any](v T) JSONString[T] {
	return JSONString[T]{Value: v}
}

func (s JSONString[T]) MarshalJSON() ([]byte, error) {
	inner, err := json.Marshal(s.Value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(inner))
}

func (s *JSONString[T]) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		if err := json.Unmarshal([]byte(text), &s.Value); err != nil {
			return fmt.Errorf("decode stringified value: %w", err)
		}
		return nil
	}
	return json.Unmarshal(data, &s.Value)
}
