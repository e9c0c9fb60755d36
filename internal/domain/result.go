package domain

import "encoding/json"

type ErrorPayload struct {
	Error string `json:"error"`
}

// Result is either a list of records or a single error, never both.
type Result[T any] struct {
	Items []T
	Err   *ErrorPayload
}

func OK[T any](items []T) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{Items: items}
}

func Fail[T any](msg string) Result[T] {
	return Result[T]{Err: &ErrorPayload{Error: msg}}
}

func (r Result[T]) Failed() bool { return r.Err != nil }

// MarshalJSON emits a JSON array on success and {"error": "..."} on failure.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(r.Err)
	}
	if r.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Items)
}
