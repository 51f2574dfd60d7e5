package contracts

import "encoding/json"

// Result carries either a computed value or the reason it is unavailable.
// It replaces result objects whose fields are present only when found.
type Result[T any] struct {
	Value T
	Err   error
}

// Ok wraps an available value
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail wraps an unavailable value
func Fail[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// Available reports whether the value was computed
func (r Result[T]) Available() bool {
	return r.Err == nil
}

// Get returns the value and whether it is available
func (r Result[T]) Get() (T, bool) {
	return r.Value, r.Err == nil
}

// Unavailable is the JSON shape of a missing result
type Unavailable struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason"`
	Message   string `json:"message,omitempty"`
}

// MarshalJSON renders the value itself, or an Unavailable marker
func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(Unavailable{
			Available: false,
			Reason:    Reason(r.Err),
			Message:   r.Err.Error(),
		})
	}
	return json.Marshal(r.Value)
}
