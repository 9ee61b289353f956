package domain

import "errors"

type Status string

const (
	StatusActive Status = "active"
	StatusError  Status = "error"
)

type ErrorKind string

const (
	ErrorKindTransient            ErrorKind = "transient"
	ErrorKindUnsupportedOperation ErrorKind = "unsupported_operation"
)

// Result carries either a value (StatusActive) or a soft failure
// (StatusError) out of a provider operation.
type Result[T any] struct {
	Status  Status
	Value   T
	Kind    ErrorKind
	Message string
}

func Ok[T any](value T) Result[T] {
	return Result[T]{Status: StatusActive, Value: value}
}

// Failed converts err into a soft failure. Unsupported operations keep
// their own kind, anything else is transient.
func Failed[T any](err error) Result[T] {
	kind := ErrorKindTransient
	var unsupported *UnsupportedOperationError
	if errors.As(err, &unsupported) {
		kind = ErrorKindUnsupportedOperation
	}
	return Result[T]{Status: StatusError, Kind: kind, Message: err.Error()}
}

func (r Result[T]) OK() bool {
	return r.Status == StatusActive
}

func (r Result[T]) ValueOr(fallback T) T {
	if r.OK() {
		return r.Value
	}
	return fallback
}

// MapResult transforms the value of an active result and passes failures through.
func MapResult[T, U any](r Result[T], fn func(T) U) Result[U] {
	if !r.OK() {
		return Result[U]{Status: r.Status, Kind: r.Kind, Message: r.Message}
	}
	return Ok(fn(r.Value))
}
