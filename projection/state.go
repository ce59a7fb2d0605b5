package projection

import "fmt"

// Status is the phase of an AsyncState.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// AsyncState is one of idle, loading, success(value) or failure(err).
// The zero value is idle.
type AsyncState[T any] struct {
	status Status
	value  T
	err    error
}

func Idle[T any]() AsyncState[T] {
	return AsyncState[T]{status: StatusIdle}
}

func Loading[T any]() AsyncState[T] {
	return AsyncState[T]{status: StatusLoading}
}

func Success[T any](value T) AsyncState[T] {
	return AsyncState[T]{status: StatusSuccess, value: value}
}

func Failure[T any](err error) AsyncState[T] {
	return AsyncState[T]{status: StatusFailure, err: err}
}

// FromResult maps a (value, err) pair to success or failure.
func FromResult[T any](value T, err error) AsyncState[T] {
	if err != nil {
		return Failure[T](err)
	}
	return Success(value)
}

func (s AsyncState[T]) Status() Status  { return s.status }
func (s AsyncState[T]) IsIdle() bool    { return s.status == StatusIdle }
func (s AsyncState[T]) IsLoading() bool { return s.status == StatusLoading }
func (s AsyncState[T]) IsSuccess() bool { return s.status == StatusSuccess }
func (s AsyncState[T]) IsFailure() bool { return s.status == StatusFailure }

// Value returns the success value. ok is false in every other state.
func (s AsyncState[T]) Value() (value T, ok bool) {
	if s.status != StatusSuccess {
		var zero T
		return zero, false
	}
	return s.value, true
}

// ValueOr returns the success value or fallback.
func (s AsyncState[T]) ValueOr(fallback T) T {
	if s.status != StatusSuccess {
		return fallback
	}
	return s.value
}

// Err returns the failure error, or nil.
func (s AsyncState[T]) Err() error {
	if s.status != StatusFailure {
		return nil
	}
	return s.err
}

func (s AsyncState[T]) String() string {
	switch s.status {
	case StatusSuccess:
		return fmt.Sprintf("success(%v)", s.value)
	case StatusFailure:
		return fmt.Sprintf("failure(%v)", s.err)
	default:
		return s.status.String()
	}
}

// MapState transforms a success value and carries every other state over.
func MapState[T, U any](s AsyncState[T], fn func(T) U) AsyncState[U] {
	switch s.status {
	case StatusSuccess:
		return Success(fn(s.value))
	case StatusFailure:
		return Failure[U](s.err)
	case StatusLoading:
		return Loading[U]()
	default:
		return Idle[U]()
	}
}

// FlatMapState chains a success value into another state.
func FlatMapState[T, U any](s AsyncState[T], fn func(T) AsyncState[U]) AsyncState[U] {
	if s.status == StatusSuccess {
		return fn(s.value)
	}
	return MapState(s, func(T) U {
		var zero U
		return zero
	})
}
