package experience

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates the failures callers above the repository can observe.
type ErrorKind int

const (
	KindInvalidExperienceID ErrorKind = iota + 1
	KindExperienceNotFound
	KindInvalidSearchQuery
	KindAlreadyLiked
	KindNetwork
	KindPersistence
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidExperienceID:
		return "invalid_experience_id"
	case KindExperienceNotFound:
		return "experience_not_found"
	case KindInvalidSearchQuery:
		return "invalid_search_query"
	case KindAlreadyLiked:
		return "already_liked"
	case KindNetwork:
		return "network_error"
	case KindPersistence:
		return "persistence_error"
	default:
		return "unknown"
	}
}

// Error is the domain error returned by the repository and use cases.
// Network and persistence kinds carry the underlying taxonomy error as Cause.
type Error struct {
	Kind  ErrorKind
	Cause error
}

var (
	ErrInvalidExperienceID = &Error{Kind: KindInvalidExperienceID}
	ErrExperienceNotFound  = &Error{Kind: KindExperienceNotFound}
	ErrInvalidSearchQuery  = &Error{Kind: KindInvalidSearchQuery}
	ErrAlreadyLiked        = &Error{Kind: KindAlreadyLiked}
	// ErrNetwork and ErrPersistence match any error of their kind.
	ErrNetwork     = &Error{Kind: KindNetwork}
	ErrPersistence = &Error{Kind: KindPersistence}
)

// NetworkFailure wraps a remote error.
func NetworkFailure(cause error) *Error {
	return &Error{Kind: KindNetwork, Cause: cause}
}

// PersistenceFailure wraps a local store error.
func PersistenceFailure(cause error) *Error {
	return &Error{Kind: KindPersistence, Cause: cause}
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidExperienceID:
		return "invalid experience identifier"
	case KindExperienceNotFound:
		return "experience not found"
	case KindInvalidSearchQuery:
		return "invalid search query"
	case KindAlreadyLiked:
		return "experience already liked"
	}
	if e.Cause == nil {
		return e.Kind.String()
	}
	if e.Kind == KindNetwork {
		return fmt.Sprintf("network error: %v", e.Cause)
	}
	return fmt.Sprintf("persistence error: %v", e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on kind so sentinels compare equal to wrapped instances.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the domain kind of err, or 0 when err is not a domain error.
func KindOf(err error) ErrorKind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return 0
}
