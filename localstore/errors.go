package localstore

import "fmt"

// ErrorKind enumerates local store failures.
type ErrorKind int

const (
	KindInitFailed ErrorKind = iota + 1
	KindSaveFailed
	KindFetchFailed
	KindDeleteFailed
	KindInsertFailed
	KindNotFound
	KindInvalidData
)

func (k ErrorKind) String() string {
	switch k {
	case KindInitFailed:
		return "init_failed"
	case KindSaveFailed:
		return "save_failed"
	case KindFetchFailed:
		return "fetch_failed"
	case KindDeleteFailed:
		return "delete_failed"
	case KindInsertFailed:
		return "insert_failed"
	case KindNotFound:
		return "not_found"
	case KindInvalidData:
		return "invalid_data"
	default:
		return "unknown"
	}
}

// PersistenceError wraps every storage fault. Raw driver errors are only
// reachable through Unwrap.
type PersistenceError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

var (
	ErrInitFailed   = &PersistenceError{Kind: KindInitFailed}
	ErrSaveFailed   = &PersistenceError{Kind: KindSaveFailed}
	ErrFetchFailed  = &PersistenceError{Kind: KindFetchFailed}
	ErrDeleteFailed = &PersistenceError{Kind: KindDeleteFailed}
	ErrInsertFailed = &PersistenceError{Kind: KindInsertFailed}
	ErrNotFound     = &PersistenceError{Kind: KindNotFound}
	ErrInvalidData  = &PersistenceError{Kind: KindInvalidData}
)

func newError(kind ErrorKind, op string, err error) *PersistenceError {
	return &PersistenceError{Kind: kind, Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is matches on kind.
func (e *PersistenceError) Is(target error) bool {
	t, ok := target.(*PersistenceError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}
