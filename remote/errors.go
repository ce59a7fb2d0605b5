package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"
)

// ErrorKind enumerates remote failures.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindRateLimited
	KindServerError
	KindTimeout
	KindUnreachable
	KindDecodingFailed
	KindHTTPError
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindServerError:
		return "server_error"
	case KindTimeout:
		return "timeout"
	case KindUnreachable:
		return "unreachable"
	case KindDecodingFailed:
		return "decoding_failed"
	case KindHTTPError:
		return "http_error"
	default:
		return "unknown"
	}
}

// NetworkError is the only error type the client returns.
type NetworkError struct {
	Kind ErrorKind
	// Code is the HTTP or envelope status that produced the error, if any.
	Code int
	Err  error
}

var (
	ErrUnauthorized   = &NetworkError{Kind: KindUnauthorized}
	ErrForbidden      = &NetworkError{Kind: KindForbidden}
	ErrNotFound       = &NetworkError{Kind: KindNotFound}
	ErrRateLimited    = &NetworkError{Kind: KindRateLimited}
	ErrServerError    = &NetworkError{Kind: KindServerError}
	ErrTimeout        = &NetworkError{Kind: KindTimeout}
	ErrUnreachable    = &NetworkError{Kind: KindUnreachable}
	ErrDecodingFailed = &NetworkError{Kind: KindDecodingFailed}
	ErrHTTPError      = &NetworkError{Kind: KindHTTPError}
	ErrUnknown        = &NetworkError{Kind: KindUnknown}
)

func (e *NetworkError) Error() string {
	msg := e.Kind.String()
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (code %d)", msg, e.Code)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is matches on kind, so errors.Is(err, ErrNotFound) holds for any not-found error.
func (e *NetworkError) Is(target error) bool {
	t, ok := target.(*NetworkError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// FromStatusCode maps an HTTP status code by the fixed table.
func FromStatusCode(code int) *NetworkError {
	switch {
	case code == http.StatusUnauthorized:
		return &NetworkError{Kind: KindUnauthorized, Code: code}
	case code == http.StatusForbidden:
		return &NetworkError{Kind: KindForbidden, Code: code}
	case code == http.StatusNotFound:
		return &NetworkError{Kind: KindNotFound, Code: code}
	case code == http.StatusTooManyRequests:
		return &NetworkError{Kind: KindRateLimited, Code: code}
	case code >= 500 && code <= 599:
		return &NetworkError{Kind: KindServerError, Code: code}
	default:
		return &NetworkError{Kind: KindHTTPError, Code: code}
	}
}

// fromEnvelope maps a non-success envelope.
func fromEnvelope(meta Meta) *NetworkError {
	if len(meta.Errors) > 0 {
		cause := fmt.Errorf("%s: %s", meta.Errors[0].Type, meta.Errors[0].Message)
		if meta.Code == http.StatusNotFound {
			return &NetworkError{Kind: KindNotFound, Code: meta.Code, Err: cause}
		}
		return &NetworkError{Kind: KindServerError, Code: meta.Code, Err: cause}
	}
	return &NetworkError{Kind: KindHTTPError, Code: meta.Code}
}

// fromTransport maps errors returned before a response was available.
func fromTransport(err error) *NetworkError {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &NetworkError{Kind: KindTimeout, Err: err}
	}
	var timeoutErr net.Error
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return &NetworkError{Kind: KindTimeout, Err: err}
	}

	var dnsErr *net.DNSError
	var opErr *net.OpError
	switch {
	case errors.As(err, &dnsErr),
		errors.As(err, &opErr),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return &NetworkError{Kind: KindUnreachable, Err: err}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Op != "parse" {
		return &NetworkError{Kind: KindUnreachable, Err: err}
	}

	return &NetworkError{Kind: KindUnknown, Err: err}
}
