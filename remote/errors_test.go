package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatusCode(t *testing.T) {
	tests := []struct {
		code int
		want ErrorKind
	}{
		{401, KindUnauthorized},
		{403, KindForbidden},
		{404, KindNotFound},
		{429, KindRateLimited},
		{500, KindServerError},
		{599, KindServerError},
		{400, KindHTTPError},
		{302, KindHTTPError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			err := FromStatusCode(tt.code)
			assert.Equal(t, tt.want, err.Kind)
			assert.Equal(t, tt.code, err.Code)
		})
	}
}

func TestFromEnvelope(t *testing.T) {
	notFound := fromEnvelope(Meta{Code: 404, Errors: []APIError{{Type: "NotFound", Message: "gone"}}})
	assert.Equal(t, KindNotFound, notFound.Kind)
	assert.Contains(t, notFound.Error(), "gone")

	coded := fromEnvelope(Meta{Code: 400, Errors: []APIError{{Type: "Bad", Message: "bad"}}})
	assert.Equal(t, KindServerError, coded.Kind)

	uncoded := fromEnvelope(Meta{Code: 409})
	assert.Equal(t, KindHTTPError, uncoded.Kind)
	assert.Equal(t, 409, uncoded.Code)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestFromTransport(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: KindTimeout},
		{name: "net timeout", err: fmt.Errorf("wrapped: %w", timeoutErr{}), want: KindTimeout},
		{name: "dns", err: &net.DNSError{Err: "no such host", Name: "api.invalid"}, want: KindUnreachable},
		{name: "op error", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}, want: KindUnreachable},
		{name: "eof", err: io.ErrUnexpectedEOF, want: KindUnreachable},
		{name: "other", err: errors.New("weird"), want: KindUnknown},
		{name: "already mapped", err: ErrRateLimited, want: KindRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fromTransport(tt.err).Kind)
		})
	}
}

func TestNetworkError_IsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("call failed: %w", &NetworkError{Kind: KindNotFound, Code: 404})

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrServerError))
}
