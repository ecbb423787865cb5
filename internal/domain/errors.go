package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned when the caller presents no valid credentials.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrProcessorUnavailable marks upstream calls refused locally, e.g. by an open breaker.
	ErrProcessorUnavailable = errors.New("payment processor unavailable")
)

// ValidationError rejects a request before anything is sent upstream.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// UpstreamKind tells the transport which failure class to report.
type UpstreamKind int

const (
	UpstreamFailed UpstreamKind = iota
	UpstreamUnavailable
)

// UpstreamError wraps a failed processor call. The wrapped error is for logs only.
type UpstreamError struct {
	Op   string
	Kind UpstreamKind
	Err  error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError classifies err for operation op.
func NewUpstreamError(op string, err error) *UpstreamError {
	kind := UpstreamFailed
	if errors.Is(err, ErrProcessorUnavailable) {
		kind = UpstreamUnavailable
	}
	return &UpstreamError{Op: op, Kind: kind, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
