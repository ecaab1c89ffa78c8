package api

import (
	"errors"
	"net/url"
)

// ApplicationError is a structured failure reported by the server
// (success=false). Message is shown to the user verbatim.
type ApplicationError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ApplicationError) Error() string {
	return e.Message
}

// TransportError means no structured response was obtained: the request
// failed, the body could not be decoded, or the context ended.
type TransportError struct {
	Op  string
	Err error
}

// Error returns the underlying error text only; callers add their own prefix.
func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// newTransportError strips the *url.Error wrapper net/http adds so the
// message carries the root cause ("connection refused", not
// `Post "http://...": connection refused`).
func newTransportError(op string, err error) *TransportError {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		err = ue.Err
	}
	return &TransportError{Op: op, Err: err}
}

// IsApplication reports whether err is (or wraps) an *ApplicationError.
func IsApplication(err error) bool {
	var ae *ApplicationError
	return errors.As(err, &ae)
}

// IsTransport reports whether err is (or wraps) a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
