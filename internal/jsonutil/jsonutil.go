// Package jsonutil provides shared helpers for JSON request and response
// bodies: encoding, size-limited decoding, and error context.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxBodyBytes caps how much of a response body DecodeWithContext reads.
const MaxBodyBytes = 1 << 20

// ErrEmptyBody is returned by DecodeWithContext when the body has no content.
var ErrEmptyBody = errors.New("empty JSON body")

// UnmarshalWithContext unmarshals JSON data into v and wraps any error
// with the provided context message.
func UnmarshalWithContext(data []byte, v interface{}, context string) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", context, err)
	}
	return nil
}

// DecodeWithContext reads at most MaxBodyBytes from r and unmarshals them
// into v. An empty body yields ErrEmptyBody. Errors are wrapped with context.
func DecodeWithContext(r io.Reader, v interface{}, context string) error {
	data, err := io.ReadAll(io.LimitReader(r, MaxBodyBytes))
	if err != nil {
		return fmt.Errorf("%s: read body: %w", context, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%s: %w", context, ErrEmptyBody)
	}
	return UnmarshalWithContext(data, v, context)
}

// EncodeBody marshals v into a reader suitable for an HTTP request body.
// A nil v yields a nil reader (no body).
func EncodeBody(v interface{}) (io.Reader, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return bytes.NewReader(data), nil
}
