package apiclient

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is; the concrete types below carry the details.
var (
	ErrTransport = errors.New("transport error")
	ErrServer    = errors.New("server error")
	ErrDecode    = errors.New("decode error")
)

// TransportError wraps a failure to reach the backend (refused, timeout, cancelled).
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ServerError is a response whose status is outside 2xx.
type ServerError struct {
	Method     string
	URL        string
	StatusCode int
	Detail     string
}

func (e *ServerError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

func (e *ServerError) Is(target error) bool { return target == ErrServer }

// DecodeError is a 2xx response whose body does not match the expected shape.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response of %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
