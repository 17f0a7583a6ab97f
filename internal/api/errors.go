package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies a failed API call.
type Kind string

const (
	// KindHTTP is a non-2xx response other than 401.
	KindHTTP Kind = "http"
	// KindUnauthorized is a 401 response; the session must be renewed.
	KindUnauthorized Kind = "unauthorized"
	// KindTransport covers connection failures before a response arrived.
	KindTransport Kind = "transport"
	// KindTimeout is a request that hit the client or context deadline.
	KindTimeout Kind = "timeout"
	// KindDecode is a 2xx response whose body could not be decoded.
	KindDecode Kind = "decode"
	// KindAPI is a 2xx envelope carrying success=false.
	KindAPI Kind = "api"
)

// Error is returned by every Client call that fails. Error() yields a message
// suitable for showing to the operator.
type Error struct {
	Kind    Kind
	Status  int
	Method  string
	Path    string
	Message string

	cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message != "" {
		return e.Message
	}
	if e.cause != nil {
		return e.cause.Error()
	}
	return "request failed"
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// IsUnauthorized reports whether err is an API 401.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindUnauthorized
}

// KindOf returns the Kind of err, or "" when err did not come from the client.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

func statusError(method, path string, status int, serverMessage string) *Error {
	kind := KindHTTP
	if status == http.StatusUnauthorized {
		kind = KindUnauthorized
	}
	msg := serverMessage
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}
	return &Error{Kind: kind, Status: status, Method: method, Path: path, Message: msg}
}

func transportError(method, path string, err error) *Error {
	kind := KindTransport
	msg := fmt.Sprintf("execute request: %v", err)
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = KindTimeout
		msg = "request timed out"
	}
	return &Error{Kind: kind, Method: method, Path: path, Message: msg, cause: err}
}

func decodeError(method, path string, err error) *Error {
	return &Error{Kind: KindDecode, Method: method, Path: path, Message: fmt.Sprintf("decode response: %v", err), cause: err}
}
