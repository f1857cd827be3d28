package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so callers can react without string matching.
type Kind string

const (
	KindConfig     Kind = "configuration"
	KindNetwork    Kind = "network"
	KindHTTPStatus Kind = "http_status"
	KindShape      Kind = "shape"
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindInternal   Kind = "internal"
)

// Error carries the kind, the operation that failed and, for HTTP status
// failures, the status code returned by the remote side.
type Error struct {
	Kind       Kind
	Op         string
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so errors.Is(err, &Error{Kind: KindShape})
// reports whether err is a shape error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

func Config(op, format string, args ...interface{}) *Error {
	return &Error{Kind: KindConfig, Op: op, Message: fmt.Sprintf(format, args...)}
}

func Network(op string, err error) *Error {
	return &Error{Kind: KindNetwork, Op: op, Message: fmt.Sprintf("request failed: %v", err), Err: err}
}

// Status reports a non-2xx response. body is an excerpt of the response body.
func Status(op string, code int, body string) *Error {
	msg := fmt.Sprintf("unexpected status %d", code)
	if body != "" {
		msg = fmt.Sprintf("%s - %s", msg, body)
	}
	return &Error{Kind: KindHTTPStatus, Op: op, Message: msg, StatusCode: code}
}

func Shape(op, format string, args ...interface{}) *Error {
	return &Error{Kind: KindShape, Op: op, Message: fmt.Sprintf(format, args...)}
}

func Validation(op, format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

func NotFound(op, format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to the status code the API answers with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindNetwork, KindHTTPStatus, KindShape:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
