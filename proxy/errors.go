package proxy

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/papercomputeco/chatproxy/pkg/llm"
)

// ErrorKind classifies every way a chat request can fail. Each kind maps to
// exactly one client-facing status and message.
type ErrorKind int

const (
	// KindUnknown is anything not covered below.
	KindUnknown ErrorKind = iota

	// KindMethodNotAllowed is a request with a method other than POST or OPTIONS.
	KindMethodNotAllowed

	// KindValidation is a well-formed payload without a prompt.
	KindValidation

	// KindDecode is malformed JSON in the client request or the upstream response.
	KindDecode

	// KindUpstreamHTTP is a non-2xx upstream response; its status is mirrored.
	KindUpstreamHTTP

	// KindUpstreamUnreachable is a connection failure or timeout.
	KindUpstreamUnreachable
)

var kindNames = map[ErrorKind]string{
	KindUnknown:             "unknown",
	KindMethodNotAllowed:    "method_not_allowed",
	KindValidation:          "validation",
	KindDecode:              "decode",
	KindUpstreamHTTP:        "upstream_http",
	KindUpstreamUnreachable: "upstream_unreachable",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a classified chat request failure.
type Error struct {
	Kind ErrorKind

	// UpstreamStatus is the upstream's status code for KindUpstreamHTTP.
	UpstreamStatus int

	// Details is returned to the client alongside the error message.
	Details string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.Message()
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode is the HTTP status returned to the client.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case KindValidation, KindDecode:
		return http.StatusBadRequest
	case KindUpstreamHTTP:
		return e.UpstreamStatus
	case KindUpstreamUnreachable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message is the client-facing error text.
func (e *Error) Message() string {
	switch e.Kind {
	case KindMethodNotAllowed:
		return "Method not allowed"
	case KindValidation:
		return "Prompt is required"
	case KindDecode:
		return "Invalid JSON in request or response"
	case KindUpstreamHTTP:
		return fmt.Sprintf("AI API error: %d", e.UpstreamStatus)
	case KindUpstreamUnreachable:
		return "Failed to connect to AI service"
	default:
		return "Internal server error"
	}
}

// Response is the JSON body returned to the client.
func (e *Error) Response() llm.ErrorResponse {
	return llm.ErrorResponse{Error: e.Message(), Details: e.Details}
}

func newError(kind ErrorKind, err error) *Error {
	e := &Error{Kind: kind, Err: err}
	if err != nil && kind != KindValidation {
		e.Details = err.Error()
	}
	return e
}

func upstreamHTTPError(status int, body []byte) *Error {
	return &Error{
		Kind:           KindUpstreamHTTP,
		UpstreamStatus: status,
		Details:        string(body),
	}
}

// unreachableError wraps a transport failure. The client sees the innermost
// reason (e.g. "connection refused") rather than the full request URL.
func unreachableError(err error) *Error {
	e := &Error{Kind: KindUpstreamUnreachable, Err: err, Details: err.Error()}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		e.Details = urlErr.Err.Error()
	}
	return e
}

// asError classifies any error reaching the handler boundary.
func asError(err error) *Error {
	var perr *Error
	if errors.As(err, &perr) {
		return perr
	}
	return newError(KindUnknown, err)
}
