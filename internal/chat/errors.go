// Package chat drives asynchronous chat-completion requests: it builds the
// payload, dispatches it, interprets the response and delivers exactly one
// outcome per request.
package chat

import (
	"errors"
	"fmt"
)

// Lifecycle misuse errors returned by Manager methods.
var (
	// ErrInFlight is returned when a manager is asked to (re)initialize or
	// start while its request is still running.
	ErrInFlight = errors.New("chat: request already in flight")

	// ErrCompleted is returned when a manager that already emitted its
	// outcome is asked to start or initialize again.
	ErrCompleted = errors.New("chat: request already completed")

	// ErrDestroyed is returned once the manager has been torn down.
	ErrDestroyed = errors.New("chat: manager destroyed")

	// ErrAlreadyBound is returned when a response handler is bound while
	// another binding is still live.
	ErrAlreadyBound = errors.New("chat: response handler already bound")
)

// Failure messages carried by outcomes.
const (
	MsgAPIKeyNotSet       = "Api key is not set"
	MsgSendFailed         = "Error sending request"
	MsgNilResponse        = "Error processing request. Response is nullptr."
	MsgMalformedResponse  = "Error parsing response body"
	MsgCancelled          = "Request cancelled"
	apiErrorMessagePrefix = "Api error "
)

// ErrorKind classifies a failed outcome.
type ErrorKind string

const (
	KindMissingCredential ErrorKind = "missing_credential"
	KindSendFailed        ErrorKind = "transport_send_failed"
	KindTransportFailed   ErrorKind = "transport_completed_with_failure"
	KindAPIError          ErrorKind = "api_error"
	KindMalformedResponse ErrorKind = "malformed_response_body"
	KindCancelled         ErrorKind = "cancelled"
)

// RequestError is the typed error behind every failed outcome.
type RequestError struct {
	Kind    ErrorKind // Failure category
	Message string    // Text handed to the response handler
	Body    string    // Raw response body, when one was received
	Err     error     // Underlying cause, if any
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is matches another *RequestError of the same kind, so callers can write
// errors.Is(err, &chat.RequestError{Kind: chat.KindAPIError}).
func (e *RequestError) Is(target error) bool {
	t, ok := target.(*RequestError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newRequestError(kind ErrorKind, message string) *RequestError {
	return &RequestError{Kind: kind, Message: message}
}

// KindOf returns the kind of a *RequestError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind
	}
	return ""
}

// IsAPIError checks if the API answered with an error document.
func IsAPIError(err error) bool {
	return KindOf(err) == KindAPIError
}

// IsTransportError checks if the request failed in the transport layer.
func IsTransportError(err error) bool {
	kind := KindOf(err)
	return kind == KindSendFailed || kind == KindTransportFailed
}

// IsMissingCredential checks if no API key could be resolved.
func IsMissingCredential(err error) bool {
	return KindOf(err) == KindMissingCredential
}
