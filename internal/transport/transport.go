// Package transport abstracts the HTTP layer a chat request is sent through.
// A Transport dispatches one request at a time and reports progress and a
// single completion back through an Observer.
package transport

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ErrInvalidRequest is returned by Send when a request cannot be dispatched.
var ErrInvalidRequest = errors.New("transport: invalid request")

// Request describes one outbound call.
type Request struct {
	Method  string
	URL     string
	Header  http.Header
	Body    []byte
	Timeout time.Duration
}

// NewRequest returns a Request with an initialized header map.
func NewRequest(method, url string) *Request {
	return &Request{
		Method: method,
		URL:    url,
		Header: make(http.Header),
	}
}

// SetHeader sets a header, replacing any existing values.
func (r *Request) SetHeader(key, value string) {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set(key, value)
}

// Response is what the remote end sent back. Body may be partial when the
// call completed with ok=false.
type Response struct {
	StatusCode int
	URL        string
	Header     http.Header
	Body       []byte
}

// BodyString returns the body as text.
func (r *Response) BodyString() string {
	if r == nil {
		return ""
	}
	return string(r.Body)
}

// ProgressFunc receives cumulative byte counts. It may be called from
// several goroutines and must be safe for concurrent use.
type ProgressFunc func(bytesSent, bytesReceived int64)

// CompleteFunc receives the final result of a call.
//
//   - ok=true: a full response was received (any HTTP status).
//   - ok=false, resp=nil: nothing was received (network error, timeout, cancel).
//   - ok=false, resp!=nil: the response body could not be read completely.
type CompleteFunc func(resp *Response, ok bool)

// Observer receives notifications for one call.
type Observer struct {
	// Progress is optional.
	Progress ProgressFunc

	// Complete is required and is invoked exactly once, asynchronously.
	Complete CompleteFunc
}

// Call is a dispatched request.
type Call interface {
	// Cancel aborts the call. Complete still fires (with ok=false) unless it
	// already has. Safe to call more than once.
	Cancel()
}

// Transport sends requests.
type Transport interface {
	// Send dispatches req. A non-nil error means the request was rejected
	// synchronously and obs will never be notified.
	Send(ctx context.Context, req *Request, obs Observer) (Call, error)
}
