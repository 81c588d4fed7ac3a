// Package transporttest provides a scriptable Transport for tests.
package transporttest

import (
	"context"
	"net/http"
	"sync"

	"github.com/hpn/hpn-g-chat/internal/transport"
)

// Stub is a Transport that records every request and lets the test decide
// when and how each call completes.
type Stub struct {
	mu    sync.Mutex
	calls []*Call

	// RejectErr, when set, makes Send fail synchronously with this error.
	RejectErr error

	// OnSend, when set, runs after a call has been recorded. Use it to
	// complete calls automatically, e.g. `go c.Respond(200, body)`.
	OnSend func(c *Call)
}

// Compile-time check that Stub satisfies the Transport interface.
var _ transport.Transport = (*Stub)(nil)

// NewStub creates an empty Stub.
func NewStub() *Stub {
	return &Stub{}
}

// Responding returns a Stub that answers every call asynchronously with the
// given status and body.
func Responding(status int, body string) *Stub {
	s := NewStub()
	s.OnSend = func(c *Call) {
		go c.Respond(status, body)
	}
	return s
}

// Send records req and returns a controllable Call.
func (s *Stub) Send(ctx context.Context, req *transport.Request, obs transport.Observer) (transport.Call, error) {
	s.mu.Lock()
	if s.RejectErr != nil {
		err := s.RejectErr
		s.mu.Unlock()
		return nil, err
	}

	c := &Call{
		Request:  cloneRequest(req),
		Context:  ctx,
		observer: obs,
	}
	s.calls = append(s.calls, c)
	onSend := s.OnSend
	s.mu.Unlock()

	if onSend != nil {
		onSend(c)
	}
	return c, nil
}

// Calls returns every call sent so far.
func (s *Stub) Calls() []*Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Len returns the number of calls sent so far.
func (s *Stub) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// Last returns the most recent call, or nil.
func (s *Stub) Last() *Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return nil
	}
	return s.calls[len(s.calls)-1]
}

// Call is one recorded request. Its completion methods deliver straight to
// the observer every time they are called, so tests can exercise duplicate
// deliveries.
type Call struct {
	Request *transport.Request
	Context context.Context

	observer transport.Observer

	mu        sync.Mutex
	cancelled int
}

// Cancel records the cancellation.
func (c *Call) Cancel() {
	c.mu.Lock()
	c.cancelled++
	c.mu.Unlock()
}

// Cancelled reports whether Cancel was called at least once.
func (c *Call) Cancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled > 0
}

// Progress reports byte counts to the observer.
func (c *Call) Progress(sent, received int64) {
	if c.observer.Progress != nil {
		c.observer.Progress(sent, received)
	}
}

// Complete delivers an arbitrary completion.
func (c *Call) Complete(resp *transport.Response, ok bool) {
	c.observer.Complete(resp, ok)
}

// Respond delivers a received response.
func (c *Call) Respond(status int, body string) {
	c.Complete(&transport.Response{
		StatusCode: status,
		URL:        c.Request.URL,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       []byte(body),
	}, true)
}

// Fail delivers a failed completion that still carries a response body.
func (c *Call) Fail(body string) {
	c.Complete(&transport.Response{URL: c.Request.URL, Body: []byte(body)}, false)
}

// FailWithoutResponse delivers a failed completion with no response at all.
func (c *Call) FailWithoutResponse() {
	c.Complete(nil, false)
}

func cloneRequest(req *transport.Request) *transport.Request {
	if req == nil {
		return nil
	}
	out := *req
	out.Header = req.Header.Clone()
	out.Body = append([]byte(nil), req.Body...)
	return &out
}
