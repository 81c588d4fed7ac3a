package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
)

// readChunkSize is how much of the response is read between progress reports.
const readChunkSize = 4 * 1024

// HTTPTransport implements Transport on top of net/http.
type HTTPTransport struct {
	client *http.Client
}

// HTTPOption is a functional option for configuring HTTPTransport.
type HTTPOption func(*HTTPTransport)

// WithHTTPClient sets a custom HTTP client.
// Per-request timeouts are applied through the request context, so the
// client's own Timeout can stay zero.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(t *HTTPTransport) {
		if client != nil {
			t.client = client
		}
	}
}

// NewHTTPTransport creates a new HTTPTransport.
func NewHTTPTransport(opts ...HTTPOption) *HTTPTransport {
	t := &HTTPTransport{
		client: &http.Client{},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Send validates and dispatches req on a new goroutine.
func (t *HTTPTransport) Send(ctx context.Context, req *Request, obs Observer) (Call, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}
	if obs.Complete == nil {
		return nil, fmt.Errorf("%w: no completion observer", ErrInvalidRequest)
	}
	if req.Method == "" {
		return nil, fmt.Errorf("%w: missing method", ErrInvalidRequest)
	}

	target, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		return nil, fmt.Errorf("%w: unsupported url %q", ErrInvalidRequest, req.URL)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	callCtx, cancel := context.WithCancel(ctx)
	if req.Timeout > 0 {
		callCtx, cancel = withTimeout(callCtx, cancel, req)
	}

	c := &httpCall{cancel: cancel, obs: obs}

	upload := &countingReader{
		r: bytes.NewReader(req.Body),
		onRead: func(n int64) {
			c.report(atomic.AddInt64(&c.sent, n), atomic.LoadInt64(&c.received))
		},
	}

	httpReq, err := http.NewRequestWithContext(callCtx, req.Method, target.String(), upload)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	httpReq.ContentLength = int64(len(req.Body))
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	go c.run(t.client, httpReq)

	return c, nil
}

// withTimeout layers the request timeout over an existing cancelable context.
func withTimeout(parent context.Context, parentCancel context.CancelFunc, req *Request) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, req.Timeout)
	return ctx, func() {
		cancel()
		parentCancel()
	}
}

// httpCall is one in-flight HTTP request.
type httpCall struct {
	cancel context.CancelFunc
	obs    Observer
	once   sync.Once

	sent     int64
	received int64
}

// Cancel aborts the request.
func (c *httpCall) Cancel() {
	c.cancel()
}

func (c *httpCall) report(sent, received int64) {
	if c.obs.Progress != nil {
		c.obs.Progress(sent, received)
	}
}

func (c *httpCall) complete(resp *Response, ok bool) {
	c.once.Do(func() {
		c.obs.Complete(resp, ok)
	})
}

func (c *httpCall) run(client *http.Client, httpReq *http.Request) {
	defer c.cancel()

	resp, err := client.Do(httpReq)
	if err != nil {
		c.complete(nil, false)
		return
	}
	defer resp.Body.Close()

	out := &Response{
		StatusCode: resp.StatusCode,
		URL:        httpReq.URL.String(),
		Header:     resp.Header.Clone(),
	}

	var body bytes.Buffer
	buf := make([]byte, readChunkSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			body.Write(buf[:n])
			c.report(atomic.LoadInt64(&c.sent), atomic.AddInt64(&c.received, int64(n)))
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			out.Body = body.Bytes()
			c.complete(out, false)
			return
		}
	}

	out.Body = body.Bytes()
	c.complete(out, true)
}

// countingReader reports every successful read of the request body.
type countingReader struct {
	r      io.Reader
	onRead func(n int64)
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 && cr.onRead != nil {
		cr.onRead(int64(n))
	}
	return n, err
}
