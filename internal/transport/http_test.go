package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type completion struct {
	resp *Response
	ok   bool
}

func collect() (Observer, chan completion) {
	done := make(chan completion, 2)
	return Observer{
		Complete: func(resp *Response, ok bool) {
			done <- completion{resp: resp, ok: ok}
		},
	}, done
}

func waitFor(t *testing.T, done chan completion) completion {
	t.Helper()
	select {
	case c := <-done:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for completion")
		return completion{}
	}
}

func storeMax(addr *int64, v int64) {
	for {
		cur := atomic.LoadInt64(addr)
		if v <= cur || atomic.CompareAndSwapInt64(addr, cur, v) {
			return
		}
	}
}

func TestHTTPTransport_Success(t *testing.T) {
	var gotBody string
	var gotAuth, gotType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-1"}`))
	}))
	defer server.Close()

	req := NewRequest(http.MethodPost, server.URL+"/chat/completions")
	req.SetHeader("Authorization", "Bearer sk-test")
	req.SetHeader("Content-Type", "application/json")
	req.Body = []byte(`{"model":"gpt-4"}`)
	req.Timeout = 5 * time.Second

	var sent, received int64
	obs, done := collect()
	obs.Progress = func(s, r int64) {
		storeMax(&sent, s)
		storeMax(&received, r)
	}

	call, err := NewHTTPTransport().Send(context.Background(), req, obs)
	require.NoError(t, err)
	require.NotNil(t, call)

	c := waitFor(t, done)
	require.True(t, c.ok)
	require.NotNil(t, c.resp)
	assert.Equal(t, http.StatusOK, c.resp.StatusCode)
	assert.Equal(t, `{"id":"chatcmpl-1"}`, c.resp.BodyString())
	assert.Equal(t, `{"model":"gpt-4"}`, gotBody)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, int64(len(req.Body)), atomic.LoadInt64(&sent))
	assert.Equal(t, int64(len(`{"id":"chatcmpl-1"}`)), atomic.LoadInt64(&received))
}

func TestHTTPTransport_ErrorStatusIsDelivered(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	obs, done := collect()
	_, err := NewHTTPTransport().Send(context.Background(), NewRequest(http.MethodPost, server.URL), obs)
	require.NoError(t, err)

	c := waitFor(t, done)
	assert.True(t, c.ok, "HTTP error statuses are still completed responses")
	assert.Equal(t, http.StatusTooManyRequests, c.resp.StatusCode)
}

func TestHTTPTransport_RejectsInvalidRequests(t *testing.T) {
	obs, _ := collect()
	tr := NewHTTPTransport()

	tests := []struct {
		name string
		req  *Request
		obs  Observer
	}{
		{name: "nil request", req: nil, obs: obs},
		{name: "missing method", req: NewRequest("", "http://localhost"), obs: obs},
		{name: "relative url", req: NewRequest(http.MethodPost, "/chat/completions"), obs: obs},
		{name: "bad scheme", req: NewRequest(http.MethodPost, "ftp://example.com/x"), obs: obs},
		{name: "unparseable url", req: NewRequest(http.MethodPost, "http://[::1"), obs: obs},
		{name: "no observer", req: NewRequest(http.MethodPost, "http://localhost"), obs: Observer{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, err := tr.Send(context.Background(), tt.req, tt.obs)
			assert.ErrorIs(t, err, ErrInvalidRequest)
			assert.Nil(t, call)
		})
	}
}

func TestHTTPTransport_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	req := NewRequest(http.MethodPost, server.URL)
	req.Timeout = 50 * time.Millisecond

	obs, done := collect()
	_, err := NewHTTPTransport().Send(context.Background(), req, obs)
	require.NoError(t, err)

	c := waitFor(t, done)
	assert.False(t, c.ok)
	assert.Nil(t, c.resp)
}

func TestHTTPTransport_CancelCompletesOnce(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	var mu sync.Mutex
	count := 0
	done := make(chan struct{}, 1)
	obs := Observer{Complete: func(resp *Response, ok bool) {
		mu.Lock()
		count++
		mu.Unlock()
		assert.False(t, ok)
		done <- struct{}{}
	}}

	call, err := NewHTTPTransport().Send(context.Background(), NewRequest(http.MethodPost, server.URL), obs)
	require.NoError(t, err)

	call.Cancel()
	call.Cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for cancelled completion")
	}

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, count)
}
