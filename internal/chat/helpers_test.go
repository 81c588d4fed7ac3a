package chat

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/hpn/hpn-g-chat/internal/domain"
	"github.com/hpn/hpn-g-chat/internal/transport/transporttest"
)

const successBody = `{
  "id": "chatcmpl-123",
  "object": "chat.completion",
  "created": 1677652288,
  "model": "gpt-4-0613",
  "choices": [{"index": 0, "message": {"role": "assistant", "content": "Hello!"}, "finish_reason": "stop"}],
  "usage": {"prompt_tokens": 9, "completion_tokens": 3, "total_tokens": 12}
}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSettings() domain.Settings {
	return domain.Settings{
		Model:     domain.ModelGPT4,
		MaxTokens: 64,
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: "You are terse."},
			{Role: domain.RoleUser, Content: "Say hello."},
		},
	}
}

func newTestManager(stub *transporttest.Stub, key string, opts ...Option) *Manager {
	base := []Option{
		WithTransport(stub),
		WithCredentials(StaticKey(key)),
		WithBaseURL("https://api.test/v1"),
		WithLogger(discardLogger()),
	}
	return NewManager(append(base, opts...)...)
}

// recorder captures every outcome delivered to its handler.
type recorder struct {
	mu       sync.Mutex
	outcomes []Outcome
	ch       chan Outcome
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan Outcome, 16)}
}

func (r *recorder) handle(completion domain.Completion, errorMessage string, success bool) {
	o := Outcome{Completion: completion, ErrorMessage: errorMessage, Success: success}
	r.mu.Lock()
	r.outcomes = append(r.outcomes, o)
	r.mu.Unlock()
	r.ch <- o
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.outcomes)
}

func (r *recorder) wait(t *testing.T) Outcome {
	t.Helper()
	select {
	case o := <-r.ch:
		return o
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for outcome")
		return Outcome{}
	}
}
