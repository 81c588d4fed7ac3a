package chat

import (
	"context"
	"log/slog"

	"github.com/hpn/hpn-g-chat/internal/domain"
)

// Chat runs one request and reports its outcome to callback. Failures are
// logged before the callback runs, and the manager is destroyed after the
// callback returns, whatever the outcome.
//
// The returned manager may be kept to Cancel the request; it must not be
// started again.
func Chat(ctx context.Context, settings domain.Settings, callback ResponseFunc, opts ...Option) *Manager {
	m := NewManager(opts...)

	// A fresh manager accepts both calls.
	_ = m.Initialize(settings)
	_ = m.BindResponse(func(completion domain.Completion, errorMessage string, success bool) {
		if !success {
			m.logger.Error("chat request failed", slog.String("error", errorMessage))
		}

		if callback != nil {
			callback(completion, errorMessage, success)
		} else {
			m.logger.Error("chat callback is nil")
		}

		m.Destroy()
	})

	if err := m.Start(ctx); err != nil {
		m.logger.Error("chat request could not start", slog.String("error", err.Error()))
	}

	return m
}
