// Package action adapts the chat manager to a "fire an action, receive one
// completion broadcast" shape for hosts that do not want to own a manager.
package action

import (
	"context"
	"errors"
	"sync"

	"github.com/hpn/hpn-g-chat/internal/chat"
	"github.com/hpn/hpn-g-chat/internal/domain"
)

var (
	// ErrClosed is returned once the action has been closed.
	ErrClosed = errors.New("action: closed")

	// ErrNotActivated is returned by Wait before the first Activate.
	ErrNotActivated = errors.New("action: not activated")
)

// CallChat runs a chat request each time it is activated and broadcasts the
// outcome to every listener.
type CallChat struct {
	settings domain.Settings
	opts     []chat.Option

	mu        sync.Mutex
	manager   *chat.Manager
	listeners map[uint64]chat.ResponseFunc
	nextID    uint64
	finished  chan struct{}
	closed    chan struct{}
	isClosed  bool
}

// NewCallChat returns an inert action. Nothing is sent until Activate.
func NewCallChat(settings domain.Settings, opts ...chat.Option) *CallChat {
	return &CallChat{
		settings:  settings.Clone(),
		opts:      opts,
		listeners: make(map[uint64]chat.ResponseFunc),
		closed:    make(chan struct{}),
	}
}

// OnFinished registers a listener for the completion broadcast and returns a
// function that removes it.
func (c *CallChat) OnFinished(fn chat.ResponseFunc) (remove func()) {
	if fn == nil {
		return func() {}
	}

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

// Activate starts a request with the stored settings. A manager is created
// when none is live and initialized with the stored settings on every
// activation. Activating before the previous outcome has been broadcast
// returns chat.ErrInFlight.
func (c *CallChat) Activate(ctx context.Context) error {
	c.mu.Lock()
	if c.isClosed {
		c.mu.Unlock()
		return ErrClosed
	}
	// The manager lives until its outcome has been broadcast.
	if c.manager != nil {
		c.mu.Unlock()
		return chat.ErrInFlight
	}
	m := chat.NewManager(c.opts...)
	c.manager = m
	finished := make(chan struct{})
	c.finished = finished
	c.mu.Unlock()

	if err := m.Initialize(c.settings); err != nil {
		c.discard(m)
		return err
	}
	if err := m.BindResponse(c.onResponse(m, finished)); err != nil {
		c.discard(m)
		return err
	}

	// Start may deliver a synchronous failure before it returns.
	if err := m.Start(ctx); err != nil {
		c.discard(m)
		return err
	}
	return nil
}

func (c *CallChat) onResponse(m *chat.Manager, finished chan struct{}) chat.ResponseFunc {
	return func(completion domain.Completion, errorMessage string, success bool) {
		m.UnbindResponse()

		c.mu.Lock()
		if c.manager == m {
			c.manager = nil
		}
		listeners := make([]chat.ResponseFunc, 0, len(c.listeners))
		for _, fn := range c.listeners {
			listeners = append(listeners, fn)
		}
		c.mu.Unlock()

		for _, fn := range listeners {
			fn(completion, errorMessage, success)
		}
		close(finished)

		m.Destroy()
	}
}

// discard drops a manager that could not be started.
func (c *CallChat) discard(m *chat.Manager) {
	c.mu.Lock()
	if c.manager == m {
		c.manager = nil
	}
	c.mu.Unlock()
	m.Destroy()
}

// Active reports whether a request is awaiting its broadcast.
func (c *CallChat) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.manager != nil
}

// Cancel aborts the in-flight request. Listeners receive the cancellation
// failure. It returns false when nothing was in flight.
func (c *CallChat) Cancel() bool {
	c.mu.Lock()
	m := c.manager
	c.mu.Unlock()

	if m == nil {
		return false
	}
	return m.Cancel()
}

// Close tears down a live manager without broadcasting and refuses further
// activations. Safe to call more than once.
func (c *CallChat) Close() {
	c.mu.Lock()
	if c.isClosed {
		c.mu.Unlock()
		return
	}
	c.isClosed = true
	m := c.manager
	c.manager = nil
	close(c.closed)
	c.mu.Unlock()

	if m != nil {
		m.Destroy()
	}
}

// Wait blocks until the latest activation has broadcast its outcome.
func (c *CallChat) Wait(ctx context.Context) error {
	c.mu.Lock()
	finished := c.finished
	c.mu.Unlock()

	if finished == nil {
		return ErrNotActivated
	}

	select {
	case <-finished:
		return nil
	case <-c.closed:
		select {
		case <-finished:
			return nil
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}
