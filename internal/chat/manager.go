package chat

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hpn/hpn-g-chat/internal/adapter"
	"github.com/hpn/hpn-g-chat/internal/domain"
	"github.com/hpn/hpn-g-chat/internal/transport"
	"github.com/tidwall/gjson"
)

const (
	// DefaultBaseURL is the default OpenAI API endpoint.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultTimeout is the default per-request timeout.
	DefaultTimeout = 10 * time.Second

	completionsPath = "/chat/completions"
)

// state is the lifecycle position of a Manager.
type state int

const (
	stateIdle state = iota
	stateInFlight
	stateDone
	stateDestroyed
)

// errNoCredentials is reported when a manager has no CredentialResolver.
var errNoCredentials = errors.New("no credential resolver configured")

// Manager owns exactly one chat request from dispatch to outcome.
// It is single-use: once it has emitted an outcome, or been destroyed, it
// refuses to start again.
type Manager struct {
	id          string
	transport   transport.Transport
	credentials CredentialResolver
	baseURL     string
	timeout     time.Duration
	logger      *slog.Logger
	dispatcher  Dispatcher

	// mu guards everything below.
	mu       sync.Mutex
	state    state
	settings domain.Settings
	call     transport.Call
	handler  ResponseFunc
	outcome  *Outcome
}

// Option is a functional option for configuring Manager.
type Option func(*Manager)

// WithTransport sets the transport requests are sent through.
func WithTransport(t transport.Transport) Option {
	return func(m *Manager) {
		if t != nil {
			m.transport = t
		}
	}
}

// WithCredentials sets where the API key comes from.
func WithCredentials(c CredentialResolver) Option {
	return func(m *Manager) {
		m.credentials = c
	}
}

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(url string) Option {
	return func(m *Manager) {
		if url != "" {
			m.baseURL = strings.TrimSuffix(url, "/")
		}
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		if timeout > 0 {
			m.timeout = timeout
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithDispatcher sets where asynchronous outcomes are delivered.
func WithDispatcher(d Dispatcher) Option {
	return func(m *Manager) {
		if d != nil {
			m.dispatcher = d
		}
	}
}

// NewManager creates an idle Manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		id:          uuid.NewString(),
		transport:   transport.NewHTTPTransport(),
		credentials: EnvKey(DefaultAPIKeyEnv),
		baseURL:     DefaultBaseURL,
		timeout:     DefaultTimeout,
		logger:      slog.Default(),
		dispatcher:  Inline,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.logger = m.logger.With(slog.String("request_id", m.id))
	return m
}

// ID returns the identifier used in this manager's log lines.
func (m *Manager) ID() string {
	return m.id
}

// Settings returns a copy of the current settings.
func (m *Manager) Settings() domain.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings.Clone()
}

// Initialize stores the settings for the next Start. It may be called any
// number of times before Start.
func (m *Manager) Initialize(settings domain.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.usableLocked(); err != nil {
		return err
	}
	m.settings = settings.Clone()
	return nil
}

// BindResponse sets the single response handler. The binding is released
// when it fires.
func (m *Manager) BindResponse(fn ResponseFunc) error {
	if fn == nil {
		return errors.New("chat: nil response handler")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == stateDestroyed {
		return ErrDestroyed
	}
	if m.handler != nil {
		return ErrAlreadyBound
	}
	m.handler = fn
	return nil
}

// UnbindResponse clears the response handler. Safe to call when unbound.
func (m *Manager) UnbindResponse() {
	m.mu.Lock()
	m.handler = nil
	m.mu.Unlock()
}

// IsBound reports whether a response handler is bound.
func (m *Manager) IsBound() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handler != nil
}

// InFlight reports whether the request has been started and not finished.
func (m *Manager) InFlight() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == stateInFlight
}

// Outcome returns the emitted outcome once there is one.
func (m *Manager) Outcome() (Outcome, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcome == nil {
		return Outcome{}, false
	}
	return *m.outcome, true
}

// Start sends the request. The returned error only reports lifecycle misuse
// (ErrInFlight, ErrCompleted, ErrDestroyed); every request failure is
// delivered to the response handler instead.
//
// Failures detected before anything is sent (no API key, payload cannot be
// built, transport rejects the call) are delivered synchronously on the
// calling goroutine before Start returns.
func (m *Manager) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	m.mu.Lock()
	if err := m.usableLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	m.state = stateInFlight
	settings := m.settings
	m.mu.Unlock()

	m.logger.Info("chat request starting",
		slog.String("model", settings.Model.String()),
		slog.Int("messages", len(settings.Messages)),
		slog.Int("max_tokens", settings.MaxTokens),
		slog.Bool("json_format", settings.JSONFormat),
	)

	apiKey, err := m.resolveAPIKey()
	if err != nil {
		m.logger.Warn("api key is not set", slog.String("error", err.Error()))
		m.finish(failureOutcome(&RequestError{Kind: KindMissingCredential, Message: MsgAPIKeyNotSet, Err: err}), false)
		return nil
	}

	body, err := adapter.MarshalChatRequest(settings)
	if err != nil {
		m.logger.Error("failed to build chat payload", slog.String("error", err.Error()))
		m.finish(failureOutcome(&RequestError{Kind: KindSendFailed, Message: MsgSendFailed, Err: err}), false)
		return nil
	}

	req := transport.NewRequest(http.MethodPost, m.baseURL+completionsPath)
	req.SetHeader("Content-Type", "application/json")
	req.SetHeader("Authorization", "Bearer "+apiKey)
	req.Body = body
	req.Timeout = m.timeout

	call, err := m.transport.Send(ctx, req, transport.Observer{
		Progress: m.handleProgress,
		Complete: m.handleResponse,
	})
	if err != nil {
		m.logger.Warn("transport rejected chat request", slog.String("error", err.Error()))
		m.finish(failureOutcome(&RequestError{Kind: KindSendFailed, Message: MsgSendFailed, Err: err}), false)
		return nil
	}

	m.mu.Lock()
	if m.state == stateInFlight {
		m.call = call
		m.mu.Unlock()
		m.logger.Debug("chat request dispatched",
			slog.String("url", req.URL),
			slog.Int("body_bytes", len(body)),
		)
		return nil
	}
	m.mu.Unlock()

	// Cancelled or destroyed before Send returned.
	call.Cancel()
	return nil
}

// Cancel aborts an in-flight request. The handler receives a single
// "Request cancelled" failure on the calling goroutine and any later
// transport completion is ignored. It returns false when there was nothing
// to cancel.
func (m *Manager) Cancel() bool {
	m.mu.Lock()
	if m.state != stateInFlight {
		m.mu.Unlock()
		return false
	}
	call := m.call
	m.mu.Unlock()

	emitted := m.finish(failureOutcome(newRequestError(KindCancelled, MsgCancelled)), false)
	if call != nil {
		call.Cancel()
	}
	return emitted
}

// Destroy tears the manager down: an in-flight call is aborted without
// emitting, the handler is released and the manager refuses further use.
// Safe to call more than once, including from inside the response handler.
func (m *Manager) Destroy() {
	m.mu.Lock()
	if m.state == stateDestroyed {
		m.mu.Unlock()
		return
	}
	wasInFlight := m.state == stateInFlight
	call := m.call
	m.state = stateDestroyed
	m.handler = nil
	m.call = nil
	m.mu.Unlock()

	if wasInFlight {
		m.logger.Debug("chat manager destroyed while request in flight")
		if call != nil {
			call.Cancel()
		}
	}
}

// usableLocked reports why the manager cannot be (re)initialized or started.
func (m *Manager) usableLocked() error {
	switch m.state {
	case stateInFlight:
		return ErrInFlight
	case stateDone:
		return ErrCompleted
	case stateDestroyed:
		return ErrDestroyed
	default:
		return nil
	}
}

func (m *Manager) resolveAPIKey() (string, error) {
	if m.credentials == nil {
		return "", errNoCredentials
	}
	key, err := m.credentials.ResolveAPIKey()
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", errEmptyAPIKey
	}
	return key, nil
}

func (m *Manager) handleProgress(bytesSent, bytesReceived int64) {
	m.logger.Debug("chat request heartbeat",
		slog.Int64("bytes_sent", bytesSent),
		slog.Int64("bytes_received", bytesReceived),
	)
}

// handleResponse interprets the transport completion.
func (m *Manager) handleResponse(resp *transport.Response, ok bool) {
	m.mu.Lock()
	if m.state != stateInFlight {
		m.mu.Unlock()
		m.logger.Debug("ignoring completion of finished request")
		return
	}
	settings := m.settings
	m.mu.Unlock()

	if !ok {
		if resp != nil {
			body := resp.BodyString()
			m.logger.Warn("error processing request",
				slog.String("body", body),
				slog.String("url", resp.URL),
			)
			m.finish(failureOutcome(&RequestError{Kind: KindTransportFailed, Message: body, Body: body}), true)
			return
		}
		m.logger.Warn(MsgNilResponse)
		m.finish(failureOutcome(newRequestError(KindTransportFailed, MsgNilResponse)), true)
		return
	}

	body := resp.BodyString()
	m.logger.Debug("chat response received",
		slog.Int("status", resp.StatusCode),
		slog.Int("body_bytes", len(resp.Body)),
	)

	doc := gjson.Parse(body)
	if !gjson.Valid(body) || !doc.IsObject() {
		m.logger.Warn("chat response is not a JSON object",
			slog.Int("status", resp.StatusCode),
			slog.String("body", body),
		)
		m.finish(failureOutcome(&RequestError{Kind: KindMalformedResponse, Message: MsgMalformedResponse, Body: body}), true)
		return
	}

	if apiErr := doc.Get("error"); apiErr.Exists() {
		message := ""
		if msg := apiErr.Get("message"); apiErr.IsObject() && msg.Exists() {
			message = msg.String()
		}
		m.logger.Warn("chat api returned an error",
			slog.Int("status", resp.StatusCode),
			slog.String("body", body),
		)
		m.finish(failureOutcome(&RequestError{Kind: KindAPIError, Message: apiErrorMessagePrefix + message, Body: body}), true)
		return
	}

	m.finish(successOutcome(adapter.ParseChatCompletion(doc, settings)), true)
}

// finish records the outcome and hands it to the bound handler. Only the
// first call per manager has any effect; it returns whether this call won.
// Asynchronous outcomes go through the dispatcher, synchronous ones are
// delivered on the calling goroutine.
func (m *Manager) finish(o Outcome, async bool) bool {
	m.mu.Lock()
	if m.state != stateInFlight {
		m.mu.Unlock()
		return false
	}
	m.state = stateDone
	m.outcome = &o
	handler := m.handler
	m.handler = nil
	m.call = nil
	m.mu.Unlock()

	m.logger.Info("chat request finished",
		slog.Bool("success", o.Success),
		slog.String("kind", string(KindOf(o.Err))),
		slog.String("error", o.ErrorMessage),
		slog.String("completion_id", o.Completion.ID),
		slog.Int("total_tokens", o.Completion.Usage.TotalTokens),
	)

	if handler == nil {
		m.logger.Debug("no response handler bound")
		return true
	}

	if !async {
		o.deliver(handler)
		return true
	}

	m.dispatcher.Dispatch(func() {
		if m.destroyed() {
			m.logger.Debug("dropping outcome of destroyed manager")
			return
		}
		o.deliver(handler)
	})
	return true
}

func (m *Manager) destroyed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == stateDestroyed
}
