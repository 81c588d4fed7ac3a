// Package mockapi fakes the chat-completions endpoint for local runs and
// end-to-end tests. Magic API keys select failure scenarios.
package mockapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hpn/hpn-g-chat/internal/adapter"
	"github.com/hpn/hpn-g-chat/internal/domain"
)

// Magic API keys.
const (
	// KeyAPIError makes the server answer with an API error document.
	KeyAPIError = "sk-mock-error"

	// KeyMalformed makes the server answer 200 with a body that is not JSON.
	KeyMalformed = "sk-mock-malformed"

	// KeySlow delays the answer by the configured slow delay.
	KeySlow = "sk-mock-slow"
)

// APIErrorMessage is the message carried by the KeyAPIError scenario.
const APIErrorMessage = "rate limited"

// DefaultSlowDelay outlasts the client's default timeout.
const DefaultSlowDelay = 15 * time.Second

// ScenarioKeys lists the magic keys.
func ScenarioKeys() []string {
	return []string{KeyAPIError, KeyMalformed, KeySlow}
}

// Server answers chat-completion requests.
type Server struct {
	logger    *slog.Logger
	slowDelay time.Duration
	console   bool
	now       func() time.Time
}

// Option is a functional option for configuring Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSlowDelay sets how long the KeySlow scenario waits.
func WithSlowDelay(d time.Duration) Option {
	return func(s *Server) {
		s.slowDelay = d
	}
}

// WithConsole enables colored per-request console output.
func WithConsole(enabled bool) Option {
	return func(s *Server) {
		s.console = enabled
	}
}

// WithClock sets the time source for the created field.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Server.
func New(opts ...Option) *Server {
	s := &Server{
		logger:    slog.Default(),
		slowDelay: DefaultSlowDelay,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine serving the fake API.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(RecoveryMiddleware(s.logger))
	router.Use(LoggingMiddleware(s.logger, s.console))

	router.GET("/health", s.HandleHealth)

	authed := router.Group("/", AuthMiddleware())
	authed.POST("/v1/chat/completions", s.HandleChatCompletion)
	// Also support without /v1 prefix for compatibility
	authed.POST("/chat/completions", s.HandleChatCompletion)

	return router
}

// HandleHealth handles GET /health.
func (s *Server) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleChatCompletion handles POST /v1/chat/completions.
func (s *Server) HandleChatCompletion(c *gin.Context) {
	switch c.GetString(contextKeyAPIKey) {
	case KeyAPIError:
		c.JSON(http.StatusTooManyRequests, adapter.NewErrorResponse("requests", APIErrorMessage))
		return
	case KeyMalformed:
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<html><body>502 upstream unavailable</body></html>"))
		return
	case KeySlow:
		select {
		case <-time.After(s.slowDelay):
		case <-c.Request.Context().Done():
			s.logger.Debug("slow request abandoned by client")
			return
		}
	}

	var req adapter.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendError(c, http.StatusBadRequest, "invalid_request_error", "Invalid request body: "+err.Error())
		return
	}

	if !adapter.IsKnownModelID(req.Model) {
		s.sendError(c, http.StatusNotFound, "invalid_request_error",
			fmt.Sprintf("The model `%s` does not exist or you do not have access to it.", req.Model))
		return
	}
	if len(req.Messages) == 0 {
		s.sendError(c, http.StatusBadRequest, "invalid_request_error", "'messages' is a required property")
		return
	}
	if req.MaxTokens < 0 {
		s.sendError(c, http.StatusBadRequest, "invalid_request_error", "max_tokens must be non-negative")
		return
	}

	c.JSON(http.StatusOK, s.complete(req))
}

// complete echoes the last user message, truncated to max_tokens words.
// Usage is estimated from the text.
func (s *Server) complete(req adapter.ChatRequest) adapter.ChatResponse {
	var last string
	promptTokens := 0
	for _, msg := range req.Messages {
		promptTokens += domain.EstimateTokens(msg.Content)
		if msg.Role == "user" {
			last = msg.Content
		}
	}

	words := strings.Fields("echo: " + last)
	finish := "stop"
	if req.MaxTokens > 0 && len(words) > req.MaxTokens {
		words = words[:req.MaxTokens]
		finish = "length"
	}
	reply := strings.Join(words, " ")

	if req.ResponseFormat != nil && req.ResponseFormat.Type == adapter.ResponseFormatJSONObject {
		encoded, _ := json.Marshal(map[string]string{"echo": reply})
		reply = string(encoded)
	}

	completionTokens := domain.EstimateTokens(reply)
	return adapter.ChatResponse{
		ID:      "chatcmpl-" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Object:  "chat.completion",
		Created: s.now().Unix(),
		Model:   req.Model,
		Choices: []adapter.ChatChoice{{
			Index:        0,
			Message:      adapter.ChatMessage{Role: "assistant", Content: reply},
			FinishReason: finish,
		}},
		Usage: adapter.ChatUsage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
	}
}

func (s *Server) sendError(c *gin.Context, status int, errType, message string) {
	s.logger.Warn("rejecting chat request",
		slog.Int("status", status),
		slog.String("error", message),
	)
	c.JSON(status, adapter.NewErrorResponse(errType, message))
}
