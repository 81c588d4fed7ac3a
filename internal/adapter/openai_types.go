// Package adapter translates between domain values and the OpenAI
// chat-completions wire format.
package adapter

// OpenAI-compatible request/response types.
// These types mirror the subset of the OpenAI API this client sends and reads.

// ChatRequest is the body of POST /chat/completions.
type ChatRequest struct {
	// Model is the wire identifier of the target model (e.g., "gpt-4").
	Model string `json:"model"`

	// MaxTokens limits the response length.
	MaxTokens int `json:"max_tokens"`

	// Messages contains the conversation history.
	// Omitted entirely when the history is empty.
	Messages []ChatMessage `json:"messages,omitempty"`

	// ResponseFormat requests object-formatted output. Optional.
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatMessage represents a single message in the conversation.
type ChatMessage struct {
	// Role is one of: "system", "user", "assistant".
	Role string `json:"role"`

	// Content is the message text content.
	Content string `json:"content"`
}

// ResponseFormat selects the output format of the completion.
type ResponseFormat struct {
	// Type is "json_object" when JSON mode is requested.
	Type string `json:"type"`
}

// ResponseFormatJSONObject is the response_format type for JSON mode.
const ResponseFormatJSONObject = "json_object"

// ErrorResponse represents an error response from OpenAI-compatible APIs.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error details.
type ErrorDetail struct {
	// Message is the human-readable error message.
	Message string `json:"message"`

	// Type categorizes the error (e.g., "invalid_request_error").
	Type string `json:"type"`

	// Param is the parameter that caused the error. Optional.
	Param *string `json:"param"`

	// Code is the error code. Optional.
	Code *string `json:"code"`
}

// ChatResponse is the body of a successful chat completion.
type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   ChatUsage    `json:"usage"`
}

// ChatChoice is one generated alternative.
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatUsage reports token counts for the request.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// NewErrorResponse builds an API error document.
func NewErrorResponse(errType, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Message: message, Type: errType}}
}
