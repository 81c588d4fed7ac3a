// Package domain contains the core business entities and value objects.
package domain

// Completion is the structured result of a successful chat request.
// The zero value is the empty result carried by failed outcomes.
type Completion struct {
	// ID is the unique identifier the API assigned to this completion.
	ID string `json:"id"`

	// Object is the response object type, normally "chat.completion".
	Object string `json:"object"`

	// Created is the Unix timestamp of when the completion was created.
	Created int64 `json:"created"`

	// Model is the model that served the request.
	Model string `json:"model"`

	// Choices contains the generated completions.
	Choices []Choice `json:"choices"`

	// Usage contains token usage statistics.
	Usage Usage `json:"usage"`
}

// Choice is one generated completion.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage contains token usage statistics.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Content returns the text of the first choice, or "" when there is none.
func (c Completion) Content() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Message.Content
}

// IsEmpty reports whether c is the empty result.
func (c Completion) IsEmpty() bool {
	return c.ID == "" && len(c.Choices) == 0 && c.Usage == (Usage{})
}
