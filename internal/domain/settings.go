// Package domain contains the core business entities and value objects.
// These structs are framework-agnostic and describe one chat request and its result.
package domain

import (
	"fmt"
	"strings"
)

// ChatModel identifies one of the chat-capable models a request can target.
type ChatModel int

const (
	// ModelGPT35Turbo is the gpt-3.5-turbo family. It is the zero value.
	ModelGPT35Turbo ChatModel = iota

	// ModelGPT4 is the base gpt-4 model.
	ModelGPT4

	// ModelGPT4_32k is gpt-4 with the 32k context window.
	ModelGPT4_32k

	// ModelGPT4Turbo is the gpt-4 turbo preview snapshot.
	ModelGPT4Turbo
)

// chatModelNames holds the names accepted by ParseChatModel and printed by String.
var chatModelNames = map[ChatModel]string{
	ModelGPT35Turbo: "gpt-3.5-turbo",
	ModelGPT4:       "gpt-4",
	ModelGPT4_32k:   "gpt-4-32k",
	ModelGPT4Turbo:  "gpt-4-turbo",
}

// String returns the human-readable model name.
// This is not always the wire identifier; see adapter.ModelID.
func (m ChatModel) String() string {
	if name, ok := chatModelNames[m]; ok {
		return name
	}
	return fmt.Sprintf("ChatModel(%d)", int(m))
}

// IsValid reports whether m is one of the known models.
func (m ChatModel) IsValid() bool {
	_, ok := chatModelNames[m]
	return ok
}

// ParseChatModel converts a model name (case-insensitive) into a ChatModel.
func ParseChatModel(name string) (ChatModel, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for model, n := range chatModelNames {
		if n == name {
			return model, nil
		}
	}
	return 0, fmt.Errorf("unknown chat model %q", name)
}

// Role identifies the author of a conversation message.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
	RoleSystem
)

var roleNames = map[Role]string{
	RoleUser:      "user",
	RoleAssistant: "assistant",
	RoleSystem:    "system",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	_, ok := roleNames[r]
	return ok
}

// ParseRole converts a role name (case-insensitive) into a Role.
func ParseRole(name string) (Role, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for role, n := range roleNames {
		if n == name {
			return role, nil
		}
	}
	return 0, fmt.Errorf("unknown chat role %q", name)
}

// Message is a single entry of the conversation history.
type Message struct {
	// Role is the author of the message.
	Role Role `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// Settings describes one chat request.
// It is treated as immutable once handed to a request; use Clone to get an
// independent copy.
type Settings struct {
	// Model is the target chat model.
	Model ChatModel `json:"model"`

	// Messages is the conversation history in order.
	Messages []Message `json:"messages"`

	// MaxTokens limits the length of the completion.
	MaxTokens int `json:"max_tokens"`

	// JSONFormat asks the model to answer with a JSON object.
	JSONFormat bool `json:"json_format"`
}

// Clone returns a deep copy of the settings.
func (s Settings) Clone() Settings {
	out := s
	if s.Messages != nil {
		out.Messages = make([]Message, len(s.Messages))
		copy(out.Messages, s.Messages)
	}
	return out
}

// WithMessage returns a copy of the settings with msg appended to the history.
func (s Settings) WithMessage(role Role, content string) Settings {
	out := s.Clone()
	out.Messages = append(out.Messages, Message{Role: role, Content: content})
	return out
}
