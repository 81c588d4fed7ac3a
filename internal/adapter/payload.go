package adapter

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hpn/hpn-g-chat/internal/domain"
	"github.com/openai/openai-go/v3/shared"
)

var (
	// ErrUnknownModel is returned when a settings value names a model outside the wire table.
	ErrUnknownModel = errors.New("unknown chat model")

	// ErrUnknownRole is returned when a message carries a role outside the wire table.
	ErrUnknownRole = errors.New("unknown chat role")
)

// modelIDs maps every ChatModel to the identifier sent on the wire.
// The turbo variant is pinned to a dated snapshot.
var modelIDs = map[domain.ChatModel]string{
	domain.ModelGPT35Turbo: string(shared.ChatModelGPT3_5Turbo),
	domain.ModelGPT4:       string(shared.ChatModelGPT4),
	domain.ModelGPT4_32k:   string(shared.ChatModelGPT4_32k),
	domain.ModelGPT4Turbo:  string(shared.ChatModelGPT4_0125Preview),
}

// roleNames maps every Role to its wire name.
var roleNames = map[domain.Role]string{
	domain.RoleUser:      "user",
	domain.RoleAssistant: "assistant",
	domain.RoleSystem:    "system",
}

// ModelID returns the wire identifier for model.
func ModelID(model domain.ChatModel) (string, bool) {
	id, ok := modelIDs[model]
	return id, ok
}

// IsKnownModelID reports whether id is one of the wire identifiers in the table.
func IsKnownModelID(id string) bool {
	for _, known := range modelIDs {
		if known == id {
			return true
		}
	}
	return false
}

// RoleName returns the wire name for role.
func RoleName(role domain.Role) (string, bool) {
	name, ok := roleNames[role]
	return name, ok
}

// BuildChatRequest converts settings into the request body.
func BuildChatRequest(settings domain.Settings) (ChatRequest, error) {
	model, ok := ModelID(settings.Model)
	if !ok {
		return ChatRequest{}, fmt.Errorf("%w: %v", ErrUnknownModel, settings.Model)
	}

	req := ChatRequest{
		Model:     model,
		MaxTokens: settings.MaxTokens,
	}

	if len(settings.Messages) > 0 {
		req.Messages = make([]ChatMessage, 0, len(settings.Messages))
		for i, msg := range settings.Messages {
			role, ok := RoleName(msg.Role)
			if !ok {
				return ChatRequest{}, fmt.Errorf("%w: messages[%d] has %v", ErrUnknownRole, i, msg.Role)
			}
			req.Messages = append(req.Messages, ChatMessage{
				Role:    role,
				Content: msg.Content,
			})
		}
	}

	if settings.JSONFormat {
		req.ResponseFormat = &ResponseFormat{Type: ResponseFormatJSONObject}
	}

	return req, nil
}

// MarshalChatRequest builds and serializes the request body for settings.
func MarshalChatRequest(settings domain.Settings) ([]byte, error) {
	req, err := BuildChatRequest(settings)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}
	return body, nil
}
