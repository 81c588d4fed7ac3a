package adapter

import (
	"strings"

	"github.com/hpn/hpn-g-chat/internal/domain"
	"github.com/tidwall/gjson"
)

// ParseChatCompletion converts a successful chat-completion document into a
// Completion. It is pure and tolerant: absent or mistyped fields become zero
// values, so any error-free document yields a result.
//
// settings is the request the document answers; its model fills in the
// result when the document does not name one.
func ParseChatCompletion(doc gjson.Result, settings domain.Settings) domain.Completion {
	out := domain.Completion{
		ID:      doc.Get("id").String(),
		Object:  doc.Get("object").String(),
		Created: doc.Get("created").Int(),
		Model:   doc.Get("model").String(),
	}

	if out.Model == "" {
		out.Model, _ = ModelID(settings.Model)
	}

	choices := doc.Get("choices")
	if choices.IsArray() {
		choices.ForEach(func(key, value gjson.Result) bool {
			index := int(key.Int())
			if idx := value.Get("index"); idx.Exists() {
				index = int(idx.Int())
			}
			out.Choices = append(out.Choices, domain.Choice{
				Index: index,
				Message: domain.Message{
					Role:    parseRole(value.Get("message.role").String()),
					Content: value.Get("message.content").String(),
				},
				FinishReason: value.Get("finish_reason").String(),
			})
			return true
		})
	}

	usage := doc.Get("usage")
	out.Usage = domain.Usage{
		PromptTokens:     int(usage.Get("prompt_tokens").Int()),
		CompletionTokens: int(usage.Get("completion_tokens").Int()),
		TotalTokens:      int(usage.Get("total_tokens").Int()),
	}

	return out
}

// parseRole maps a wire role back to the domain; anything unknown is the assistant.
func parseRole(name string) domain.Role {
	for role, n := range roleNames {
		if strings.EqualFold(n, name) {
			return role
		}
	}
	return domain.RoleAssistant
}
