package adapter

import (
	"testing"

	"github.com/hpn/hpn-g-chat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const sampleCompletion = `{
  "id": "chatcmpl-abc123",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4-0613",
  "choices": [
    {"index": 0, "message": {"role": "assistant", "content": "Hello there!"}, "finish_reason": "stop"},
    {"index": 1, "message": {"role": "assistant", "content": "Hi!"}, "finish_reason": "length"}
  ],
  "usage": {"prompt_tokens": 9, "completion_tokens": 12, "total_tokens": 21}
}`

func TestParseChatCompletion(t *testing.T) {
	got := ParseChatCompletion(gjson.Parse(sampleCompletion), domain.Settings{Model: domain.ModelGPT4})

	assert.Equal(t, "chatcmpl-abc123", got.ID)
	assert.Equal(t, "chat.completion", got.Object)
	assert.Equal(t, int64(1700000000), got.Created)
	assert.Equal(t, "gpt-4-0613", got.Model)
	require.Len(t, got.Choices, 2)
	assert.Equal(t, "Hello there!", got.Content())
	assert.Equal(t, domain.RoleAssistant, got.Choices[0].Message.Role)
	assert.Equal(t, 1, got.Choices[1].Index)
	assert.Equal(t, "length", got.Choices[1].FinishReason)
	assert.Equal(t, domain.Usage{PromptTokens: 9, CompletionTokens: 12, TotalTokens: 21}, got.Usage)
}

func TestParseChatCompletion_Tolerant(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(*testing.T, domain.Completion)
	}{
		{
			name:  "empty object falls back to requested model",
			input: `{}`,
			check: func(t *testing.T, c domain.Completion) {
				assert.Equal(t, "gpt-4-32k", c.Model)
				assert.Empty(t, c.Choices)
			},
		},
		{
			name:  "choices of the wrong type",
			input: `{"choices": "nope", "usage": 4}`,
			check: func(t *testing.T, c domain.Completion) {
				assert.Empty(t, c.Choices)
				assert.Equal(t, domain.Usage{}, c.Usage)
			},
		},
		{
			name:  "unknown role and missing index",
			input: `{"choices": [{"message": {"role": "tool", "content": "x"}}]}`,
			check: func(t *testing.T, c domain.Completion) {
				require.Len(t, c.Choices, 1)
				assert.Equal(t, domain.RoleAssistant, c.Choices[0].Message.Role)
				assert.Equal(t, 0, c.Choices[0].Index)
			},
		},
		{
			name:  "system role round trips",
			input: `{"choices": [{"index": 3, "message": {"role": "SYSTEM", "content": "y"}}]}`,
			check: func(t *testing.T, c domain.Completion) {
				require.Len(t, c.Choices, 1)
				assert.Equal(t, domain.RoleSystem, c.Choices[0].Message.Role)
				assert.Equal(t, 3, c.Choices[0].Index)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				tt.check(t, ParseChatCompletion(gjson.Parse(tt.input), domain.Settings{Model: domain.ModelGPT4_32k}))
			})
		})
	}
}
