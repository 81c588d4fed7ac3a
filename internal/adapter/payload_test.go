package adapter

import (
	"encoding/json"
	"testing"

	"github.com/hpn/hpn-g-chat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestModelID_Table(t *testing.T) {
	want := map[domain.ChatModel]string{
		domain.ModelGPT35Turbo: "gpt-3.5-turbo",
		domain.ModelGPT4:       "gpt-4",
		domain.ModelGPT4_32k:   "gpt-4-32k",
		domain.ModelGPT4Turbo:  "gpt-4-0125-preview",
	}

	for model, id := range want {
		got, ok := ModelID(model)
		require.True(t, ok, "model %v missing from table", model)
		assert.Equal(t, id, got, "model %v", model)
	}

	_, ok := ModelID(domain.ChatModel(99))
	assert.False(t, ok)
}

func TestRoleName_Table(t *testing.T) {
	cases := map[domain.Role]string{
		domain.RoleUser:      "user",
		domain.RoleAssistant: "assistant",
		domain.RoleSystem:    "system",
	}
	for role, name := range cases {
		got, ok := RoleName(role)
		require.True(t, ok)
		assert.Equal(t, name, got)
	}
}

func TestBuildChatRequest(t *testing.T) {
	tests := []struct {
		name     string
		settings domain.Settings
		validate func(*testing.T, []byte)
	}{
		{
			name: "messages kept in order",
			settings: domain.Settings{
				Model:     domain.ModelGPT4,
				MaxTokens: 128,
				Messages: []domain.Message{
					{Role: domain.RoleSystem, Content: "You are terse."},
					{Role: domain.RoleUser, Content: "Hi"},
					{Role: domain.RoleAssistant, Content: "Hello."},
				},
			},
			validate: func(t *testing.T, body []byte) {
				doc := gjson.ParseBytes(body)
				assert.Equal(t, "gpt-4", doc.Get("model").String())
				assert.Equal(t, int64(128), doc.Get("max_tokens").Int())
				msgs := doc.Get("messages").Array()
				require.Len(t, msgs, 3)
				assert.Equal(t, "system", msgs[0].Get("role").String())
				assert.Equal(t, "user", msgs[1].Get("role").String())
				assert.Equal(t, "assistant", msgs[2].Get("role").String())
				assert.Equal(t, "Hello.", msgs[2].Get("content").String())
			},
		},
		{
			name:     "empty history omits messages",
			settings: domain.Settings{Model: domain.ModelGPT35Turbo, MaxTokens: 10},
			validate: func(t *testing.T, body []byte) {
				assert.False(t, gjson.GetBytes(body, "messages").Exists(), "body = %s", body)
			},
		},
		{
			name:     "non-nil empty history omits messages",
			settings: domain.Settings{Model: domain.ModelGPT35Turbo, MaxTokens: 10, Messages: []domain.Message{}},
			validate: func(t *testing.T, body []byte) {
				assert.False(t, gjson.GetBytes(body, "messages").Exists(), "body = %s", body)
			},
		},
		{
			name:     "json format",
			settings: domain.Settings{Model: domain.ModelGPT4Turbo, MaxTokens: 10, JSONFormat: true},
			validate: func(t *testing.T, body []byte) {
				assert.Equal(t, "json_object", gjson.GetBytes(body, "response_format.type").String())
				assert.Equal(t, "gpt-4-0125-preview", gjson.GetBytes(body, "model").String())
			},
		},
		{
			name:     "no json format",
			settings: domain.Settings{Model: domain.ModelGPT4_32k, MaxTokens: 10},
			validate: func(t *testing.T, body []byte) {
				assert.False(t, gjson.GetBytes(body, "response_format").Exists())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := MarshalChatRequest(tt.settings)
			require.NoError(t, err)
			require.True(t, json.Valid(body))
			tt.validate(t, body)
		})
	}
}

func TestBuildChatRequest_UnknownEnums(t *testing.T) {
	_, err := BuildChatRequest(domain.Settings{Model: domain.ChatModel(7)})
	assert.ErrorIs(t, err, ErrUnknownModel)

	_, err = BuildChatRequest(domain.Settings{
		Messages: []domain.Message{{Role: domain.Role(9), Content: "x"}},
	})
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestIsKnownModelID(t *testing.T) {
	assert.True(t, IsKnownModelID("gpt-4-0125-preview"))
	assert.True(t, IsKnownModelID("gpt-3.5-turbo"))
	assert.False(t, IsKnownModelID("gpt-4-turbo"))
	assert.False(t, IsKnownModelID(""))
}
