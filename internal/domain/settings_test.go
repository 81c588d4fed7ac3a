package domain

import "testing"

func TestParseChatModel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ChatModel
		wantErr bool
	}{
		{name: "turbo 3.5", input: "gpt-3.5-turbo", want: ModelGPT35Turbo},
		{name: "gpt-4", input: "gpt-4", want: ModelGPT4},
		{name: "32k", input: "gpt-4-32k", want: ModelGPT4_32k},
		{name: "gpt-4 turbo", input: "GPT-4-Turbo", want: ModelGPT4Turbo},
		{name: "padded", input: "  gpt-4 ", want: ModelGPT4},
		{name: "unknown", input: "gpt-5", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseChatModel(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseChatModel(%q) error = nil, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseChatModel(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseChatModel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestChatModel_String(t *testing.T) {
	if got := ModelGPT4_32k.String(); got != "gpt-4-32k" {
		t.Errorf("String() = %s, want gpt-4-32k", got)
	}
	if got := ChatModel(42).String(); got != "ChatModel(42)" {
		t.Errorf("String() = %s, want ChatModel(42)", got)
	}
	if ChatModel(42).IsValid() {
		t.Error("ChatModel(42).IsValid() = true, want false")
	}
	var zero ChatModel
	if zero != ModelGPT35Turbo {
		t.Errorf("zero value = %v, want gpt-3.5-turbo", zero)
	}
}

func TestParseRole(t *testing.T) {
	for _, role := range []Role{RoleUser, RoleAssistant, RoleSystem} {
		got, err := ParseRole(role.String())
		if err != nil {
			t.Fatalf("ParseRole(%q) error = %v", role.String(), err)
		}
		if got != role {
			t.Errorf("ParseRole(%q) = %v, want %v", role.String(), got, role)
		}
	}

	if _, err := ParseRole("tool"); err == nil {
		t.Error("ParseRole(tool) error = nil, want error")
	}
}

func TestSettings_CloneIsIndependent(t *testing.T) {
	original := Settings{
		Model:     ModelGPT4,
		Messages:  []Message{{Role: RoleUser, Content: "hello"}},
		MaxTokens: 64,
	}

	clone := original.Clone()
	clone.Messages[0].Content = "changed"

	if original.Messages[0].Content != "hello" {
		t.Errorf("original mutated through clone: %q", original.Messages[0].Content)
	}
}

func TestSettings_WithMessage(t *testing.T) {
	base := Settings{MaxTokens: 16}
	next := base.WithMessage(RoleSystem, "be brief").WithMessage(RoleUser, "hi")

	if len(base.Messages) != 0 {
		t.Errorf("len(base.Messages) = %d, want 0", len(base.Messages))
	}
	if len(next.Messages) != 2 {
		t.Fatalf("len(next.Messages) = %d, want 2", len(next.Messages))
	}
	if next.Messages[0].Role != RoleSystem || next.Messages[1].Content != "hi" {
		t.Errorf("messages out of order: %+v", next.Messages)
	}
}

func TestCompletion_Content(t *testing.T) {
	var empty Completion
	if !empty.IsEmpty() {
		t.Error("zero Completion IsEmpty() = false")
	}
	if empty.Content() != "" {
		t.Errorf("Content() = %q, want empty", empty.Content())
	}

	c := Completion{
		ID: "chatcmpl-1",
		Choices: []Choice{
			{Index: 0, Message: Message{Role: RoleAssistant, Content: "first"}},
			{Index: 1, Message: Message{Role: RoleAssistant, Content: "second"}},
		},
	}
	if c.Content() != "first" {
		t.Errorf("Content() = %q, want first", c.Content())
	}
	if c.IsEmpty() {
		t.Error("IsEmpty() = true for populated completion")
	}
}
