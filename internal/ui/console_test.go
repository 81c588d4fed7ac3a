package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/hpn/hpn-g-chat/internal/domain"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevNoColor := Output, color.NoColor
	Output, color.NoColor = &buf, true
	t.Cleanup(func() {
		Output, color.NoColor = prevOut, prevNoColor
	})
	return &buf
}

func TestPrintOutcome_Success(t *testing.T) {
	buf := captureOutput(t)

	PrintOutcome(domain.Completion{
		ID:    "chatcmpl-1",
		Model: "gpt-4",
		Choices: []domain.Choice{{
			Message:      domain.Message{Role: domain.RoleAssistant, Content: "Hello there"},
			FinishReason: "length",
		}},
		Usage: domain.Usage{PromptTokens: 5, CompletionTokens: 2, TotalTokens: 7},
	}, "", true, 120*time.Millisecond)

	out := buf.String()
	for _, want := range []string{" OK ", "gpt-4", "chatcmpl-1", "120ms", "tokens 5/2/7", "Hello there", "finish reason: length"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintOutcome_Failure(t *testing.T) {
	buf := captureOutput(t)

	PrintOutcome(domain.Completion{}, "Api key is not set", false, 0)

	out := buf.String()
	if !strings.Contains(out, " FAILED ") || !strings.Contains(out, "Api key is not set") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestPrintRequest(t *testing.T) {
	buf := captureOutput(t)

	PrintRequest(domain.Settings{
		Model:      domain.ModelGPT4Turbo,
		MaxTokens:  256,
		JSONFormat: true,
		Messages:   []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
	})

	want := "[CHAT] gpt-4-turbo | 1 messages | max 256 tokens | json\n"
	if got := buf.String(); got != want {
		t.Errorf("PrintRequest() = %q, want %q", got, want)
	}
}

func TestPrintServed_MasksKey(t *testing.T) {
	buf := captureOutput(t)

	PrintServed("POST", "/v1/chat/completions", 200, 3*time.Millisecond, "sk-abcdefghijklmnop")

	out := buf.String()
	if strings.Contains(out, "abcdefghijklmnop") {
		t.Errorf("key not masked: %q", out)
	}
	if !strings.Contains(out, "key:sk-a...mnop") {
		t.Errorf("masked key missing: %q", out)
	}
}

func TestMaskKeyShort(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"short", "***"},
		{"sk-1234567890", "sk-1...7890"},
	}
	for _, tt := range tests {
		if got := maskKeyShort(tt.key); got != tt.want {
			t.Errorf("maskKeyShort(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestPrintCost(t *testing.T) {
	buf := captureOutput(t)

	PrintCost("gpt-4", 0.0042)

	if got, want := buf.String(), "💸 estimated cost $0.0042 (gpt-4)\n"; got != want {
		t.Errorf("PrintCost() = %q, want %q", got, want)
	}
}
