// Package ui renders chat outcomes and mock server activity on the console.
package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/hpn/hpn-g-chat/internal/domain"
)

// Output is where every function in this package writes.
var Output io.Writer = color.Output

var (
	// Badge colors
	successBadge = color.New(color.BgGreen, color.FgBlack, color.Bold)
	warningBadge = color.New(color.FgYellow, color.Bold)
	errorBadge   = color.New(color.BgRed, color.FgWhite, color.Bold)
	infoBadge    = color.New(color.FgCyan, color.Bold)
	debugBadge   = color.New(color.FgMagenta)

	// Text colors
	successText = color.New(color.FgGreen, color.Bold)
	warningText = color.New(color.FgYellow)
	errorText   = color.New(color.FgRed)
	infoText    = color.New(color.FgCyan)
	mutedText   = color.New(color.FgHiBlack)
	accentText  = color.New(color.FgMagenta, color.Bold)
	neonBlue    = color.New(color.FgHiCyan, color.Bold)
	moneyGreen  = color.New(color.FgHiGreen, color.Bold)

	// Method colors
	methodPOST = color.New(color.BgHiMagenta, color.FgBlack, color.Bold)
	methodGET  = color.New(color.BgHiCyan, color.FgBlack, color.Bold)
)

// PrintRequest shows what is about to be sent.
// Format: [CHAT] gpt-4 | 2 messages | max 256 tokens | json
func PrintRequest(settings domain.Settings) {
	infoBadge.Fprint(Output, "[CHAT]")
	fmt.Fprint(Output, " ")
	accentText.Fprint(Output, settings.Model.String())
	mutedText.Fprintf(Output, " | %d messages | max %d tokens", len(settings.Messages), settings.MaxTokens)
	if settings.JSONFormat {
		mutedText.Fprint(Output, " | json")
	}
	fmt.Fprintln(Output)
}

// PrintOutcome renders the terminal result of one request.
func PrintOutcome(completion domain.Completion, errorMessage string, success bool, latency time.Duration) {
	if !success {
		errorBadge.Fprint(Output, " FAILED ")
		fmt.Fprint(Output, " ")
		errorText.Fprint(Output, errorMessage)
		fmt.Fprint(Output, " ")
		printLatency(latency)
		fmt.Fprintln(Output)
		return
	}

	successBadge.Fprint(Output, " OK ")
	fmt.Fprint(Output, " ")
	accentText.Fprint(Output, completion.Model)
	mutedText.Fprintf(Output, " | %s | ", completion.ID)
	printLatency(latency)
	mutedText.Fprintf(Output, " | tokens %d/%d/%d",
		completion.Usage.PromptTokens, completion.Usage.CompletionTokens, completion.Usage.TotalTokens)
	fmt.Fprintln(Output)

	if len(completion.Choices) == 0 {
		warningText.Fprintln(Output, "(no choices returned)")
		return
	}
	for _, choice := range completion.Choices {
		if len(completion.Choices) > 1 {
			mutedText.Fprintf(Output, "[%d] ", choice.Index)
		}
		fmt.Fprintln(Output, choice.Message.Content)
		if choice.FinishReason != "" && choice.FinishReason != "stop" {
			warningText.Fprintf(Output, "finish reason: %s\n", choice.FinishReason)
		}
	}
}

// PrintCost logs the estimated cost of one request.
// Format: 💸 estimated cost $0.000123 (gpt-4)
func PrintCost(model string, amount float64) {
	moneyGreen.Fprint(Output, "💸 estimated cost ")
	moneyGreen.Fprint(Output, domain.FormatCost(amount))
	mutedText.Fprintf(Output, " (%s)\n", model)
}

// PrintServed logs one request handled by the mock server.
// Color-codes status, method, and latency for quick visual parsing.
func PrintServed(method, path string, status int, latency time.Duration, keyUsed string) {
	mutedText.Fprintf(Output, "%s ", time.Now().Format("15:04:05"))

	printMethodBadge(method)
	fmt.Fprint(Output, " ")

	fmt.Fprintf(Output, "%-30s ", truncatePath(path, 30))

	printStatusBadge(status)
	fmt.Fprint(Output, " ")

	printLatency(latency)
	fmt.Fprint(Output, " ")

	if keyUsed != "" {
		mutedText.Fprintf(Output, "key:%s", maskKeyShort(keyUsed))
	}

	fmt.Fprintln(Output)
}

func printMethodBadge(method string) {
	switch method {
	case "POST":
		methodPOST.Fprintf(Output, " %s ", method)
	case "GET":
		methodGET.Fprintf(Output, " %s ", method)
	default:
		debugBadge.Fprintf(Output, " %s ", method)
	}
}

func printStatusBadge(status int) {
	switch {
	case status >= 200 && status < 300:
		successBadge.Fprintf(Output, " %d ", status)
	case status >= 300 && status < 400:
		infoBadge.Fprintf(Output, " %d ", status)
	case status >= 400 && status < 500:
		warningBadge.Fprintf(Output, " %d ", status)
	default:
		errorBadge.Fprintf(Output, " %d ", status)
	}
}

// printLatency prints latency with color gradient.
// Green: < 1s, Yellow: < 5s, Red: >= 5s
func printLatency(latency time.Duration) {
	ms := latency.Milliseconds()
	latencyStr := fmt.Sprintf("%dms", ms)

	switch {
	case ms < 1000:
		successText.Fprint(Output, latencyStr)
	case ms < 5000:
		warningText.Fprint(Output, latencyStr)
	default:
		errorText.Fprint(Output, latencyStr)
	}
}

// maskKeyShort returns a short masked version of an API key.
// Format: xxxx...xxxx
func maskKeyShort(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	return path[:maxLen-3] + "..."
}

// PrintStartupInfo prints the mock server address and its endpoints.
func PrintStartupInfo(host string, port int, scenarios []string) {
	fmt.Fprintln(Output)
	infoBadge.Fprint(Output, "[MOCK]")
	fmt.Fprint(Output, " Server starting on ")
	neonBlue.Fprintf(Output, "http://%s:%d\n", host, port)

	if len(scenarios) > 0 {
		infoBadge.Fprint(Output, "[MOCK]")
		fmt.Fprint(Output, " Scenario keys: ")
		accentText.Fprintln(Output, strings.Join(scenarios, ", "))
	}

	fmt.Fprintln(Output)
	mutedText.Fprintln(Output, "  ┌────────────────────────────────────────────────────────┐")
	mutedText.Fprint(Output, "  │ ")
	methodPOST.Fprint(Output, " POST ")
	fmt.Fprint(Output, " /v1/chat/completions ")
	mutedText.Fprint(Output, "  Chat completion (fake)          ")
	mutedText.Fprintln(Output, " │")
	mutedText.Fprint(Output, "  │ ")
	methodGET.Fprint(Output, " GET  ")
	fmt.Fprint(Output, " /health              ")
	mutedText.Fprint(Output, "  Health check                    ")
	mutedText.Fprintln(Output, " │")
	mutedText.Fprintln(Output, "  └────────────────────────────────────────────────────────┘")
	fmt.Fprintln(Output)
}

// PrintShutdown prints a styled shutdown message.
func PrintShutdown() {
	fmt.Fprintln(Output)
	warningBadge.Fprint(Output, "[SHUTDOWN]")
	warningText.Fprintln(Output, " Graceful shutdown initiated...")
}

// PrintGoodbye prints a styled goodbye message.
func PrintGoodbye() {
	successBadge.Fprint(Output, " OK ")
	fmt.Fprint(Output, " ")
	successText.Fprintln(Output, "Server stopped.")
}
