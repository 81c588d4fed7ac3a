// Package cli implements the chat command: one request through the async
// action, with the outcome delivered on the command's goroutine.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hpn/hpn-g-chat/internal/action"
	"github.com/hpn/hpn-g-chat/internal/chat"
	"github.com/hpn/hpn-g-chat/internal/config"
	"github.com/hpn/hpn-g-chat/internal/domain"
	"github.com/hpn/hpn-g-chat/internal/logging"
	"github.com/hpn/hpn-g-chat/internal/ui"
	"github.com/spf13/cobra"
)

// Version is reported by --version.
var Version = "dev"

// ErrRequestFailed is returned when the request ends in a failed outcome.
var ErrRequestFailed = errors.New("chat request failed")

type options struct {
	model      string
	maxTokens  int
	jsonFormat bool
	system     string
	configPath string
}

// NewRootCommand builds the chat command.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "chat [flags] <prompt>",
		Short: "Send one prompt to an OpenAI-compatible chat-completions API",
		Long: `chat sends a single prompt to POST {base-url}/chat/completions and prints
the completion. The API key is read from OPENAI_API_KEY unless --api-key is
given or the config file selects a static key.`,
		Args:          cobra.MinimumNArgs(1),
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.model, "model", "m", domain.ModelGPT35Turbo.String(),
		"model: gpt-3.5-turbo, gpt-4, gpt-4-32k, gpt-4-turbo")
	flags.IntVar(&opts.maxTokens, "max-tokens", 256, "maximum tokens in the completion")
	flags.BoolVar(&opts.jsonFormat, "json", false, "request a JSON object response")
	flags.StringVarP(&opts.system, "system", "s", "", "system message sent before the prompt")
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default: ./config.yaml, ./configs, ~/.hpn-g-chat)")

	// Bound into the configuration by key.
	flags.String("api-key", "", "API key; selects the static credential source")
	flags.String("base-url", "", "API base URL")
	flags.Int("timeout", 0, "request timeout in seconds")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: json, text")

	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, ErrRequestFailed) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		}
		return 1
	}
	return 0
}

func run(cmd *cobra.Command, opts *options, args []string) error {
	cfg, err := config.Load(config.Options{ConfigPath: opts.configPath, Flags: cmd.Flags()})
	if err != nil {
		return err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	if cfg.File != "" {
		logger.Debug("configuration loaded", slog.String("file", cfg.File))
	}

	settings, err := buildSettings(opts, args)
	if err != nil {
		return err
	}

	ui.Output = cmd.OutOrStdout()

	ctx, stopSignals := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	queue := chat.NewQueue()
	call := action.NewCallChat(settings,
		chat.WithBaseURL(cfg.OpenAI.BaseURL),
		chat.WithTimeout(cfg.OpenAI.Timeout()),
		chat.WithCredentials(cfg.OpenAI.Credentials()),
		chat.WithLogger(logger),
		chat.WithDispatcher(queue),
	)
	defer call.Close()

	// The loop ends only when the outcome has been delivered; the request
	// timeout bounds how long that takes.
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()

	var (
		ok      bool
		message string
		result  domain.Completion
	)
	start := time.Now()
	call.OnFinished(func(completion domain.Completion, errorMessage string, success bool) {
		ok, message, result = success, errorMessage, completion
		stopLoop()
	})

	ui.PrintRequest(settings)
	if err := call.Activate(ctx); err != nil {
		return err
	}

	go func() {
		select {
		case <-ctx.Done():
			logger.Info("interrupted, cancelling request")
			call.Cancel()
		case <-loopCtx.Done():
		}
	}()

	_ = queue.Run(loopCtx)

	ui.PrintOutcome(result, message, ok, time.Since(start))
	if !ok {
		return fmt.Errorf("%w: %s", ErrRequestFailed, message)
	}
	ui.PrintCost(settings.Model.String(), domain.PriceFor(settings.Model).Cost(result.Usage))
	return nil
}

func buildSettings(opts *options, args []string) (domain.Settings, error) {
	model, err := domain.ParseChatModel(opts.model)
	if err != nil {
		return domain.Settings{}, err
	}
	if opts.maxTokens <= 0 {
		return domain.Settings{}, fmt.Errorf("--max-tokens must be positive, got %d", opts.maxTokens)
	}

	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		return domain.Settings{}, errors.New("prompt is empty")
	}

	settings := domain.Settings{
		Model:      model,
		MaxTokens:  opts.maxTokens,
		JSONFormat: opts.jsonFormat,
	}
	if opts.system != "" {
		settings = settings.WithMessage(domain.RoleSystem, opts.system)
	}
	return settings.WithMessage(domain.RoleUser, prompt), nil
}
