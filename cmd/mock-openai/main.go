// Command mock-openai serves a fake chat-completions API for local runs.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hpn/hpn-g-chat/internal/config"
	"github.com/hpn/hpn-g-chat/internal/logging"
	"github.com/hpn/hpn-g-chat/internal/mockapi"
	"github.com/hpn/hpn-g-chat/internal/ui"
	"github.com/spf13/pflag"
)

const version = "v1.0.0"

func main() {
	flags := pflag.NewFlagSet("mock-openai", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "", "config file")
	flags.String("host", "", "bind address")
	flags.Int("port", 0, "listen port")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: json, text")
	slowDelay := flags.Duration("slow-delay", mockapi.DefaultSlowDelay, "delay for the "+mockapi.KeySlow+" key")
	_ = flags.Parse(os.Args[1:])

	// =========================================================================
	// 1. Load configuration
	// =========================================================================
	cfg, err := config.GetConfigWithOptions(config.Options{ConfigPath: *configPath, Flags: flags})
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// =========================================================================
	// 2. Setup structured logger
	// =========================================================================
	logger, err := logging.Setup(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		slog.Error("failed to set up logging", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// =========================================================================
	// 3. Setup Gin router
	// =========================================================================
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	server := mockapi.New(
		mockapi.WithLogger(logger),
		mockapi.WithSlowDelay(*slowDelay),
		mockapi.WithConsole(true),
	)

	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// =========================================================================
	// 4. Start HTTP server with graceful shutdown
	// =========================================================================
	ui.PrintBanner("HPN MOCK OPENAI", version)
	ui.PrintStartupInfo(cfg.Server.Host, cfg.Server.Port, mockapi.ScenarioKeys())

	go func() {
		logger.Info("server starting", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	ui.PrintShutdown()

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
	ui.PrintGoodbye()
}
