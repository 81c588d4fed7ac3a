// Package config provides configuration management using the Singleton pattern.
// It loads configuration from environment variables, flags and config.yaml using Viper.
package config

import (
	"fmt"
	"net/url"
	"sync"
	"time"
)

// Configuration holds all application configuration values.
type Configuration struct {
	// OpenAI API configuration
	OpenAI OpenAIConfig `json:"openai" mapstructure:"openai"`

	// Server configuration for the mock API
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Logging configuration
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// File is the config file that was read, empty when none was found.
	File string `json:"-" mapstructure:"-"`
}

// OpenAIConfig holds the chat-completions endpoint and credential settings.
type OpenAIConfig struct {
	// CredentialSource selects where the API key is read from.
	CredentialSource CredentialSource `json:"credential_source" mapstructure:"credential_source"`

	// APIKey is the key used when CredentialSource is static.
	APIKey string `json:"-" mapstructure:"api_key"`

	// APIKeyEnv names the environment variable read when CredentialSource is environment.
	APIKeyEnv string `json:"api_key_env" mapstructure:"api_key_env"`

	// BaseURL is the API root; /chat/completions is appended to it.
	BaseURL string `json:"base_url" mapstructure:"base_url"`

	// TimeoutSeconds bounds each request.
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (c OpenAIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	// Host is the server bind address.
	Host string `json:"host" mapstructure:"host"`

	// Port is the server port number.
	Port int `json:"port" mapstructure:"port"`

	// ShutdownTimeout is the maximum duration to wait for active connections to finish.
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds" mapstructure:"shutdown_timeout_seconds"`
}

// Address returns host:port.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `json:"level" mapstructure:"level"`

	// Format is the log format (json, text).
	Format string `json:"format" mapstructure:"format"`
}

// configInstance holds the singleton configuration instance.
var (
	configInstance *Configuration
	configOnce     sync.Once
	configErr      error
)

// GetConfig returns the singleton Configuration instance.
// It initializes the configuration on first call using the default config path.
func GetConfig() (*Configuration, error) {
	configOnce.Do(func() {
		configInstance, configErr = Load(Options{})
	})
	return configInstance, configErr
}

// GetConfigWithOptions returns the singleton Configuration instance, loading it
// with opts on first call.
func GetConfigWithOptions(opts Options) (*Configuration, error) {
	configOnce.Do(func() {
		configInstance, configErr = Load(opts)
	})
	return configInstance, configErr
}

// ResetConfig resets the singleton instance.
// This is primarily used for testing purposes.
func ResetConfig() {
	configOnce = sync.Once{}
	configInstance = nil
	configErr = nil
}

// Validate validates the configuration and returns an error if required fields are missing.
// A missing API key is not a configuration error: it is reported when a request starts.
func (c *Configuration) Validate() error {
	var validationErrors []string

	if !c.OpenAI.CredentialSource.IsValid() {
		validationErrors = append(validationErrors, fmt.Sprintf(
			"openai.credential_source '%s' is invalid, must be one of: environment, static",
			c.OpenAI.CredentialSource,
		))
	}

	if c.OpenAI.CredentialSource == SourceEnvironment && c.OpenAI.APIKeyEnv == "" {
		validationErrors = append(validationErrors, "openai.api_key_env is required when credential_source is environment")
	}

	if u, err := url.Parse(c.OpenAI.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		validationErrors = append(validationErrors, fmt.Sprintf(
			"openai.base_url '%s' must be an absolute http or https URL", c.OpenAI.BaseURL,
		))
	}

	if c.OpenAI.TimeoutSeconds <= 0 {
		validationErrors = append(validationErrors, "openai.timeout_seconds must be positive")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		validationErrors = append(validationErrors, "server.port must be between 1 and 65535")
	}

	if c.Logging.Level != "" && !isValidLogLevel(c.Logging.Level) {
		validationErrors = append(validationErrors, fmt.Sprintf(
			"logging.level '%s' is invalid, must be one of: debug, info, warn, error",
			c.Logging.Level,
		))
	}

	if c.Logging.Format != "" && c.Logging.Format != "json" && c.Logging.Format != "text" {
		validationErrors = append(validationErrors, fmt.Sprintf(
			"logging.format '%s' is invalid, must be one of: json, text",
			c.Logging.Format,
		))
	}

	if len(validationErrors) > 0 {
		return &ValidationError{Errors: validationErrors}
	}

	return nil
}

// isValidLogLevel checks if the log level is valid.
func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}
