// Package config provides configuration management using the Singleton pattern.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultConfigName = "config"
	defaultConfigType = "yaml"
	envPrefix         = "HPN_CHAT"

	defaultAPIKeyEnv = "OPENAI_API_KEY"
	defaultBaseURL   = "https://api.openai.com/v1"
)

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"api-key":    "openai.api_key",
	"base-url":   "openai.base_url",
	"timeout":    "openai.timeout_seconds",
	"log-level":  "logging.level",
	"log-format": "logging.format",
	"host":       "server.host",
	"port":       "server.port",
}

// Options controls where configuration is read from.
type Options struct {
	// ConfigPath is an explicit config file; empty searches the default paths.
	ConfigPath string

	// Flags, when set, override file and environment values for the flags in flagKeys.
	Flags *pflag.FlagSet
}

// Load builds a Configuration.
// Priority order (highest to lowest):
// 1. Command-line flags
// 2. Environment variables (prefixed with HPN_CHAT_)
// 3. config.yaml
// 4. Default values
func Load(opts Options) (*Configuration, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName(defaultConfigName)
	v.SetConfigType(defaultConfigType)

	if opts.ConfigPath != "" {
		v.SetConfigFile(opts.ConfigPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.hpn-g-chat")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &ConfigError{
				Op:  "read",
				Err: fmt.Errorf("failed to read config file: %w", err),
			}
		}
	}

	if err := bindFlags(v, opts.Flags); err != nil {
		return nil, &ConfigError{Op: "bind_flags", Err: err}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{
			Op:  "unmarshal",
			Err: fmt.Errorf("failed to unmarshal config: %w", err),
		}
	}
	cfg.File = v.ConfigFileUsed()

	source, err := ParseCredentialSource(string(cfg.OpenAI.CredentialSource))
	if err != nil {
		return nil, &ValidationError{Errors: []string{err.Error()}}
	}
	cfg.OpenAI.CredentialSource = source

	// An explicit key on the command line always wins over the environment.
	if opts.Flags != nil {
		if f := opts.Flags.Lookup("api-key"); f != nil && f.Changed {
			cfg.OpenAI.CredentialSource = SourceStatic
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// OpenAI defaults
	v.SetDefault("openai.credential_source", string(SourceEnvironment))
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.api_key_env", defaultAPIKeyEnv)
	v.SetDefault("openai.base_url", defaultBaseURL)
	v.SetDefault("openai.timeout_seconds", 10)

	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout_seconds", 5)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// bindFlags binds every known flag present in flags to its configuration key.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}
