package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrAPIKeyNotSet is returned when the configured source yields no API key.
var ErrAPIKeyNotSet = errors.New("api key is not set")

// CredentialSource selects where the API key is read from.
type CredentialSource string

const (
	SourceEnvironment CredentialSource = "environment"
	SourceStatic      CredentialSource = "static"
)

// IsValid checks if the source is one of the known values.
func (s CredentialSource) IsValid() bool {
	return s == SourceEnvironment || s == SourceStatic
}

// ParseCredentialSource parses a source name, case-insensitively.
func ParseCredentialSource(s string) (CredentialSource, error) {
	source := CredentialSource(strings.ToLower(strings.TrimSpace(s)))
	if !source.IsValid() {
		return "", &InvalidValueError{
			Key:           "openai.credential_source",
			Value:         s,
			AllowedValues: []string{string(SourceEnvironment), string(SourceStatic)},
		}
	}
	return source, nil
}

// Credentials resolves the API key on every call, so a key exported after
// startup is picked up by the next request.
type Credentials struct {
	Source CredentialSource
	APIKey string
	EnvVar string

	lookup func(string) (string, bool)
}

// Credentials returns a resolver for this configuration.
func (c OpenAIConfig) Credentials() *Credentials {
	return &Credentials{
		Source: c.CredentialSource,
		APIKey: c.APIKey,
		EnvVar: c.APIKeyEnv,
	}
}

// WithLookup replaces the environment lookup. Used by tests.
func (c *Credentials) WithLookup(fn func(string) (string, bool)) *Credentials {
	c.lookup = fn
	return c
}

// ResolveAPIKey returns the API key or an error wrapping ErrAPIKeyNotSet.
func (c *Credentials) ResolveAPIKey() (string, error) {
	switch c.Source {
	case SourceStatic:
		key := strings.TrimSpace(c.APIKey)
		if key == "" {
			return "", fmt.Errorf("%w: %w", ErrAPIKeyNotSet, &MissingKeyError{Key: "openai.api_key"})
		}
		return key, nil

	case SourceEnvironment, "":
		name := c.EnvVar
		if name == "" {
			name = defaultAPIKeyEnv
		}
		lookup := c.lookup
		if lookup == nil {
			lookup = os.LookupEnv
		}
		value, _ := lookup(name)
		key := strings.TrimSpace(value)
		if key == "" {
			return "", fmt.Errorf("%w: environment variable %s is empty", ErrAPIKeyNotSet, name)
		}
		return key, nil

	default:
		return "", fmt.Errorf("%w: unknown credential source %q", ErrAPIKeyNotSet, c.Source)
	}
}
