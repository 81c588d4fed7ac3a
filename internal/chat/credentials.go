package chat

import (
	"errors"
	"os"
	"strings"
)

// DefaultAPIKeyEnv is the environment variable read when no credentials are configured.
const DefaultAPIKeyEnv = "OPENAI_API_KEY"

// errEmptyAPIKey is returned by the built-in resolvers when they find no key.
var errEmptyAPIKey = errors.New("api key is empty")

// CredentialResolver supplies the API key for a request. It is consulted on
// every Start, so a key rotated between requests is picked up.
type CredentialResolver interface {
	ResolveAPIKey() (string, error)
}

// StaticKey is a CredentialResolver holding a fixed key.
type StaticKey string

// ResolveAPIKey returns the key, or an error when it is blank.
func (k StaticKey) ResolveAPIKey() (string, error) {
	key := strings.TrimSpace(string(k))
	if key == "" {
		return "", errEmptyAPIKey
	}
	return key, nil
}

// EnvKey is a CredentialResolver reading the named environment variable.
type EnvKey string

// ResolveAPIKey reads the environment variable.
func (e EnvKey) ResolveAPIKey() (string, error) {
	return StaticKey(os.Getenv(string(e))).ResolveAPIKey()
}
