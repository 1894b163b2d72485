// Package auth provides a simple API key check for the WebSocket
// endpoint.
package auth

import "sync"

// APIKeyAuth holds the set of accepted API keys. An empty set accepts
// every request, which keeps local development keyless.
type APIKeyAuth struct {
	mu        sync.RWMutex
	validKeys map[string]struct{}
}

// NewAPIKeyAuth creates an authenticator from a list of keys.
func NewAPIKeyAuth(keys []string) *APIKeyAuth {
	validKeys := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if key != "" {
			validKeys[key] = struct{}{}
		}
	}

	return &APIKeyAuth{validKeys: validKeys}
}

// AddKey adds a new valid API key.
func (a *APIKeyAuth) AddKey(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.validKeys[key] = struct{}{}
}

// RemoveKey removes a valid API key.
func (a *APIKeyAuth) RemoveKey(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.validKeys, key)
}

// IsValidKey checks if a key is accepted.
func (a *APIKeyAuth) IsValidKey(key string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(a.validKeys) == 0 {
		return true
	}

	_, valid := a.validKeys[key]
	return valid
}
