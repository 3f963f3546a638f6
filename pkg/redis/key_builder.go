package redis

import "fmt"

// Cache key patterns owned by this service
const (
	keyUserByID = "auth:user:%s" // user projection by local user id
)

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with environment-based prefix so a
// shared Redis never mixes environments.
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// KeyUserByID builds the cache key for the user projection.
func (kb *KeyBuilder) KeyUserByID(userID string) string {
	return kb.BuildKey(fmt.Sprintf(keyUserByID, userID))
}
