package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// ResponseKey generates a cache key for an external extraction response.
// Identical preprocessed text against the same model always hits the same
// entry, so re-running a batch does not re-spend model calls.
func ResponseKey(text, model string) string {
	hash := sha256.Sum256([]byte(model + "\x00" + text))
	return "adinote:v1:" + hex.EncodeToString(hash[:])
}
