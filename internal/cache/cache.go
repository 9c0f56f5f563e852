// Package cache provides embedding vector caches: in-memory,
// disk-persisted and layered. Vectors are keyed by a hash of the input
// text so identical texts never hit the embeddings API twice.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for embedding vector caching
type Cache interface {
	Get(key string) ([]float32, bool)
	Set(key string, vector []float32, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from embedding input text
func Key(text string) string {
	hash := sha256.Sum256([]byte(text))
	return "insuragent:v1:" + hex.EncodeToString(hash[:])
}
