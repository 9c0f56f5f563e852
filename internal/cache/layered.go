package cache

import "time"

// LayeredCache implements a multi-layer vector cache (memory + disk)
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache creates a new layered cache
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

// Get retrieves a vector from the cache (checks memory first, then disk)
func (c *LayeredCache) Get(key string) ([]float32, bool) {
	// Check memory cache first
	if val, found := c.memory.Get(key); found {
		return val, true
	}

	// Check disk cache
	if val, found := c.disk.Get(key); found {
		// Promote to memory cache
		_ = c.memory.Set(key, val, 0) // Use default TTL
		return val, true
	}

	return nil, false
}

// Set stores a vector in both caches
func (c *LayeredCache) Set(key string, vector []float32, ttl time.Duration) error {
	// Store in memory
	if err := c.memory.Set(key, vector, ttl); err != nil {
		return err
	}

	// Store in disk
	if err := c.disk.Set(key, vector, ttl); err != nil {
		return err
	}

	return nil
}

// Delete removes a vector from both caches
func (c *LayeredCache) Delete(key string) error {
	_ = c.memory.Delete(key)
	_ = c.disk.Delete(key)
	return nil
}

// Clear removes all vectors from both caches
func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	_ = c.disk.Clear()
	return nil
}
