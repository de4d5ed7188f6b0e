package caching

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dtnitsch/teds-eval/internal/common"
)

// Cache provides a simple file-based cache with a TTL.
type Cache struct {
	path string
	ttl  time.Duration
}

// NewCache creates a new Cache instance.
// The cache path will be created if it doesn't exist.
func NewCache(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{
		path: path,
		ttl:  ttl,
	}, nil
}

// Get retrieves an item from the cache.
// It returns the data and true if the item is found and not expired.
func (c *Cache) Get(key string) ([]byte, bool) {
	filePath := filepath.Join(c.path, key)

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) > c.ttl {
		return nil, false
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set adds an item to the cache.
func (c *Cache) Set(key string, data []byte) error {
	filePath := filepath.Join(c.path, key)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// Scores is what gets stored per pair.
type Scores struct {
	Structure float64 `json:"structure"`
	Full      float64 `json:"full"`
	ErrorType string  `json:"error_type,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// ScoreKey derives the cache key for a pair. variant distinguishes scoring
// options (clamping, raw ground truth) that change the result.
func ScoreKey(predHTML, gtHTML, variant string) string {
	return common.PairHash(predHTML, gtHTML, variant)
}

// GetScores looks up cached scores for key. Corrupt entries are misses.
func (c *Cache) GetScores(key string) (Scores, bool) {
	data, ok := c.Get(key)
	if !ok {
		return Scores{}, false
	}
	var s Scores
	if err := json.Unmarshal(data, &s); err != nil {
		return Scores{}, false
	}
	return s, true
}

// SetScores stores scores under key.
func (c *Cache) SetScores(key string, s Scores) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode scores: %w", err)
	}
	return c.Set(key, data)
}
