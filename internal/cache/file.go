// Package cache provides TTL-based file caching of HTTP responses so
// repeated pipeline runs during development do not hammer the source site.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry is one cached HTTP response plus the headers needed for a
// conditional refetch once it expires.
type Entry struct {
	Body       []byte    `json:"body"`
	ETag       string    `json:"etag,omitempty"`
	LastMod    string    `json:"last_modified,omitempty"`
	StatusCode int       `json:"status_code"`
	CachedAt   time.Time `json:"cached_at"`
}

// FileCache stores entries as JSON files keyed by URL hash.
type FileCache struct {
	dir string
	ttl time.Duration
}

// New creates the cache directory if needed.
func New(dir string, ttl time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	return &FileCache{dir: dir, ttl: ttl}, nil
}

// Get returns the entry for url and whether it is still fresh. An expired
// entry is returned with fresh=false so the caller can attempt a
// conditional fetch with its ETag/Last-Modified headers.
func (c *FileCache) Get(url string) (*Entry, bool) {
	data, err := os.ReadFile(c.path(url))
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		os.Remove(c.path(url))
		return nil, false
	}

	return &entry, time.Since(entry.CachedAt) <= c.ttl
}

// Set stores an entry, stamping the cache time.
func (c *FileCache) Set(url string, entry *Entry) error {
	entry.CachedAt = time.Now()
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	return os.WriteFile(c.path(url), data, 0o644)
}

func (c *FileCache) path(url string) string {
	h := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(h[:]))
}
