// Package cache stores extracted snippets so re-runs skip extraction work
// for episodes whose inputs have not changed.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/framescope/framescope/internal/model"
)

// Cache is the byte-level cache contract shared by the memory, disk and
// layered implementations.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// SnippetKey derives the cache key for one episode's snippet. Every input
// that changes the extraction result is hashed in: the document text, the
// keyword stems, the window radius and the selection seed. The version
// prefix invalidates old entries when the extraction algorithm changes.
func SnippetKey(episodeID, docText string, stems []string, radius int, seed int64) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%d\x00%d", episodeID, docText, strings.Join(stems, ","), radius, seed)
	return "framescope:v1:" + hex.EncodeToString(h.Sum(nil))
}

// GetSnippet looks up and decodes a cached snippet.
func GetSnippet(c Cache, key string) (*model.Snippet, bool) {
	data, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	var snip model.Snippet
	if err := json.Unmarshal(data, &snip); err != nil {
		// Treat undecodable entries as a miss; they will be rewritten.
		_ = c.Delete(key)
		return nil, false
	}
	return &snip, true
}

// SetSnippet encodes and stores a snippet.
func SetSnippet(c Cache, key string, snip *model.Snippet, ttl time.Duration) error {
	data, err := json.Marshal(snip)
	if err != nil {
		return fmt.Errorf("marshal snippet: %w", err)
	}
	return c.Set(key, data, ttl)
}
