package metadata

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// TagTTL is how long a tag translation stays cached.
const TagTTL = 30 * 24 * time.Hour

const keyPrefixTag = "tag"

// TagCache stores translations of individual keywords, keyed by the MD5 of
// the lower-cased tag.
type TagCache struct {
	cache *Cache
	log   *slog.Logger
}

// NewTagCache creates a tag translation cache.
func NewTagCache(cache *Cache, log *slog.Logger) *TagCache {
	return &TagCache{cache: cache, log: log.With("component", "tag-cache")}
}

func tagKey(tag string) string {
	return HashKey(keyPrefixTag, strings.ToLower(strings.TrimSpace(tag)))
}

// Lookup returns the cached translations and the tags that had none.
func (t *TagCache) Lookup(ctx context.Context, tags []string) (map[string]string, []string) {
	found := make(map[string]string, len(tags))
	var missing []string
	for _, tag := range tags {
		if v, ok := t.cache.Get(ctx, tagKey(tag)); ok {
			found[tag] = string(v)
			continue
		}
		missing = append(missing, tag)
	}
	t.log.Debug("tag lookup", "hits", len(found), "misses", len(missing))
	return found, missing
}

// Store caches translated tags. Failures are logged; the cache is best effort.
func (t *TagCache) Store(ctx context.Context, translations map[string]string) {
	for tag, translated := range translations {
		if strings.TrimSpace(translated) == "" {
			continue
		}
		if err := t.cache.Set(ctx, tagKey(tag), []byte(translated), TagTTL); err != nil {
			t.log.Warn("failed to cache tag translation", "tag", tag, "error", err)
		}
	}
}
