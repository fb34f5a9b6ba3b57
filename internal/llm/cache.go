package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/raine/home-inventory/internal/inventory"
	"github.com/rs/zerolog/log"
)

// ExtractionCache persists raw extraction responses keyed by media hash.
type ExtractionCache interface {
	// GetExtraction returns the cached raw response, or "" when absent.
	GetExtraction(hash string) (string, error)
	SetExtraction(hash, raw string) error
}

// CachedExtractor wraps an Extractor with persistent caching. Repeated runs
// over the same uploaded media skip the vision call entirely.
//
// Entries are keyed by locator and MIME type, so re-uploading different bytes
// under the same object name will hit a stale entry.
type CachedExtractor struct {
	inner inventory.Extractor
	cache ExtractionCache
}

// NewCachedExtractor creates a caching extractor.
func NewCachedExtractor(inner inventory.Extractor, cache ExtractionCache) *CachedExtractor {
	return &CachedExtractor{inner: inner, cache: cache}
}

func cacheKey(loc inventory.BlobLocator, mimeType string) string {
	h := sha256.New()
	h.Write([]byte(loc.URI))
	h.Write([]byte{0})
	h.Write([]byte(mimeType))
	return hex.EncodeToString(h.Sum(nil))
}

// Extract implements inventory.Extractor with caching. Cache errors are
// logged and treated as misses.
func (c *CachedExtractor) Extract(ctx context.Context, loc inventory.BlobLocator, mimeType string) (string, error) {
	hash := cacheKey(loc, mimeType)

	if c.cache != nil {
		cached, err := c.cache.GetExtraction(hash)
		if err != nil {
			log.Warn().Err(err).Msg("failed to check extraction cache")
		} else if cached != "" {
			log.Debug().Str("hash", hash[:16]).Msg("extraction cache hit")
			return cached, nil
		}
	}

	raw, err := c.inner.Extract(ctx, loc, mimeType)
	if err != nil {
		return "", err
	}

	if c.cache != nil {
		if err := c.cache.SetExtraction(hash, raw); err != nil {
			log.Warn().Err(err).Msg("failed to cache extraction result")
		} else {
			log.Debug().Str("hash", hash[:16]).Msg("cached extraction result")
		}
	}

	return raw, nil
}
