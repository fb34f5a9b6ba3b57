package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/raine/home-inventory/internal/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	calls int
	raw   string
	err   error
}

func (s *stubExtractor) Extract(ctx context.Context, loc inventory.BlobLocator, mimeType string) (string, error) {
	s.calls++
	return s.raw, s.err
}

type memCache struct {
	entries map[string]string
	getErr  error
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]string)}
}

func (m *memCache) GetExtraction(hash string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.entries[hash], nil
}

func (m *memCache) SetExtraction(hash, raw string) error {
	m.entries[hash] = raw
	return nil
}

func TestCachedExtractor_MissThenHit(t *testing.T) {
	inner := &stubExtractor{raw: `[{"item":"lamp"}]`}
	cache := newMemCache()
	loc := inventory.BlobLocator{URI: "gs://bucket/a.jpg"}

	cached := NewCachedExtractor(inner, cache)

	raw, err := cached.Extract(context.Background(), loc, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, inner.raw, raw)
	assert.Equal(t, 1, inner.calls)

	// Second call for the same locator must not hit the inner extractor.
	raw, err = cached.Extract(context.Background(), loc, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, inner.raw, raw)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedExtractor_DistinctLocatorsDistinctEntries(t *testing.T) {
	inner := &stubExtractor{raw: `[]`}
	cached := NewCachedExtractor(inner, newMemCache())

	_, err := cached.Extract(context.Background(), inventory.BlobLocator{URI: "gs://bucket/a.jpg"}, "image/jpeg")
	require.NoError(t, err)
	_, err = cached.Extract(context.Background(), inventory.BlobLocator{URI: "gs://bucket/b.jpg"}, "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedExtractor_CacheErrorIsAMiss(t *testing.T) {
	inner := &stubExtractor{raw: `[]`}
	cache := newMemCache()
	cache.getErr = errors.New("db locked")

	cached := NewCachedExtractor(inner, cache)
	raw, err := cached.Extract(context.Background(), inventory.BlobLocator{URI: "gs://bucket/a.jpg"}, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, `[]`, raw)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedExtractor_ErrorNotCached(t *testing.T) {
	inner := &stubExtractor{err: errors.New("quota")}
	cache := newMemCache()

	cached := NewCachedExtractor(inner, cache)
	_, err := cached.Extract(context.Background(), inventory.BlobLocator{URI: "gs://bucket/a.jpg"}, "image/jpeg")
	require.Error(t, err)
	assert.Empty(t, cache.entries)
}
