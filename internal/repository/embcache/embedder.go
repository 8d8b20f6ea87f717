// Package embcache decorates the embedding provider with a key-value cache.
// Identical query payloads (text or image bytes) skip the provider entirely.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jewelux/gemdex/internal/db"
	"github.com/jewelux/gemdex/internal/domain"
)

const cacheKeyPrefix = "gemdex:emb_cache:"

// store is the consumer interface for the embedding cache.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedEmbedder caches embeddings per modality in a key-value store.
type CachedEmbedder struct {
	inner      domain.Embedder
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates the caching decorator. cacheTotal is a counter vec with label
// "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.Embedder,
	s store,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEmbedder {
	return &CachedEmbedder{
		inner:      inner,
		store:      s,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// WithTTL sets an expiry on cache entries. Zero means entries never expire.
func (c *CachedEmbedder) WithTTL(ttl time.Duration) *CachedEmbedder {
	c.ttl = ttl
	return c
}

// HealthCheck forwards to the inner provider; the cache itself has no
// health of its own.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

// EmbedText returns a cached vector or calls the inner embedder.
func (c *CachedEmbedder) EmbedText(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return c.embed(ctx, "text", []byte(text), func() (domain.EmbeddingResult, error) {
		return c.inner.EmbedText(ctx, text)
	})
}

// EmbedImage returns a cached vector or calls the inner embedder.
func (c *CachedEmbedder) EmbedImage(ctx context.Context, image []byte) (domain.EmbeddingResult, error) {
	return c.embed(ctx, "image", image, func() (domain.EmbeddingResult, error) {
		return c.inner.EmbedImage(ctx, image)
	})
}

// EmbedSketch returns a cached vector or calls the inner embedder.
func (c *CachedEmbedder) EmbedSketch(ctx context.Context, image []byte) (domain.EmbeddingResult, error) {
	return c.embed(ctx, "sketch", image, func() (domain.EmbeddingResult, error) {
		return c.inner.EmbedSketch(ctx, image)
	})
}

func (c *CachedEmbedder) embed(
	ctx context.Context, modality string, payload []byte,
	miss func() (domain.EmbeddingResult, error),
) (domain.EmbeddingResult, error) {
	key := cacheKey(modality, payload)

	if vec, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	c.incCache("miss")

	result, err := miss()
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed %s: %w", modality, err)
	}

	c.putToCache(ctx, key, result.Embedding)
	return result, nil
}

func (c *CachedEmbedder) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey hashes modality and payload together: the same bytes embedded by
// different models must never share a cache entry.
func cacheKey(modality string, payload []byte) string {
	h := sha256.New()
	h.Write([]byte(modality))
	h.Write([]byte{0})
	h.Write(payload)
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedEmbedder) getFromCache(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	vec, err := bytesToVector(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) putToCache(ctx context.Context, key string, vec []float32) {
	var err error
	if c.ttl > 0 {
		err = c.store.SetWithTTL(ctx, key, vectorToBytes(vec), c.ttl)
	} else {
		err = c.store.Set(ctx, key, vectorToBytes(vec))
	}
	if err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}

func vectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
