package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"

	"docextract/internal/apperr"
	"docextract/internal/normalize"
)

// ReplyCache stores raw model replies by key.
type ReplyCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// CachedExtractor answers repeated uploads of the same image from a cache.
type CachedExtractor struct {
	inner  Extractor
	cache  ReplyCache
	model  string
	ttl    time.Duration
	logger *zap.Logger
}

// Cached wraps inner with cache. Cache errors are logged and never fail the call.
// Only replies that normalize into a record are stored.
func Cached(inner Extractor, cache ReplyCache, model string, ttl time.Duration, logger *zap.Logger) *CachedExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedExtractor{inner: inner, cache: cache, model: model, ttl: ttl, logger: logger}
}

func (c *CachedExtractor) Extract(ctx context.Context, image []byte, mimeType string) (string, error) {
	key := CacheKey(c.model, mimeType, image)

	if reply, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("reply cache lookup failed", zap.Error(err))
	} else if ok {
		c.logger.Debug("reply cache hit", zap.String("key", key))
		return reply, nil
	}

	reply, err := c.inner.Extract(ctx, image, mimeType)
	if err != nil {
		return "", err
	}
	if _, err := normalize.Normalize(reply); apperr.Is(err, apperr.KindResponseParse) {
		c.logger.Debug("reply not cached: unparseable", zap.String("key", key))
		return reply, nil
	}
	if err := c.cache.Set(ctx, key, reply, c.ttl); err != nil {
		c.logger.Warn("reply cache store failed", zap.Error(err))
	}
	return reply, nil
}

// CacheKey identifies a reply by model, mime type and image content.
func CacheKey(model, mimeType string, image []byte) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(mimeType))
	h.Write([]byte{0})
	h.Write(image)
	return "extract:" + hex.EncodeToString(h.Sum(nil))
}
