// Package completioncache stores generated text in the key-value store so
// that an identical prompt is answered once per model.
package completioncache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mapdex/internal/db"
	"github.com/kailas-cloud/mapdex/internal/domain"
)

// store is the consumer interface for the completion cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// CachedCompleter decorates a Completer with a read-through cache.
type CachedCompleter struct {
	inner      domain.Completer
	store      store
	keyPrefix  string
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. model is part of every key, so switching
// models never serves text generated by another one.
// cacheTotal is a counter vec with label "result" ("hit"/"miss") and may be nil.
func New(
	inner domain.Completer,
	s store,
	keyPrefix, model string,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedCompleter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedCompleter{
		inner:      inner,
		store:      s,
		keyPrefix:  keyPrefix + "completion_cache:" + model + ":",
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Complete returns cached text or calls the inner completer.
// A hit reports zero tokens since nothing was consumed.
func (c *CachedCompleter) Complete(ctx context.Context, system, prompt string) (domain.Completion, error) {
	key := c.cacheKey(system, prompt)

	if text, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return domain.Completion{Text: text}, nil
	}
	c.incCache("miss")

	res, err := c.inner.Complete(ctx, system, prompt)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("complete: %w", err)
	}
	if res.Text != "" {
		c.putToCache(ctx, key, res.Text)
	}
	return res, nil
}

func (c *CachedCompleter) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedCompleter) cacheKey(system, prompt string) string {
	h := sha256.New()
	h.Write([]byte(system))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return c.keyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedCompleter) getFromCache(ctx context.Context, key string) (string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached completion", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	if len(data) == 0 {
		return "", false
	}
	return string(data), true
}

func (c *CachedCompleter) putToCache(ctx context.Context, key, text string) {
	if err := c.store.Set(ctx, key, []byte(text)); err != nil {
		c.logger.Warn("Failed to cache completion", zap.String("key", key), zap.Error(err))
	}
}
