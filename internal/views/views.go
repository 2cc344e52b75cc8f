// Package views names the read models that go stale after a stock or catalogue
// mutation and tells interested parties to drop them.
package views

import (
	"context"
	"strings"
	"sync"

	"github.com/fekuna/stockroom-service/pkg/cache"
	"github.com/fekuna/stockroom-service/pkg/logger"
	"go.uber.org/zap"
)

type View string

const (
	ItemList View = "items"
	History  View = "history"
	Orders   View = "orders"
)

func ItemPage(id string) View {
	return View("item:" + id)
}

const (
	keyPrefix = "stockroom:view:"
	// Channel carries the list of invalidated views as a JSON array.
	Channel = "stockroom:views:invalidated"
)

// Key builds a cache key that is dropped when view is invalidated.
func Key(view View, parts ...string) string {
	if len(parts) == 0 {
		return keyPrefix + string(view)
	}
	return keyPrefix + string(view) + ":" + strings.Join(parts, ":")
}

type Invalidator interface {
	Invalidate(ctx context.Context, views ...View)
}

type Noop struct{}

func (Noop) Invalidate(context.Context, ...View) {}

type RedisInvalidator struct {
	cache  *cache.RedisClient
	logger logger.ZapLogger
}

func NewRedisInvalidator(c *cache.RedisClient, log logger.ZapLogger) *RedisInvalidator {
	return &RedisInvalidator{cache: c, logger: log}
}

// Invalidate deletes cached entries for every view and publishes the view
// names. Failures are logged only.
func (r *RedisInvalidator) Invalidate(ctx context.Context, views ...View) {
	if len(views) == 0 {
		return
	}
	for _, v := range views {
		if err := r.cache.DeletePattern(ctx, Key(v)+"*"); err != nil {
			r.logger.Warn("failed to drop cached view", zap.String("view", string(v)), zap.Error(err))
		}
	}
	if err := r.cache.Publish(ctx, Channel, views); err != nil {
		r.logger.Warn("failed to publish view invalidation", zap.Error(err))
	}
}

// Recorder keeps every invalidated view in memory.
type Recorder struct {
	mu    sync.Mutex
	views []View
}

func (r *Recorder) Invalidate(_ context.Context, views ...View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, views...)
}

func (r *Recorder) Views() []View {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]View, len(r.views))
	copy(out, r.views)
	return out
}
