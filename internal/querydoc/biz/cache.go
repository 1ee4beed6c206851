package biz

import (
	"context"
	"errors"
	"time"

	"github.com/kart-io/logger"
	"github.com/redis/go-redis/v9"

	"github.com/kart-io/querydoc/internal/pkg/qa/textutil"
)

// AnswerCache caches answers keyed by document namespace and question.
type AnswerCache interface {
	Get(ctx context.Context, namespace, question string) (string, bool)
	Set(ctx context.Context, namespace, question, answer string)
}

// NewNoopCache returns a cache that never stores anything.
func NewNoopCache() AnswerCache {
	return noopCache{}
}

type noopCache struct{}

func (noopCache) Get(context.Context, string, string) (string, bool) { return "", false }
func (noopCache) Set(context.Context, string, string, string) {}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache returns a Redis-backed answer cache. Cache failures are
// logged and treated as misses so Redis outages never fail requests.
func NewRedisCache(client *redis.Client, ttl time.Duration) AnswerCache {
	return &redisCache{client: client, ttl: ttl}
}

func cacheKey(namespace, question string) string {
	return "querydoc:answer:" + textutil.HashString(namespace+"|"+question)
}

func (c *redisCache) Get(ctx context.Context, namespace, question string) (string, bool) {
	val, err := c.client.Get(ctx, cacheKey(namespace, question)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warnw("Answer cache lookup failed", "error", err.Error())
		}
		return "", false
	}
	return val, true
}

func (c *redisCache) Set(ctx context.Context, namespace, question, answer string) {
	if err := c.client.Set(ctx, cacheKey(namespace, question), answer, c.ttl).Err(); err != nil {
		logger.Warnw("Answer cache write failed", "error", err.Error())
	}
}
