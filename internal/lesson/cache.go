package lesson

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "lesson:"

// CachedRetriever memoizes successful lookups in Redis. The document is
// immutable, so a hit can be served for the full TTL; misses and Redis
// failures fall through to the wrapped retriever.
type CachedRetriever struct {
	next   Searcher
	rdb    *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

func NewCachedRetriever(next Searcher, rdb *redis.Client, ttl time.Duration) *CachedRetriever {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedRetriever{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: log.New(log.Writer(), "[LESSON-CACHE] ", log.LstdFlags),
	}
}

func (c *CachedRetriever) Search(ctx context.Context, query string) (string, error) {
	key := cacheKeyPrefix + strings.ToLower(strings.TrimSpace(query))

	val, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		return val, nil
	}
	if !errors.Is(err, redis.Nil) {
		c.logger.Printf("cache get %s: %v", key, err)
	}

	out, err := c.next.Search(ctx, query)
	if err != nil {
		return "", err
	}
	if err := c.rdb.Set(ctx, key, out, c.ttl).Err(); err != nil {
		c.logger.Printf("cache set %s: %v", key, err)
	}
	return out, nil
}
