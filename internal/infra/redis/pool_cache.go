package redis

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"sync"
	"time"

	"cat-trivia-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionSource fetches candidate questions from a backing store.
type QuestionSource interface {
	Name() string
	FetchCandidates(ctx context.Context, difficulty domain.Difficulty, categoryFilter string) ([]domain.Question, error)
}

// PoolCache caches candidate pools in Redis and falls back to the wrapped source on miss.
// Pools are stored as: SET trivia:pool:{difficulty}:{filter} <json array>
type PoolCache struct {
	client *redis.Client
	source QuestionSource
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewPoolCache(client *redis.Client, source QuestionSource, ttl time.Duration) *PoolCache {
	return &PoolCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *PoolCache) Name() string {
	return c.source.Name()
}

func (c *PoolCache) FetchCandidates(ctx context.Context, difficulty domain.Difficulty, categoryFilter string) ([]domain.Question, error) {
	key := c.poolKey(difficulty, categoryFilter)
	if pool, ok := c.lookup(ctx, key); ok {
		return pool, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if pool, ok := c.lookup(ctx, key); ok {
			return pool, nil
		}

		pool, err := c.source.FetchCandidates(ctx, difficulty, categoryFilter)
		if err != nil {
			return nil, err
		}
		if len(pool) == 0 {
			return pool, nil
		}

		raw, err := json.Marshal(pool)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err(); err != nil {
			log.Printf("pool cache: write %s: %v", key, err)
		}
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *PoolCache) lookup(ctx context.Context, key string) ([]domain.Question, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var pool []domain.Question
	if err := json.Unmarshal(raw, &pool); err != nil || len(pool) == 0 {
		return nil, false
	}
	return pool, true
}

func (c *PoolCache) poolKey(difficulty domain.Difficulty, categoryFilter string) string {
	if categoryFilter == "" {
		categoryFilter = "all"
	}
	return "trivia:pool:" + string(difficulty) + ":" + categoryFilter
}

func (c *PoolCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
