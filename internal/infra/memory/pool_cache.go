package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"cat-trivia-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionSource fetches candidate questions from a backing store.
type QuestionSource interface {
	Name() string
	FetchCandidates(ctx context.Context, difficulty domain.Difficulty, categoryFilter string) ([]domain.Question, error)
}

// PoolCache caches candidate pools per difficulty and category filter with TTL
// to avoid repeated DB hits.
type PoolCache struct {
	source QuestionSource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedPool
}

type cachedPool struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewPoolCache(source QuestionSource, ttl time.Duration) *PoolCache {
	return &PoolCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedPool),
	}
}

func (c *PoolCache) Name() string {
	return c.source.Name()
}

func (c *PoolCache) FetchCandidates(ctx context.Context, difficulty domain.Difficulty, categoryFilter string) ([]domain.Question, error) {
	key := string(difficulty) + "|" + categoryFilter
	if pool, ok := c.lookup(key); ok {
		return pool, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		if pool, ok := c.lookup(key); ok {
			return pool, nil
		}

		pool, err := c.source.FetchCandidates(ctx, difficulty, categoryFilter)
		if err != nil {
			return nil, err
		}
		// empty pools are not cached so fresh imports show up immediately
		if len(pool) > 0 {
			c.mu.Lock()
			c.cache[key] = cachedPool{
				questions: pool,
				expiresAt: c.clock().Add(c.ttlWithJitterLocked()),
			}
			c.mu.Unlock()
		}
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Question(nil), result.([]domain.Question)...), nil
}

func (c *PoolCache) lookup(key string) ([]domain.Question, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
		return append([]domain.Question(nil), entry.questions...), true
	}
	return nil, false
}

func (c *PoolCache) ttlWithJitterLocked() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
