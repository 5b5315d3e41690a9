// Package guard short-circuits concurrent identical registration submissions.
package guard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"raceday/internal/race"
	"raceday/internal/registration/models"
)

const keyPrefix = "raceday:registration:inflight:"

// Key identifies one (email, category) submission.
func Key(email string, category race.Category) string {
	return keyPrefix + string(category) + ":" + models.NormalizeEmail(email)
}

// releaseScript deletes the key only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard holds submission locks in Redis so every instance sees them.
type RedisGuard struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed guard.
func NewRedis(client *redis.Client) *RedisGuard {
	return &RedisGuard{client: client}
}

// Acquire takes the lock with SET NX PX under a fresh token. It reports false
// when another submission holds it.
func (g *RedisGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, key, token, ttl).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// Release drops the lock if token still owns it. A lock that expired and was
// taken by another submission is left alone.
func (g *RedisGuard) Release(ctx context.Context, key, token string) error {
	err := releaseScript.Run(ctx, g.client, []string{key}, token).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// InMemoryGuard is the single-instance guard.
type InMemoryGuard struct {
	mu    sync.Mutex
	cache *gocache.Cache
}

// NewInMemory constructs an in-process guard. Expired locks are swept every cleanup.
func NewInMemory(cleanup time.Duration) *InMemoryGuard {
	return &InMemoryGuard{cache: gocache.New(gocache.NoExpiration, cleanup)}
}

// Acquire relies on Add failing for a live key.
func (g *InMemoryGuard) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	token := uuid.NewString()
	if err := g.cache.Add(key, token, ttl); err != nil {
		return "", false, nil
	}
	return token, true, nil
}

func (g *InMemoryGuard) Release(_ context.Context, key, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if held, ok := g.cache.Get(key); ok && held == token {
		g.cache.Delete(key)
	}
	return nil
}
