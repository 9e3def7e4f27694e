package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard makes sure the message for a date is sent once, even with several instances running
type Guard interface {
	// Acquire claims key for ttl; false means another run already holds it
	Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	// Mark sets key for ttl whether or not it is held
	Mark(ctx context.Context, key, owner string, ttl time.Duration) error
	// Release frees key so a later run can retry
	Release(ctx context.Context, key string) error
}

// GuardKey is the key guarding the message for one reference date
func GuardKey(reference time.Time) string {
	return fmt.Sprintf("cleaner:%s:sent", reference.Format("2006-01-02"))
}

// RedisGuard keeps the keys in Redis
type RedisGuard struct {
	client *redis.Client
}

// NewRedisGuard connects to Redis at addr and checks the connection
func NewRedisGuard(ctx context.Context, addr, password string) (*RedisGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisGuard{client: client}, nil
}

// Acquire implements Guard
func (g *RedisGuard) Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, key, owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set guard key %s: %w", key, err)
	}
	return ok, nil
}

// Mark implements Guard
func (g *RedisGuard) Mark(ctx context.Context, key, owner string, ttl time.Duration) error {
	if err := g.client.Set(ctx, key, owner, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set guard key %s: %w", key, err)
	}
	return nil
}

// Release implements Guard
func (g *RedisGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete guard key %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis connection
func (g *RedisGuard) Close() error {
	return g.client.Close()
}

// MemoryGuard keeps the keys in process memory
type MemoryGuard struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

// NewMemoryGuard creates an empty MemoryGuard; now nil means time.Now
func NewMemoryGuard(now func() time.Time) *MemoryGuard {
	if now == nil {
		now = time.Now
	}
	return &MemoryGuard{expires: make(map[string]time.Time), now: now}
}

// Acquire implements Guard
func (g *MemoryGuard) Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if exp, ok := g.expires[key]; ok && now.Before(exp) {
		return false, nil
	}
	g.expires[key] = now.Add(ttl)
	return true, nil
}

// Mark implements Guard
func (g *MemoryGuard) Mark(ctx context.Context, key, owner string, ttl time.Duration) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expires[key] = g.now().Add(ttl)
	return nil
}

// Release implements Guard
func (g *MemoryGuard) Release(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.expires, key)
	return nil
}
