package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still holds our token, so an
// expired guard re-acquired by another request is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard is a Guard shared by every gateway instance. Keys expire after
// ttl so a crashed request cannot block its caller forever.
type RedisGuard struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewGuard returns a Redis-backed guard, or a process-local one when rdb is
// nil.
func NewGuard(rdb *redis.Client, ttl time.Duration) Guard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if rdb == nil {
		return NewLocalGuard()
	}
	return &RedisGuard{rdb: rdb, ttl: ttl, prefix: "submit"}
}

// Acquire fails open when Redis errors: a broken guard must not stop bookings.
func (g *RedisGuard) Acquire(ctx context.Context, key string) (func(), error) {
	k := g.prefix + ":" + key
	token := uuid.NewString()
	ok, err := g.rdb.SetNX(ctx, k, token, g.ttl).Result()
	if err != nil {
		log.Printf("submit guard: redis error for %s: %v", k, err)
		return func() {}, nil
	}
	if !ok {
		return nil, ErrInFlight
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, g.rdb, []string{k}, token).Err(); err != nil {
			log.Printf("submit guard: release %s: %v", k, err)
		}
	}, nil
}

// LocalGuard is an in-process Guard for single-instance deployments.
type LocalGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalGuard() *LocalGuard {
	return &LocalGuard{held: make(map[string]struct{})}
}

func (g *LocalGuard) Acquire(_ context.Context, key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.held[key]; busy {
		return nil, ErrInFlight
	}
	g.held[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, key)
			g.mu.Unlock()
		})
	}, nil
}
