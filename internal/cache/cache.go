package cache

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/freealert/freealert/internal/configs"
)

type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

type entry struct {
	body    []byte
	expires time.Time
}

// Store is a TTL cache for upstream response bodies, keeping widget refreshes
// from hammering the free-tier providers. Redis is used when configured and
// reachable; otherwise (and whenever Redis errors) the in-memory map serves.
// Nothing here is durable state; losing the cache only costs a refetch.
type Store struct {
	ttl      time.Duration
	logger   Logger
	useRedis bool
	client   *redis.Client

	mu  sync.RWMutex
	mem map[string]entry
}

func New(cfg configs.RedisConfig, ttl time.Duration, logger Logger) *Store {
	s := &Store{
		ttl:    ttl,
		logger: logger,
		mem:    make(map[string]entry),
	}

	if cfg.Addr != "" {
		s.client = redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := s.client.Ping(ctx).Result(); err != nil {
			logger.Error("redis unreachable, falling back to memory cache", "error", err)
		} else {
			logger.Info("redis cache connected", "addr", cfg.Addr)
			s.useRedis = true
		}
	}
	return s
}

// Get returns a cached body and whether it was present and fresh.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	if s.useRedis {
		body, err := s.client.Get(ctx, key).Bytes()
		if err == nil {
			return body, true
		}
		if err != redis.Nil {
			s.logger.Error("redis get failed", "key", key, "error", err)
		}
		return nil, false
	}

	s.mu.RLock()
	e, ok := s.mem[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expires) {
		// Expired entries are dropped here so the map does not grow with
		// dead bodies over the process lifetime.
		s.mu.Lock()
		delete(s.mem, key)
		s.mu.Unlock()
		return nil, false
	}
	return e.body, true
}

// Set stores a body under the configured TTL. Failures are logged, never
// surfaced; the cache is best effort.
func (s *Store) Set(ctx context.Context, key string, body []byte) {
	if s.useRedis {
		if err := s.client.Set(ctx, key, body, s.ttl).Err(); err != nil {
			s.logger.Error("redis set failed", "key", key, "error", err)
		}
		return
	}

	s.mu.Lock()
	s.mem[key] = entry{body: body, expires: time.Now().Add(s.ttl)}
	s.mu.Unlock()
}
