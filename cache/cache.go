package cache

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent.
var ErrMiss = errors.New("cache miss")

// Store is the key-value cache consumed by the response cache middleware and
// the invalidator. Every caller treats it as advisory: a miss or an error
// must never fail the request.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePattern(ctx context.Context, pattern string) error
	Close() error
}

type redisStore struct {
	rdb *goredis.Client
}

// NewRedisStore connects to Redis at addr and verifies the connection with a
// ping. Callers should fall back to NewNoopStore when addr is empty.
func NewRedisStore(addr string) (Store, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &redisStore{rdb: rdb}, nil
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}
	return val, nil
}

func (s *redisStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

// DeletePattern resolves a glob to concrete keys with SCAN before deleting,
// so list endpoints cached under arbitrary query strings can be purged
// without enumerating them up front. KEYS is avoided on purpose.
func (s *redisStore) DeletePattern(ctx context.Context, pattern string) error {
	iter := s.rdb.Scan(ctx, 0, pattern, 100).Iterator()

	keys := make([]string, 0, 16)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

func (s *redisStore) Close() error {
	return s.rdb.Close()
}

// noopStore makes every read a miss and every write a success, degrading the
// system to always-miss when Redis is not configured.
type noopStore struct{}

func NewNoopStore() Store { return noopStore{} }

func (noopStore) Get(ctx context.Context, key string) ([]byte, error) { return nil, ErrMiss }
func (noopStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}
func (noopStore) DeletePattern(ctx context.Context, pattern string) error { return nil }
func (noopStore) Close() error                                            { return nil }
