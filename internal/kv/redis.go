package kv

import (
	"context"
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"
)

const (
	maxIdleConns = 3
	idleTimeout  = 240 * time.Second
)

// RedisStore is the Redis-backed Store used in production.
type RedisStore struct {
	pool *redis.Pool
}

// NewRedisStore creates a Store backed by the Redis server at addr.
func NewRedisStore(addr string, db int) *RedisStore {
	return &RedisStore{
		pool: &redis.Pool{
			MaxIdle:     maxIdleConns,
			IdleTimeout: idleTimeout,
			DialContext: func(ctx context.Context) (redis.Conn, error) {
				return redis.DialContext(ctx, "tcp", addr, redis.DialDatabase(db))
			},
			TestOnBorrow: func(c redis.Conn, t time.Time) error {
				if time.Since(t) < time.Minute {
					return nil
				}
				_, err := c.Do("PING")
				return err
			},
		},
	}
}

// Ping verifies the Redis connection. Called once at startup.
func (s *RedisStore) Ping(ctx context.Context) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = redis.DoContext(conn, ctx, "PING")
	return err
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return nil, false, err
	}
	defer conn.Close()

	value, err := redis.Bytes(redis.DoContext(conn, ctx, "GET", key))
	if errors.Is(err, redis.ErrNil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if ttl > 0 {
		_, err = redis.DoContext(conn, ctx, "SET", key, value, "EX", int64(ttl.Seconds()))
	} else {
		_, err = redis.DoContext(conn, ctx, "SET", key, value)
	}
	return err
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.pool.Close()
}
