// Package cache holds the Redis client and the cache-aside helpers built on
// it. The cache is strictly optional: when Redis is unreachable the client is
// left nil and every helper degrades to a direct load.
package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"mosaic/internal/middleware"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

const connectTimeout = 5 * time.Second

// errorCountingHook increments the Redis error counter for every failed
// command. redis.Nil is a cache miss, not an error.
type errorCountingHook struct{}

func (errorCountingHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (errorCountingHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (errorCountingHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// InitRedis establishes the Redis connection. addr accepts either a bare
// host:port or a redis:// URL. On any failure the client stays nil and the
// service runs uncached.
func InitRedis(addr string) {
	opts, err := parseAddr(addr)
	if err != nil {
		middleware.Logger.Warn("invalid Redis address, running without cache",
			"addr", addr, "error", err)
		client = nil
		return
	}

	c := redis.NewClient(opts)
	c.AddHook(errorCountingHook{})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("Redis unreachable, running without cache", "error", err)
		client = nil
		return
	}

	middleware.Logger.Info("Redis connected", "addr", opts.Addr)
	client = c
}

func parseAddr(addr string) (*redis.Options, error) {
	if strings.Contains(addr, "://") {
		return redis.ParseURL(addr)
	}
	return &redis.Options{Addr: addr}, nil
}

// GetClient returns the active Redis client, or nil when caching is disabled.
func GetClient() *redis.Client {
	return client
}
