package redis

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
)

// Healthcheck returns a readiness check that expects PONG from the server.
//
//	katal.WithReadinessCheck("redis", redis.Healthcheck(client))
func Healthcheck(client redis.Cmdable) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrUnhealthy
		}
		reply, err := client.Ping(ctx).Result()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUnhealthy, err)
		}
		if reply != "PONG" {
			return fmt.Errorf("%w: unexpected reply %q", ErrUnhealthy, reply)
		}
		return nil
	}
}

// Shutdown returns a shutdown hook that closes the client pool.
//
//	app.Run(katal.ShutdownHook(redis.Shutdown(client)))
func Shutdown(client io.Closer) func(context.Context) error {
	return func(context.Context) error {
		if err := client.Close(); err != nil {
			return fmt.Errorf("redis: close: %w", err)
		}
		return nil
	}
}
