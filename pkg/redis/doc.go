// Package redis opens pooled go-redis clients from a [Config].
//
// [Open] parses the URL, applies pool and timeout settings and pings the
// server, retrying with a growing delay so the service can start before
// Redis is reachable:
//
//	client, err := redis.Open(ctx, cfg.Redis)
//	if err != nil {
//	    return err
//	}
//
// [Healthcheck] plugs the client into the readiness endpoint and
// [Shutdown] closes it when the server stops:
//
//	app := katal.New(katal.WithHealthChecks(
//	    katal.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	))
//	err = app.Run(katal.ShutdownHook(redis.Shutdown(client)))
//
// The same client backs the Redis cache and the distributed rate limiter.
package redis
