// Package middlewares provides before/after middleware for katal applications.
//
// Every constructor returns a katal.Middleware. Register it globally with
// katal.WithMiddleware or under a name with katal.WithNamedMiddleware and
// opt routes in with katal.WithRouteMiddleware.
//
// # Request ID
//
// RequestID assigns an ID in the before phase (keeping one sent by an
// upstream proxy) and echoes it in X-Request-ID. RequestIDExtractor adds it
// to every log line:
//
//	app := katal.New(
//	    katal.WithLogger("api", middlewares.RequestIDExtractor()),
//	    katal.WithMiddleware(middlewares.RequestID()),
//	)
//
// # CORS
//
// CORS answers preflight requests from the before phase and decorates all
// other responses in the after phase:
//
//	katal.WithMiddleware(middlewares.CORS(
//	    middlewares.WithAllowOrigins("https://app.example.com"),
//	    middlewares.WithAllowCredentials(),
//	))
//
// # Authentication
//
// Auth consults an Authenticator and rejects anonymous requests with 401.
// JWTAuthenticator verifies HMAC-signed tokens:
//
//	jwtAuth, err := middlewares.NewJWTAuthenticator(secret, middlewares.WithJWTIssuer("katal"))
//	katal.WithNamedMiddleware("auth", middlewares.Auth(jwtAuth))
//
//	claims, _ := middlewares.GetPrincipal[*jwt.RegisteredClaims](c)
//
// # Rate limiting
//
// RateLimit takes a Limiter. LocalLimiter keeps token buckets in memory;
// RedisLimiter shares a fixed window counter across instances:
//
//	limiter, err := middlewares.NewRedisLimiter(client, cfg.RateLimit, "api")
//	katal.WithMiddleware(middlewares.RateLimit(limiter))
//
// # Response cache
//
// ResponseCache stores 200 responses to GET requests in a cache.Cache:
//
//	store := cache.NewRedis[middlewares.CachedResponse](client, nil, cache.WithPrefix("http"))
//	katal.WithNamedMiddleware("cache", middlewares.ResponseCache(store, middlewares.WithCacheTTL(time.Minute)))
//
// # Observability
//
// Metrics records Prometheus request counters and latency histograms;
// AccessLog writes one log line per request.
package middlewares
