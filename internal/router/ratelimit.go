package router

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"catalog/internal/cache"
)

const rateLimitTimeout = 200 * time.Millisecond

var errUnidentifiedClient = errors.New("request has no client address")

// RedisRateStore is a fixed-window counter shared by every instance that
// points at the same Redis. It allows the request when Redis fails.
type RedisRateStore struct {
	client *cache.Client
	name   string
	limit  int
	window time.Duration
	now    func() time.Time
}

var _ middleware.RateLimiterStore = (*RedisRateStore)(nil)

// NewRedisRateStore creates a store permitting limit requests per window for each identifier.
func NewRedisRateStore(client *cache.Client, name string, limit int, window time.Duration) *RedisRateStore {
	return &RedisRateStore{
		client: client,
		name:   name,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow implements middleware.RateLimiterStore.
func (s *RedisRateStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), rateLimitTimeout)
	defer cancel()

	bucket := s.now().UnixNano() / int64(s.window)
	key := fmt.Sprintf("ratelimit:%s:%s:%d", s.name, identifier, bucket)

	count, err := s.client.Incr(ctx, key, s.window)
	if err != nil {
		log.Printf("rate limiter %s: redis unavailable, allowing request: %v", s.name, err)
		return true, nil
	}
	return count <= int64(s.limit), nil
}

// newRateStore picks the Redis store when Redis is configured and echo's
// in-memory token bucket otherwise.
func newRateStore(client *cache.Client, name string, limit int, window time.Duration) middleware.RateLimiterStore {
	if client.Enabled() {
		return NewRedisRateStore(client, name, limit, window)
	}
	return middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(limit) / window.Seconds()),
		Burst:     limit,
		ExpiresIn: window,
	})
}

// RateLimit limits requests per client IP using store.
func RateLimit(store middleware.RateLimiterStore) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			ip := c.RealIP()
			if ip == "" {
				return "", errUnidentifiedClient
			}
			return ip, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusBadRequest, "unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
		},
	})
}
