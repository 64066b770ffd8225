package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/orders-console/internal/api/metrics"
	"github.com/99minutos/orders-console/internal/core/domain"
	"github.com/99minutos/orders-console/internal/core/ports"
)

// Freshness windows of the cached queries.
const (
	meTTL      = 5 * time.Minute
	ordersTTL  = 2 * time.Minute
	reportsTTL = 5 * time.Minute
	usersTTL   = 5 * time.Minute
)

// retryBackoff is the pause before the nth retry (n starts at 1).
var retryBackoff = func(n int) time.Duration { return time.Duration(n) * 250 * time.Millisecond }

// cacheKey scopes a query to the caller's session. Callers without a session
// id (the CLI) share the "local" scope.
func cacheKey(caller ports.Caller, parts ...string) string {
	sid := caller.SessionID
	if sid == "" {
		sid = "local"
	}
	return "session:" + sid + ":" + strings.Join(parts, ":")
}

// retryable reports whether a failed query may succeed when repeated.
// Authentication, authorisation, lookup and validation failures are final,
// and an upstream status is only repeated when it is temporary.
func retryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, domain.ErrSessionExpired),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrInvalidInput):
		return false
	}
	var re *domain.RemoteError
	if errors.As(err, &re) {
		return re.Temporary()
	}
	return true
}

func withRetry[T any](ctx context.Context, retries int, fn func(context.Context) (T, error)) (T, error) {
	var (
		v   T
		err error
	)
	for attempt := 0; ; attempt++ {
		v, err = fn(ctx)
		if err == nil || attempt >= retries || !retryable(err) {
			return v, err
		}
		select {
		case <-ctx.Done():
			return v, err
		case <-time.After(retryBackoff(attempt + 1)):
		}
	}
}

// readThrough serves key from the cache when fresh, otherwise fetches with
// up to retries extra attempts and stores the result for ttl. Cache failures
// degrade to a direct fetch.
func readThrough[T any](ctx context.Context, c ports.Cache, log zerolog.Logger, query, key string, ttl time.Duration, retries int, fetch func(context.Context) (T, error)) (T, error) {
	var v T
	hit, err := c.Get(ctx, key, &v)
	switch {
	case err != nil:
		metrics.CacheLookupsTotal.WithLabelValues(query, "error").Inc()
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	case hit:
		metrics.CacheLookupsTotal.WithLabelValues(query, "hit").Inc()
		return v, nil
	default:
		metrics.CacheLookupsTotal.WithLabelValues(query, "miss").Inc()
	}

	v, err = withRetry(ctx, retries, fetch)
	if err != nil {
		return v, err
	}
	if err := c.Set(ctx, key, v, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return v, nil
}

func invalidate(ctx context.Context, c ports.Cache, log zerolog.Logger, caller ports.Caller, queries ...string) {
	for _, q := range queries {
		if err := c.DeletePrefix(ctx, cacheKey(caller, q)); err != nil {
			log.Warn().Err(err).Str("query", q).Msg("cache invalidation failed")
		}
	}
}
