package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/orders-console/internal/core/domain"
	"github.com/99minutos/orders-console/internal/core/ports"
)

// SessionAccessor answers "who is logged in" for a session, caching the
// answer for meTTL. Consumers must not assume freshness beyond that window.
type SessionAccessor struct {
	api   ports.APIClient
	cache ports.Cache
	log   zerolog.Logger
}

func NewSessionAccessor(api ports.APIClient, cache ports.Cache, log zerolog.Logger) *SessionAccessor {
	return &SessionAccessor{api: api, cache: cache, log: log}
}

// Current resolves the user behind caller. A session without a token, or any
// failure of the lookup, yields domain.ErrUnauthenticated. The lookup is not
// retried.
func (a *SessionAccessor) Current(ctx context.Context, caller ports.Caller) (*domain.User, error) {
	if caller.Tokens == nil {
		return nil, domain.ErrUnauthenticated
	}
	token, err := caller.Tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	if token == "" {
		_ = a.Forget(ctx, caller)
		return nil, domain.ErrUnauthenticated
	}

	user, err := readThrough(ctx, a.cache, a.log, "me", cacheKey(caller, "me"), meTTL, 0,
		func(ctx context.Context) (domain.User, error) {
			var u domain.User
			err := a.api.Do(ctx, caller.Tokens, ports.Get(ports.RouteMe), &u)
			return u, err
		})
	if err != nil {
		a.log.Debug().Err(err).Str("session", caller.SessionID).Msg("current user lookup failed")
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	return &user, nil
}

// Forget drops the cached user so the next Current asks the upstream again.
func (a *SessionAccessor) Forget(ctx context.Context, caller ports.Caller) error {
	return a.cache.DeletePrefix(ctx, cacheKey(caller, "me"))
}
