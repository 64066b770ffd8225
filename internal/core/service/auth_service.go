package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/orders-console/internal/core/domain"
	"github.com/99minutos/orders-console/internal/core/ports"
)

// AuthService implements login, logout and the current-user query.
type AuthService struct {
	api      ports.APIClient
	accessor ports.SessionAccessor
	cache    ports.Cache
	log      zerolog.Logger
}

func NewAuthService(api ports.APIClient, accessor ports.SessionAccessor, cache ports.Cache, log zerolog.Logger) *AuthService {
	return &AuthService{api: api, accessor: accessor, cache: cache, log: log}
}

// Login exchanges credentials for a token, stores it in the caller's session
// and drops whatever the session had cached for a previous user.
func (s *AuthService) Login(ctx context.Context, caller ports.Caller, creds domain.Credentials) (*domain.User, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	var res domain.LoginResult
	if err := s.api.Do(ctx, caller.Tokens, ports.Post(ports.RouteLogin, creds), &res); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCredentials, err)
		}
		return nil, err
	}
	if res.AccessToken == "" {
		return nil, fmt.Errorf("%w: login response without access token", domain.ErrUpstream)
	}

	if err := caller.Tokens.SetToken(ctx, res.AccessToken); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}
	if err := s.cache.DeletePrefix(ctx, cacheKey(caller)); err != nil {
		s.log.Warn().Err(err).Msg("could not reset session cache after login")
	}
	_ = s.accessor.Forget(ctx, caller)

	s.log.Info().Str("user_id", res.User.ID).Str("role", string(res.User.Role)).Msg("user logged in")
	return &res.User, nil
}

// Logout tells the upstream and always clears the local session, even when
// the upstream call fails.
func (s *AuthService) Logout(ctx context.Context, caller ports.Caller) error {
	if err := s.api.Do(ctx, caller.Tokens, ports.Post(ports.RouteLogout, nil), nil); err != nil {
		s.log.Warn().Err(err).Msg("upstream logout failed, clearing session anyway")
	}

	ctx = context.WithoutCancel(ctx)
	if err := s.cache.DeletePrefix(ctx, cacheKey(caller)); err != nil {
		s.log.Warn().Err(err).Msg("could not reset session cache after logout")
	}
	_ = s.accessor.Forget(ctx, caller)
	if err := caller.Tokens.ClearToken(ctx); err != nil {
		s.log.Error().Err(err).Msg("could not clear token on logout")
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, caller ports.Caller) (*domain.User, error) {
	return s.accessor.Current(ctx, caller)
}
