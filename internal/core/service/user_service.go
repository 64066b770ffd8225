package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/99minutos/orders-console/internal/core/domain"
	"github.com/99minutos/orders-console/internal/core/ports"
)

const routeUsers = "users"

type UserService struct {
	api   ports.APIClient
	cache ports.Cache
	log   zerolog.Logger
}

func NewUserService(api ports.APIClient, cache ports.Cache, log zerolog.Logger) *UserService {
	return &UserService{api: api, cache: cache, log: log}
}

func (s *UserService) List(ctx context.Context, caller ports.Caller) ([]domain.User, error) {
	return readThrough(ctx, s.cache, s.log, "users", cacheKey(caller, "users"), usersTTL, 1,
		func(ctx context.Context) ([]domain.User, error) {
			users := []domain.User{}
			if err := s.api.Do(ctx, caller.Tokens, ports.Get(routeUsers), &users); err != nil {
				return nil, err
			}
			return users, nil
		})
}

// Technicians returns the active agents, the users orders can be assigned to.
func (s *UserService) Technicians(ctx context.Context, caller ports.Caller) ([]domain.User, error) {
	users, err := s.List(ctx, caller)
	if err != nil {
		return nil, err
	}
	techs := make([]domain.User, 0, len(users))
	for i := range users {
		if users[i].IsTechnician() {
			techs = append(techs, users[i])
		}
	}
	return techs, nil
}
