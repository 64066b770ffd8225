package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	fieldToken   = "token"
	cookiePrefix = "cookie:"
)

// SessionStore keeps each session in one hash. Key format:
// console:session:<id>, fields "token" and "cookie:<name>". Every write
// slides the expiry.
type SessionStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewSessionStore(client redis.UniversalClient, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) key(id string) string {
	return "console:session:" + id
}

func (s *SessionStore) Token(ctx context.Context, id string) (string, error) {
	tok, err := s.client.HGet(ctx, s.key(id), fieldToken).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session token: %w", err)
	}
	return tok, nil
}

func (s *SessionStore) SetToken(ctx context.Context, id, token string) error {
	key := s.key(id)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, fieldToken, token)
		p.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("session set token: %w", err)
	}
	return nil
}

func (s *SessionStore) ClearToken(ctx context.Context, id string) error {
	if err := s.client.HDel(ctx, s.key(id), fieldToken).Err(); err != nil {
		return fmt.Errorf("session clear token: %w", err)
	}
	return nil
}

func (s *SessionStore) Cookies(ctx context.Context, id string) (map[string]string, error) {
	all, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("session cookies: %w", err)
	}
	out := make(map[string]string)
	for field, value := range all {
		if name, ok := strings.CutPrefix(field, cookiePrefix); ok {
			out[name] = value
		}
	}
	return out, nil
}

func (s *SessionStore) SetCookies(ctx context.Context, id string, cookies map[string]string) error {
	if len(cookies) == 0 {
		return nil
	}
	key := s.key(id)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for name, value := range cookies {
			if value == "" {
				p.HDel(ctx, key, cookiePrefix+name)
				continue
			}
			p.HSet(ctx, key, cookiePrefix+name, value)
		}
		p.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("session set cookies: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
