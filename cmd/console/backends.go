package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/orders-console/internal/api/handler"
	"github.com/99minutos/orders-console/internal/core/ports"
	"github.com/99minutos/orders-console/internal/infrastructure/cache"
	mongodb "github.com/99minutos/orders-console/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/orders-console/internal/infrastructure/db/redis"
	"github.com/99minutos/orders-console/internal/infrastructure/session"
	"github.com/99minutos/orders-console/internal/pkg/config"
)

const closeTimeout = 5 * time.Second

// backends are the session store and query cache selected by configuration.
type backends struct {
	sessions ports.SessionStore
	cache    ports.Cache
	health   map[string]handler.Pinger
	sweepers []interface{ Sweep() int }
	closers  []func(context.Context) error
	log      zerolog.Logger
}

func openBackends(ctx context.Context, cfg *config.Config, log zerolog.Logger) (b *backends, err error) {
	b = &backends{health: map[string]handler.Pinger{}, log: log}
	defer func() {
		if err != nil {
			b.close()
		}
	}()

	var (
		redisStore ports.SessionStore
		redisCache ports.Cache
	)
	if cfg.Session.Backend == config.BackendRedis || cfg.Cache.Backend == config.BackendRedis {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return b, err
		}
		b.closers = append(b.closers, func(context.Context) error { return rdb.Close() })
		redisStore = redisdb.NewSessionStore(rdb, cfg.Session.TTL)
		redisCache = redisdb.NewCache(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	}

	switch cfg.Session.Backend {
	case config.BackendRedis:
		b.sessions = redisStore
	case config.BackendMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return b, err
		}
		b.closers = append(b.closers, client.Disconnect)
		store := mongodb.NewSessionStore(db, cfg.Session.TTL)
		if err := store.EnsureIndexes(ctx); err != nil {
			return b, fmt.Errorf("mongo session indexes: %w", err)
		}
		b.sessions = store
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo connected")
	default:
		store := session.NewMemoryStore(cfg.Session.TTL)
		b.sessions = store
		b.sweepers = append(b.sweepers, store)
	}

	switch cfg.Cache.Backend {
	case config.BackendRedis:
		b.cache = redisCache
	default:
		qc := cache.NewMemory()
		b.cache = qc
		b.sweepers = append(b.sweepers, qc)
	}

	b.health["sessions"] = b.sessions
	b.health["cache"] = b.cache
	return b, nil
}

func (b *backends) close() {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			b.log.Warn().Err(err).Msg("backend close failed")
		}
	}
	b.closers = nil
}
