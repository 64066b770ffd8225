package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/99minutos/orders-console/internal/api"
	"github.com/99minutos/orders-console/internal/api/middleware"
	"github.com/99minutos/orders-console/internal/core/service"
	"github.com/99minutos/orders-console/internal/infrastructure/apiclient"
	"github.com/99minutos/orders-console/internal/infrastructure/cache"
	"github.com/99minutos/orders-console/internal/pkg/config"
	"github.com/99minutos/orders-console/pkg/logger"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the console HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.LoadFrom(ctx, env)
	if err != nil {
		return err
	}
	if err := cfg.RequireSessionSecret(); err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: serviceName,
	})

	client, err := apiclient.New(apiclient.Config{BaseURL: cfg.APIURL, Timeout: cfg.APITimeout}, log)
	if err != nil {
		return err
	}
	defer client.CloseIdleConnections()

	b, err := openBackends(ctx, cfg, logger.Component("backends"))
	if err != nil {
		return err
	}
	defer b.close()

	sweepCtx, stopSweeping := context.WithCancel(ctx)
	defer stopSweeping()
	if len(b.sweepers) > 0 {
		go cache.Janitor(sweepCtx, sweepInterval, b.sweepers...)
	}

	svcLog := logger.Component("service")
	accessor := service.NewSessionAccessor(client, b.cache, svcLog)
	e := api.NewRouter(api.Deps{
		Log:      logger.Component("http"),
		Sessions: middleware.NewSessions(b.sessions, cfg.Session.Secret, cfg.Session.TTL, cfg.IsProduction()),
		Accessor: accessor,
		Auth:     service.NewAuthService(client, accessor, b.cache, svcLog),
		Orders:   service.NewOrderService(client, b.cache, svcLog),
		Reports:  service.NewReportService(client, b.cache, svcLog),
		Users:    service.NewUserService(client, b.cache, svcLog),
		Health:   b.health,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("api_url", cfg.APIURL).
			Str("sessions", cfg.Session.Backend).
			Str("cache", cfg.Cache.Backend).
			Msg("console listening")
		errCh <- e.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
