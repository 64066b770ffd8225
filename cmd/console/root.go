package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	"github.com/99minutos/orders-console/internal/core/domain"
	"github.com/99minutos/orders-console/internal/core/ports"
	"github.com/99minutos/orders-console/internal/core/service"
	"github.com/99minutos/orders-console/internal/infrastructure/apiclient"
	"github.com/99minutos/orders-console/internal/infrastructure/cache"
	"github.com/99minutos/orders-console/internal/infrastructure/session"
	"github.com/99minutos/orders-console/internal/pkg/config"
	"github.com/99minutos/orders-console/pkg/logger"
)

// env is where configuration is read from.
var env envconfig.Lookuper = envconfig.OsLookuper()

const serviceName = "orders-console"

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "console",
		Short:         "Orders console: service orders from the browser or the terminal",
		Long:          "console serves the orders web console (serve) and exposes the same operations as terminal commands.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	load := func(cmd *cobra.Command) (*app, error) {
		return newApp(cmd.Context(), cmd.ErrOrStderr(), verbose)
	}

	// Server
	root.AddCommand(newServeCmd())

	// Session
	root.AddCommand(newLoginCmd(load))
	root.AddCommand(newLogoutCmd(load))
	root.AddCommand(newWhoamiCmd(load))

	// Domain
	root.AddCommand(newOrdersCmd(load))
	root.AddCommand(newReportsCmd(load))
	root.AddCommand(newUsersCmd(load))

	return root
}

type loader func(cmd *cobra.Command) (*app, error)

// app is the terminal session: one user, a token file, a per-process cache.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	tokens   *session.FileStore
	accessor *service.SessionAccessor
	auth     *service.AuthService
	orders   *service.OrderService
	reports  *service.ReportService
	users    *service.UserService
}

func newApp(ctx context.Context, logOut io.Writer, verbose bool) (*app, error) {
	cfg, err := config.LoadFrom(ctx, env)
	if err != nil {
		return nil, err
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logger.Init(logger.Options{Level: level, Pretty: true, Output: logOut, Service: serviceName})

	client, err := apiclient.New(apiclient.Config{BaseURL: cfg.APIURL, Timeout: cfg.APITimeout}, log)
	if err != nil {
		return nil, err
	}

	path := cfg.TokenFile
	if path == "" {
		path = session.DefaultFilePath()
	}

	qc := cache.NewMemory()
	svcLog := log.With().Str("component", "service").Logger()
	accessor := service.NewSessionAccessor(client, qc, svcLog)

	return &app{
		cfg:      cfg,
		log:      log,
		tokens:   session.NewFileStore(path),
		accessor: accessor,
		auth:     service.NewAuthService(client, accessor, qc, svcLog),
		orders:   service.NewOrderService(client, qc, svcLog),
		reports:  service.NewReportService(client, qc, svcLog),
		users:    service.NewUserService(client, qc, svcLog),
	}, nil
}

func (a *app) caller() ports.Caller {
	return ports.Caller{Tokens: a.tokens}
}

// requireUser is the terminal counterpart of the Protected guard.
func (a *app) requireUser(ctx context.Context, roles ...domain.Role) (*domain.User, error) {
	user, err := a.accessor.Current(ctx, a.caller())
	if err != nil {
		return nil, err
	}
	if len(roles) > 0 && !user.HasRole(roles...) {
		names := make([]string, len(roles))
		for i, r := range roles {
			names[i] = string(r)
		}
		return nil, fmt.Errorf("%w: requires role %s", domain.ErrForbidden, strings.Join(names, " or "))
	}
	return user, nil
}
