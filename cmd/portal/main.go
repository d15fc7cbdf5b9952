// @title        Portal API
// @version      1.0
// @description  Backend-for-frontend for the admin, employee and client portal.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vinodhini/portal/internal/api"
	"github.com/vinodhini/portal/internal/api/middleware"
	"github.com/vinodhini/portal/internal/core/service"
	mongodb "github.com/vinodhini/portal/internal/infrastructure/db/mongo"
	redisdb "github.com/vinodhini/portal/internal/infrastructure/db/redis"
	"github.com/vinodhini/portal/internal/infrastructure/gateway"
	"github.com/vinodhini/portal/internal/infrastructure/http/handlers"
	"github.com/vinodhini/portal/internal/pkg/config"
	"github.com/vinodhini/portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.Production(),
		Service: "portal",
	})
	if !cfg.Production() {
		figure.NewFigure("portal", "cybermedium", true).Print()
		fmt.Println()
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("portal stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("portal stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	mclient, mdb, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mclient.Disconnect(dctx)
	}()

	reconciliations := mongodb.NewReconciliationRepository(mdb)
	if err := reconciliations.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("could not create reconciliation indexes")
	}

	gwCfg := gateway.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout}
	anonymous := gateway.New(gwCfg, nil, log)

	workspaces := service.NewWorkspaceManager(ctx, service.WorkspaceDeps{
		Storage:         redisdb.NewSessionStorage(rdb, cfg.Redis.KeyPrefix, cfg.Session.TTL),
		Auth:            anonymous,
		Backends:        gateway.NewFactory(gwCfg, log),
		Reconciliations: reconciliations,
		PollInterval:    cfg.API.PollInterval,
		IdleTTL:         cfg.Session.TTL,
		Log:             log,
	})
	defer workspaces.Close()

	e := api.NewRouter(api.Deps{
		Workspaces: workspaces,
		Cookie: middleware.CookieConfig{
			Name:   cfg.Session.Cookie,
			TTL:    cfg.Session.TTL,
			Secure: cfg.Session.Secure,
		},
		LoginRateLimit: cfg.Session.LoginRateLimit,
		Probes: map[string]handlers.Probe{
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			"mongodb": func(ctx context.Context) error { return mclient.Ping(ctx, nil) },
			"backend": anonymous.Ping,
		},
		Log: log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("backend", cfg.API.BaseURL).Msg("portal listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error { return workspaces.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
