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

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tastewire/tastewire/internal/bootstrap"
	"github.com/tastewire/tastewire/internal/config"
	"github.com/tastewire/tastewire/internal/infra/cache"
	"github.com/tastewire/tastewire/internal/infra/db"
	"github.com/tastewire/tastewire/internal/modules/handler"
	"github.com/tastewire/tastewire/internal/modules/repo"
	"github.com/tastewire/tastewire/internal/router"
	"github.com/tastewire/tastewire/internal/telemetry"
)

//	@title			TasteWire API
//	@version		1.0
//	@description	Cultural-intelligence insight generation for marketing teams
//	@BasePath		/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization

func main() {
	inj := bootstrap.BuildContainer()

	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)
	defer log.Sync()

	if cfg.Telemetry.Enabled && cfg.Telemetry.OtlpEndpoint != "" {
		if _, err := telemetry.SetupTracing(cfg); err != nil {
			log.Fatal("failed to set up tracing", zap.Error(err))
		}
		// query and command tracing pick up the global provider SetupTracing
		// just installed
		if err := db.RegisterOpenTelemetryPlugin(do.MustInvoke[*gorm.DB](inj)); err != nil {
			log.Fatal("failed to register gorm tracing", zap.Error(err))
		}
		if err := cache.RegisterOpenTelemetryPlugin(do.MustInvoke[*redis.Client](inj)); err != nil {
			log.Fatal("failed to register redis tracing", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := telemetry.Shutdown(ctx); err != nil {
				log.Warn("tracing shutdown", zap.Error(err))
			}
		}()
	}

	r := router.NewRouter(router.RouterDeps{
		Config:           cfg,
		Users:            do.MustInvoke[repo.UserRepo](inj),
		Log:              log,
		InsightsHandler:  do.MustInvoke[*handler.InsightsHandler](inj),
		DiscoveryHandler: do.MustInvoke[*handler.DiscoveryHandler](inj),
		MarketFitHandler: do.MustInvoke[*handler.MarketFitHandler](inj),
		ProjectHandler:   do.MustInvoke[*handler.ProjectHandler](inj),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("api listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}

		if rdb, err := do.Invoke[*redis.Client](inj); err == nil {
			_ = rdb.Close()
		}
		if conn, err := do.Invoke[*amqp.Connection](inj); err == nil {
			_ = conn.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
	log.Info("bye")
}
