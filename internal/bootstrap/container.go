package bootstrap

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tastewire/tastewire/internal/config"
	"github.com/tastewire/tastewire/internal/gateway/llm"
	"github.com/tastewire/tastewire/internal/gateway/qloo"
	"github.com/tastewire/tastewire/internal/infra/cache"
	"github.com/tastewire/tastewire/internal/infra/db"
	"github.com/tastewire/tastewire/internal/infra/logger"
	mq "github.com/tastewire/tastewire/internal/infra/queue"
	"github.com/tastewire/tastewire/internal/modules/handler"
	"github.com/tastewire/tastewire/internal/modules/model"
	"github.com/tastewire/tastewire/internal/modules/repo"
	"github.com/tastewire/tastewire/internal/modules/service"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := d.AutoMigrate(
				&model.User{},
				&model.Project{},
				&model.InsightsResult{},
			); err != nil {
				return nil, err
			}
		}
		if err := EnsureDefaultUserExists(context.Background(), d, cfg, log); err != nil {
			return nil, err
		}
		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return cache.New(cfg)
	})

	// RabbitMQ
	do.Provide(inj, func(i *do.Injector) (mq.DialFunc, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return mq.NewDialFunc(cfg), nil
	})
	do.Provide(inj, func(i *do.Injector) (*amqp.Connection, error) {
		dialFn := do.MustInvoke[mq.DialFunc](i)
		return dialFn()
	})
	do.Provide(inj, func(i *do.Injector) (*mq.Publisher, error) {
		return mq.NewPublisher(
			do.MustInvoke[*amqp.Connection](i),
			do.MustInvoke[*zap.Logger](i),
			do.MustInvoke[*config.Config](i),
		)
	})

	// Gateways
	do.Provide(inj, func(i *do.Injector) (*qloo.Client, error) {
		return qloo.New(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*llm.Client, error) {
		return llm.New(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.UserRepo, error) {
		return repo.NewUserRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ProjectRepo, error) {
		return repo.NewProjectRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.InsightsRepo, error) {
		return repo.NewInsightsRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.CultureCacheRepo, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return repo.NewCultureCacheRepo(
			do.MustInvoke[*redis.Client](i),
			cfg.CacheTTL(),
		), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.InsightsService, error) {
		return service.NewInsightsService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[repo.InsightsRepo](i),
			do.MustInvoke[repo.CultureCacheRepo](i),
			do.MustInvoke[*qloo.Client](i),
			do.MustInvoke[*llm.Client](i),
			do.MustInvoke[*mq.Publisher](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.DiscoveryService, error) {
		return service.NewDiscoveryService(
			do.MustInvoke[*qloo.Client](i),
			do.MustInvoke[*llm.Client](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.MarketFitService, error) {
		return service.NewMarketFitService(
			do.MustInvoke[*llm.Client](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ProjectService, error) {
		return service.NewProjectService(do.MustInvoke[repo.ProjectRepo](i)), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.InsightsHandler, error) {
		return handler.NewInsightsHandler(do.MustInvoke[service.InsightsService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.DiscoveryHandler, error) {
		return handler.NewDiscoveryHandler(do.MustInvoke[service.DiscoveryService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.MarketFitHandler, error) {
		return handler.NewMarketFitHandler(do.MustInvoke[service.MarketFitService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ProjectHandler, error) {
		return handler.NewProjectHandler(do.MustInvoke[service.ProjectService](i)), nil
	})
	return inj
}
