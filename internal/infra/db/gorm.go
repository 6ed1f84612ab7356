package db

import (
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tastewire/tastewire/internal/config"
)

func New(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN
	if cfg.Database.EnableTLS && !strings.Contains(dsn, "sslmode=") {
		dsn = strings.TrimRight(dsn, " ") + " sslmode=require"
	}

	d, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := d.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpen)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdle)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)
	return d, nil
}

// RegisterOpenTelemetryPlugin enables gorm query tracing. Call after
// telemetry.SetupTracing so the global tracer provider is in place.
func RegisterOpenTelemetryPlugin(d *gorm.DB) error {
	return d.Use(tracing.NewPlugin())
}
