package db

import (
	"regexp"
	"time"

	"github.com/calabriando/api/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

var sslmodeRe = regexp.MustCompile(`(?i)\bsslmode\s*=\s*\w+`)

func New(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN
	if cfg.Database.EnableTLS {
		if sslmodeRe.MatchString(dsn) {
			dsn = sslmodeRe.ReplaceAllString(dsn, "sslmode=require")
		} else {
			dsn += " sslmode=require"
		}
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpen)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdle)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)
	return gdb, nil
}

// RegisterOpenTelemetryPlugin must run after telemetry.SetupTracing so the
// plugin picks up the global tracer provider.
func RegisterOpenTelemetryPlugin(gdb *gorm.DB) error {
	return gdb.Use(tracing.NewPlugin())
}
