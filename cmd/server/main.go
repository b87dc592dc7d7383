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

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/supabase-community/auth-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/calabriando/api/internal/bootstrap"
	"github.com/calabriando/api/internal/config"
	"github.com/calabriando/api/internal/infra/cache"
	"github.com/calabriando/api/internal/infra/db"
	mq "github.com/calabriando/api/internal/infra/queue"
	"github.com/calabriando/api/internal/modules/handler"
	"github.com/calabriando/api/internal/router"
	"github.com/calabriando/api/internal/telemetry"
)

//	@title			Calabriando API
//	@version		1.0
//	@description	Content management and booking backend for the Calabriando tourism site.
//	@BasePath		/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func main() {
	inj := bootstrap.BuildContainer()

	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)
	defer log.Sync() //nolint:errcheck

	if _, err := telemetry.SetupTracing(cfg); err != nil {
		log.Fatal("setup tracing", zap.Error(err))
	}
	if _, err := telemetry.SetupMetrics(cfg); err != nil {
		log.Fatal("setup metrics", zap.Error(err))
	}
	if err := telemetry.InitBookingMetrics(); err != nil {
		log.Warn("init booking metrics", zap.Error(err))
	}

	gdb := do.MustInvoke[*gorm.DB](inj)
	rdb := do.MustInvoke[*redis.Client](inj)
	if cfg.Telemetry.Enabled && cfg.Telemetry.OtlpEndpoint != "" {
		if err := db.RegisterOpenTelemetryPlugin(gdb); err != nil {
			log.Warn("gorm otel plugin", zap.Error(err))
		}
		if err := cache.RegisterOpenTelemetryPlugin(rdb); err != nil {
			log.Warn("redis otel plugin", zap.Error(err))
		}
	}

	pub := do.MustInvoke[*mq.Publisher](inj)

	r := router.NewRouter(router.RouterDeps{
		Config:            cfg,
		Log:               log,
		Auth:              do.MustInvoke[auth.Client](inj),
		AuthHandler:       do.MustInvoke[*handler.AuthHandler](inj),
		ContentHandler:    do.MustInvoke[*handler.ContentHandler](inj),
		MediaHandler:      do.MustInvoke[*handler.MediaHandler](inj),
		GastronomyHandler: do.MustInvoke[*handler.GastronomyHandler](inj),
		BookingHandler:    do.MustInvoke[*handler.BookingHandler](inj),
		PublicHandler:     do.MustInvoke[*handler.PublicHandler](inj),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	if err := pub.Close(); err != nil {
		log.Warn("publisher close", zap.Error(err))
	}
	if err := cache.Close(rdb); err != nil {
		log.Warn("redis close", zap.Error(err))
	}
	if err := telemetry.Shutdown(ctx); err != nil {
		log.Warn("telemetry shutdown", zap.Error(err))
	}
	if err := telemetry.ShutdownMetrics(ctx); err != nil {
		log.Warn("metrics shutdown", zap.Error(err))
	}
	log.Info("bye")
}
