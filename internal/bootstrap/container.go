package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/calabriando/api/internal/config"
	"github.com/calabriando/api/internal/infra/blob"
	"github.com/calabriando/api/internal/infra/cache"
	"github.com/calabriando/api/internal/infra/db"
	"github.com/calabriando/api/internal/infra/httpclient"
	"github.com/calabriando/api/internal/infra/logger"
	"github.com/calabriando/api/internal/infra/payment"
	mq "github.com/calabriando/api/internal/infra/queue"
	"github.com/calabriando/api/internal/modules/handler"
	"github.com/calabriando/api/internal/modules/model"
	"github.com/calabriando/api/internal/modules/repo"
	"github.com/calabriando/api/internal/modules/service"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/supabase-community/auth-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
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

	// category registry
	do.Provide(inj, func(i *do.Injector) (*model.Registry, error) {
		return model.LoadRegistry()
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		registry := do.MustInvoke[*model.Registry](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			// Every registry category shares the Entity schema under its own table.
			for _, c := range registry.All() {
				if err := d.Table(c.Table).AutoMigrate(&model.Entity{}); err != nil {
					return nil, fmt.Errorf("migrate %s: %w", c.Table, err)
				}
			}
			if err := d.AutoMigrate(
				&model.GastronomyCategory{},
				&model.Booking{},
			); err != nil {
				return nil, err
			}
		}
		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return cache.New(cfg)
	})

	// RabbitMQ DialFunc for connection and reconnection
	do.Provide(inj, func(i *do.Injector) (mq.DialFunc, error) {
		cfg := do.MustInvoke[*config.Config](i)

		dialFn := func() (*amqp.Connection, error) {
			// Check if TLS is enabled via config or URL protocol
			useTLS := cfg.RabbitMQ.EnableTLS || strings.HasPrefix(cfg.RabbitMQ.URL, "amqps://")

			if useTLS {
				tlsConfig := &tls.Config{
					MinVersion: tls.VersionTLS12,
				}
				url := cfg.RabbitMQ.URL
				if strings.HasPrefix(url, "amqp://") {
					url = strings.Replace(url, "amqp://", "amqps://", 1)
				}
				return amqp.DialTLS(url, tlsConfig)
			}

			return amqp.Dial(cfg.RabbitMQ.URL)
		}

		return dialFn, nil
	})

	// RabbitMQ Connection
	do.Provide(inj, func(i *do.Injector) (*amqp.Connection, error) {
		dialFn := do.MustInvoke[mq.DialFunc](i)
		return dialFn()
	})

	// RabbitMQ Publisher
	do.Provide(inj, func(i *do.Injector) (*mq.Publisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		conn := do.MustInvoke[*amqp.Connection](i)
		log := do.MustInvoke[*zap.Logger](i)
		return mq.NewPublisher(conn, log, cfg)
	})

	// S3
	do.Provide(inj, func(i *do.Injector) (*blob.S3Deps, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return blob.NewS3(context.Background(), cfg)
	})

	// Supabase auth client
	do.Provide(inj, func(i *do.Injector) (auth.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.Supabase.AuthURL != "" {
			return auth.New(cfg.Supabase.ProjectRef, cfg.Supabase.APIKey).WithCustomAuthURL(cfg.Supabase.AuthURL), nil
		}
		return auth.New(cfg.Supabase.ProjectRef, cfg.Supabase.APIKey), nil
	})

	// Outbound clients
	do.Provide(inj, func(i *do.Injector) (*httpclient.MailerClient, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		return httpclient.NewMailerClient(cfg, log), nil
	})
	do.Provide(inj, func(i *do.Injector) (*payment.CheckoutClient, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		return payment.NewCheckoutClient(cfg, log), nil
	})
	do.Provide(inj, func(i *do.Injector) (*payment.WalletClient, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		return payment.NewWalletClient(cfg, log), nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.EntityRepo, error) {
		return repo.NewEntityRepo(
			do.MustInvoke[*gorm.DB](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.GastronomyRepo, error) {
		return repo.NewGastronomyRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.BookingRepo, error) {
		return repo.NewBookingRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (*service.Sanitizer, error) {
		return service.NewSanitizer(), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.MediaService, error) {
		return service.NewMediaService(
			do.MustInvoke[*blob.S3Deps](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ContentService, error) {
		return service.NewContentService(
			do.MustInvoke[*model.Registry](i),
			do.MustInvoke[repo.EntityRepo](i),
			do.MustInvoke[service.MediaService](i),
			do.MustInvoke[*service.Sanitizer](i),
			do.MustInvoke[*redis.Client](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.GastronomyService, error) {
		return service.NewGastronomyService(
			do.MustInvoke[repo.GastronomyRepo](i),
			do.MustInvoke[service.MediaService](i),
			do.MustInvoke[*service.Sanitizer](i),
			do.MustInvoke[*redis.Client](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.PublicService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		ttl := time.Duration(cfg.Redis.PublicCacheTTLSec) * time.Second
		return service.NewPublicService(
			do.MustInvoke[service.ContentService](i),
			do.MustInvoke[service.GastronomyService](i),
			do.MustInvoke[*redis.Client](i),
			ttl,
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.BookingService, error) {
		return service.NewBookingService(
			do.MustInvoke[repo.BookingRepo](i),
			do.MustInvoke[service.ContentService](i),
			do.MustInvoke[*httpclient.MailerClient](i),
			do.MustInvoke[*payment.CheckoutClient](i),
			do.MustInvoke[*payment.WalletClient](i),
			do.MustInvoke[*mq.Publisher](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.AuthHandler, error) {
		return handler.NewAuthHandler(do.MustInvoke[auth.Client](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ContentHandler, error) {
		return handler.NewContentHandler(do.MustInvoke[service.ContentService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.MediaHandler, error) {
		return handler.NewMediaHandler(
			do.MustInvoke[service.ContentService](i),
			do.MustInvoke[service.MediaService](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.GastronomyHandler, error) {
		return handler.NewGastronomyHandler(do.MustInvoke[service.GastronomyService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.BookingHandler, error) {
		return handler.NewBookingHandler(do.MustInvoke[service.BookingService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.PublicHandler, error) {
		return handler.NewPublicHandler(do.MustInvoke[service.PublicService](i)), nil
	})
	return inj
}
