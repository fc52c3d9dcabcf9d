package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agribuddy/notify-engine/internal/config"
	"github.com/agribuddy/notify-engine/internal/email"
	"github.com/agribuddy/notify-engine/internal/infra/postgresql"
	"github.com/agribuddy/notify-engine/internal/infra/postgresql/migrations"
	infraredis "github.com/agribuddy/notify-engine/internal/infra/redis"
	"github.com/agribuddy/notify-engine/internal/notify"
	"github.com/agribuddy/notify-engine/internal/observability"
	"github.com/agribuddy/notify-engine/internal/provider"
	"github.com/agribuddy/notify-engine/internal/queue"
	"github.com/agribuddy/notify-engine/internal/ratelimit"
	"github.com/agribuddy/notify-engine/internal/repository"
	"github.com/agribuddy/notify-engine/internal/sms"
	"github.com/agribuddy/notify-engine/internal/template"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}
	if cfg.RabbitMQURL == "" {
		log.Fatal("RABBITMQ_URL is required for the worker")
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger: ", err)
	}
	defer logger.Sync() //nolint:errcheck

	var deliveries repository.DeliveryRepository
	var schedules repository.ScheduleRepository
	if cfg.DatabaseDSN != "" {
		db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
		if err != nil {
			logger.Fatal("postgres initialization failed", zap.Error(err))
		}
		if err := migrations.Migrate(db); err != nil {
			logger.Fatal("database migrations failed", zap.Error(err))
		}
		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatal("postgres underlying db init failed", zap.Error(err))
		}
		defer sqlDB.Close()
		deliveries = repository.NewGormDeliveryRepo(db)
		schedules = repository.NewGormScheduleRepo(db)
	} else {
		logger.Warn("DATABASE_DSN not set, delivery log and scheduling disabled")
	}

	var rdb *goredis.Client
	var limiter ratelimit.Limiter
	if cfg.RedisURL != "" {
		rdb, err = infraredis.NewRedis(cfg.RedisURL)
		if err != nil {
			logger.Fatal("redis initialization failed", zap.Error(err))
		}
		defer rdb.Close()
		limiter, err = infraredis.NewRateLimiter(rdb, cfg.RateLimitConfig())
		if err != nil {
			logger.Fatal("redis rate limiter init failed", zap.Error(err))
		}
	} else {
		logger.Warn("REDIS_URL not set, using in-memory rate limiter")
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimitConfig())
	}

	registry := provider.NewRegistry(cfg.ProviderSettings(), logger)
	dispatcher, err := sms.NewDispatcher(registry, logger)
	if err != nil {
		logger.Fatal("sms dispatcher init failed", zap.Error(err))
	}
	dispatcher.SetDefaults(cfg.SMSSenderID, cfg.DefaultCountry)

	engine, err := template.NewEngine(template.Defaults())
	if err != nil {
		logger.Fatal("template engine init failed", zap.Error(err))
	}

	var emails email.Sender
	switch {
	case cfg.EmailEnabled():
		emails, err = email.NewSMTPSender(email.SMTPConfig{
			Host:       cfg.SMTPHost,
			Port:       cfg.SMTPPort,
			Username:   cfg.SMTPUsername,
			Password:   cfg.SMTPPassword,
			From:       cfg.SMTPFrom,
			Encryption: cfg.SMTPEncryption,
		})
		if err != nil {
			logger.Fatal("smtp sender init failed", zap.Error(err))
		}
	case cfg.SMSTestMode:
		emails = email.NewMockSender()
		logger.Info("mock email sender enabled (test mode)")
	default:
		logger.Warn("SMTP not configured, email channel disabled")
	}

	orchestrator, err := notify.NewOrchestrator(engine, dispatcher, emails, limiter, notify.ChannelLimits{
		SMS:   cfg.RateLimitSMS,
		Email: cfg.RateLimitEmail,
	}, logger)
	if err != nil {
		logger.Fatal("orchestrator init failed", zap.Error(err))
	}
	if deliveries != nil {
		orchestrator.SetDeliveryStore(deliveries)
	}

	mq, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("rabbitmq initialization failed", zap.Error(err))
	}
	defer mq.Close()

	consumer := queue.NewRabbitMQConsumer(mq, cfg.WorkerConcurrency, logger)
	defer consumer.Close()

	worker, err := notify.NewWorker(orchestrator, consumer, cfg.WorkerConcurrency, logger)
	if err != nil {
		logger.Fatal("worker init failed", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return worker.Start(groupCtx) })

	if schedules != nil {
		publisher := queue.NewRabbitMQPublisher(mq)
		scheduler, err := notify.NewScheduler(schedules, publisher, 0, 0, logger)
		if err != nil {
			logger.Fatal("scheduler init failed", zap.Error(err))
		}
		group.Go(func() error { return scheduler.Start(groupCtx) })
	}

	logger.Info("notify-engine worker started",
		zap.Int("concurrency", cfg.WorkerConcurrency),
		zap.Int("providers", registry.Len()),
		zap.Bool("scheduler", schedules != nil),
	)
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("worker stopped unexpectedly", zap.Error(err))
	}
	logger.Info("notify-engine worker stopped")
}
