package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/agribuddy/notify-engine/internal/config"
	"github.com/agribuddy/notify-engine/internal/email"
	"github.com/agribuddy/notify-engine/internal/handler"
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
	"github.com/agribuddy/notify-engine/internal/transport"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger: ", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()

	var sqlDB *sql.DB
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
		sqlDB, err = db.DB()
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
	dispatcher.SetMetrics(metrics)
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
	orchestrator.SetMetrics(metrics)
	if deliveries != nil {
		orchestrator.SetDeliveryStore(deliveries)
	}

	var publisher queue.Publisher
	if cfg.RabbitMQURL != "" {
		mq, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			logger.Fatal("rabbitmq initialization failed", zap.Error(err))
		}
		defer mq.Close()
		publisher = queue.NewRabbitMQPublisher(mq)
	} else {
		logger.Warn("RABBITMQ_URL not set, async enqueue disabled")
	}

	app := fiber.New(fiber.Config{
		AppName:      "notify-engine",
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(requestid.New())
	app.Use(metrics.HTTPMiddleware())
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	notificationHandler, err := handler.NewNotificationHandler(orchestrator, publisher, engine.Names())
	if err != nil {
		logger.Fatal("notification handler init failed", zap.Error(err))
	}
	notificationHandler.Register(app)

	smsHandler, err := handler.NewSMSHandler(dispatcher, engine)
	if err != nil {
		logger.Fatal("sms handler init failed", zap.Error(err))
	}
	smsHandler.SetBulkDefaults(cfg.BulkBatchSize, cfg.BulkDelay())
	if deliveries != nil {
		smsHandler.SetDeliveryStore(deliveries, logger)
	}
	smsHandler.Register(app)

	if deliveries != nil {
		deliveryHandler, err := handler.NewDeliveryHandler(deliveries)
		if err != nil {
			logger.Fatal("delivery handler init failed", zap.Error(err))
		}
		deliveryHandler.Register(app)
	}

	if schedules != nil {
		scheduleHandler, err := handler.NewScheduleHandler(schedules, engine.Names())
		if err != nil {
			logger.Fatal("schedule handler init failed", zap.Error(err))
		}
		scheduleHandler.Register(app)
	}

	handler.RegisterHealthRoutes(app, sqlDB, rdb)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop

		logger.Info("shutting down api server")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("notify-engine api started",
		zap.Int("port", cfg.APIPort),
		zap.Int("providers", registry.Len()),
	)
	if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
		logger.Fatal("server stopped unexpectedly", zap.Error(err))
	}
	<-shutdownDone
}
