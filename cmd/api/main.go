package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joshu-sajeev/notifyqueue/internal/config"
	"github.com/joshu-sajeev/notifyqueue/internal/dispatcher"
	"github.com/joshu-sajeev/notifyqueue/internal/janitor"
	"github.com/joshu-sajeev/notifyqueue/internal/job"
	"github.com/joshu-sajeev/notifyqueue/internal/logging"
	"github.com/joshu-sajeev/notifyqueue/internal/queue"
	"github.com/joshu-sajeev/notifyqueue/internal/sender"
	"github.com/joshu-sajeev/notifyqueue/internal/storage/gormstore"
	"github.com/joshu-sajeev/notifyqueue/internal/storage/postgres"
	redisstore "github.com/joshu-sajeev/notifyqueue/internal/storage/redis"
	"github.com/joshu-sajeev/notifyqueue/internal/storage/sqlite"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("service stopped with error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("close job store", zap.Error(err))
		}
	}()

	disp, err := newDispatcher(cfg, logger)
	if err != nil {
		return err
	}

	engine := queue.New(store, disp, logger,
		queue.WithBackoff(queue.Backoff{Base: cfg.BackoffBase, Max: cfg.BackoffMax, Jitter: cfg.BackoffJitter}),
		queue.WithPacing(cfg.Pacing),
		queue.WithStoreRetryDelay(cfg.StoreRetryDelay),
	)
	sweeper, err := janitor.New(engine, cfg.CleanupSchedule, cfg.Retention, logger)
	if err != nil {
		return err
	}

	if err := engine.Start(ctx); err != nil {
		return fmt.Errorf("start queue engine: %w", err)
	}
	sweeper.Start(ctx)

	service := job.NewJobService(engine, cfg.DefaultMaxAttempts, cfg.Retention)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: job.NewRouter(job.NewJobHandler(service), logger),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()

		sweeper.Stop()
		httpErr := srv.Shutdown(shutdownCtx)
		engineErr := engine.Stop(shutdownCtx)
		return errors.Join(httpErr, engineErr)
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (queue.JobStore, func() error, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendSQLite:
		db, err := sqlite.Open(cfg.SQLitePath, gormlogger.Warn, logger)
		if err != nil {
			return nil, nil, err
		}
		return gormstore.NewJobStore(db), closeDB(db), nil

	case config.StoreBackendRedis:
		rcfg, err := redisstore.LoadConfigFromEnv(ctx)
		if err != nil {
			return nil, nil, err
		}
		rdb, err := redisstore.Connect(ctx, rcfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("redis job store ready", zap.String("addr", rcfg.Addr))
		return redisstore.NewJobStore(rdb, rcfg.KeyPrefix, logger), rdb.Close, nil

	default:
		pcfg, err := postgres.LoadConfigFromEnv(ctx)
		if err != nil {
			return nil, nil, err
		}
		db, err := postgres.ConnectDB(ctx, pcfg, logger)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("postgres handle: %w", err)
		}
		if err := postgres.Migrate(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		return gormstore.NewJobStore(db), sqlDB.Close, nil
	}
}

func closeDB(db *gorm.DB) func() error {
	return func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
}

func newDispatcher(cfg *config.Config, logger *zap.Logger) (*dispatcher.Dispatcher, error) {
	renderer, err := sender.NewTemplateRenderer()
	if err != nil {
		return nil, err
	}

	var mailer sender.Mailer = sender.NewLogMailer(logger)
	if cfg.SMTPHost != "" {
		mailer = sender.NewSMTPMailer(sender.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		})
	} else {
		logger.Warn("SMTP_HOST not set, emails will only be logged")
	}

	email := sender.NewEmailSender(mailer, renderer, cfg.MailFrom, cfg.AdminEmail)
	d := dispatcher.New(cfg.SendTimeout, logger)
	for _, jt := range config.AllowedJobTypes {
		d.Register(jt, email)
	}
	if cfg.AdminWebhookURL != "" {
		d.Register(config.JobTypeAdminNewOrder, sender.NewWebhookSender(cfg.AdminWebhookURL, nil))
	}
	return d, nil
}
