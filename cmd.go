package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vendicraft/internal/config"
	"vendicraft/pkg/cloudinary"
	"vendicraft/pkg/rabbitmq"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "vendicraft",
		Short:         "Storefront API with WhatsApp checkout",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema and exit",
			RunE:  runMigrate,
		},
	)
	return root
}

func newLogger() (*zap.Logger, error) {
	log, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return log, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg := config.Load(viper.New())
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	if db == nil {
		log.Info("memory driver selected, nothing to migrate")
		return nil
	}
	if err := migrate(db); err != nil {
		return err
	}
	log.Info("database migrated", zap.String("driver", cfg.DatabaseDriver))
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load(viper.New())
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	// --- Storage ---
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	repos := memoryRepositories()
	if db != nil {
		if err := migrate(db); err != nil {
			return err
		}
		repos = gormRepositories(db)
	}

	opts := Options{Logger: log}

	// --- Image host ---
	if uploader := cloudinary.NewClient(cloudinary.Config{
		BaseURL:   cfg.CloudinaryBaseURL,
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
	}); uploader.Configured() {
		opts.Uploader = uploader
	} else {
		log.Warn("cloudinary credentials missing, product images will not be uploaded")
	}

	// --- Order events ---
	if cfg.RabbitMQEnabled {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Logger: log.Named("rabbitmq")})
		if err != nil {
			return err
		}
		defer mq.Close()
		opts.Publisher = mq

		if err := mq.ConsumeOrderEvents(func(e rabbitmq.OrderCreated) error {
			log.Info("order event received",
				zap.String("order_id", e.OrderID),
				zap.Int64("total_amount", e.TotalAmount),
				zap.String("payment_method", e.PaymentMethod))
			return nil
		}); err != nil {
			return err
		}
	}

	app := NewApp(cfg, repos, opts)
	defer app.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Catalog.Load(ctx); err != nil {
		log.Warn("catalog not loaded at startup, will retry on first listing", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", zap.String("addr", cfg.AppPort))
		return app.Fiber.Listen(cfg.AppPort)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		return app.Fiber.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	log.Info("server exited")
	return nil
}
