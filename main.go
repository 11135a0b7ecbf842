// main.go
package main

import (
	"context"
	"log"
	"time"

	"event-registration/cmd"
	"event-registration/internal/data/repository"
	"event-registration/internal/usecase"
	"event-registration/internal/wire"
	"event-registration/migrations"
	"event-registration/pkg/broker"
	"event-registration/pkg/cache"
	"event-registration/pkg/clock"
	"event-registration/pkg/database"
	"event-registration/pkg/scheduler"
	"event-registration/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("timezone", config.App.Location().String()),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	if config.Database.MigrateOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := migrations.Apply(ctx, db.Pool())
		cancel()
		if err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
		logger.Info("Migrations applied")
	}

	// Seat map cache; a missing Redis only disables caching
	redisClient := cache.NewRedisClient(config.Redis, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Domain messages; without a broker they are only logged
	publisher := broker.NewNoopPublisher(logger)
	if config.RabbitMQ.URL != "" {
		rabbit, err := broker.NewRabbitPublisher(config.RabbitMQ, logger)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, messages will be dropped", zap.Error(err))
		} else {
			publisher = rabbit
		}
	}
	defer publisher.Close()

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, config, usecase.Deps{
		Cache:     cache.New(redisClient, logger),
		Publisher: publisher,
		Clock:     clock.NewSystem(),
	}, logger)

	// Persist observed event statuses in the background
	if config.Scheduler.Enabled {
		sched, err := scheduler.New(config.App.Location(), logger)
		if err != nil {
			logger.Fatal("Failed to create scheduler", zap.Error(err))
		}
		err = sched.Every("event-status-sweep", config.Scheduler.SweepInterval, 30*time.Second, func(ctx context.Context) error {
			_, err := app.Service.Event.SweepStatuses(ctx)
			return err
		})
		if err != nil {
			logger.Fatal("Failed to schedule status sweep", zap.Error(err))
		}
		sched.Start()
		defer func() {
			if err := sched.Shutdown(); err != nil {
				logger.Warn("Scheduler shutdown failed", zap.Error(err))
			}
		}()
	}

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}
}
