package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/plannerhq/planner/internal/api/handlers"
	"github.com/plannerhq/planner/internal/api/router"
	"github.com/plannerhq/planner/internal/cache"
	"github.com/plannerhq/planner/internal/config"
	"github.com/plannerhq/planner/internal/email"
	"github.com/plannerhq/planner/internal/pkg/logger"
	"github.com/plannerhq/planner/internal/pkg/validator"
	"github.com/plannerhq/planner/internal/providers"
	"github.com/plannerhq/planner/internal/repository/postgres"
	"github.com/plannerhq/planner/internal/services"
	"github.com/plannerhq/planner/internal/worker"
	"github.com/plannerhq/planner/migrations"
)

// @title Planner API
// @version 1.0
// @description Task and habit tracking API with subscription billing.
// @BasePath /api/v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	db, err := postgres.New(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, migrations.GetFS()); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	c := cache.New(cfg.Redis, log)
	defer c.Close()

	polar := providers.NewPolarClient(log, cfg.Billing.AccessToken, cfg.Billing.Server)
	emailSender := email.New(cfg.Email, log)

	userRepo := postgres.NewUserRepository(db)
	taskRepo := postgres.NewTaskRepository(db)
	habitRepo := postgres.NewHabitRepository(db)

	billingService := services.NewSubscriptionService(userRepo, polar, log)
	userService := services.NewUserService(userRepo, cfg.Auth.BCryptCost, log)
	taskService := services.NewTaskService(taskRepo, userRepo, c, log)
	habitService := services.NewHabitService(habitRepo, userRepo, c, log)

	val := validator.New()

	h := &router.Handlers{
		Health:  handlers.NewHealthHandler(db, log),
		Auth:    handlers.NewAuthHandler(userService, billingService, emailSender, cfg, log, val),
		Billing: handlers.NewBillingHandler(billingService, userService, polar, cfg, log),
		Task:    handlers.NewTaskHandler(taskService, log, val),
		Habit:   handlers.NewHabitHandler(habitService, log, val),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, log, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Worker.Enabled {
		sweeper := worker.NewEntitlementSweeper(billingService, userRepo, cfg.Worker.SweepSchedule, log)
		go func() {
			if err := sweeper.Start(ctx); err != nil {
				log.WithError(err).Error("Entitlement sweeper stopped with error")
			}
		}()
	}

	go func() {
		log.WithFields(map[string]interface{}{
			"addr": srv.Addr,
			"env":  cfg.Server.Environment,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}

	log.Info("Server stopped")
}
