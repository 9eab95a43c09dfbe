package main

import (
	"fmt"
	"os"

	"github.com/plannerhq/planner/internal/config"
	"github.com/plannerhq/planner/internal/pkg/logger"
	"github.com/plannerhq/planner/internal/repository/postgres"
	"github.com/plannerhq/planner/migrations"
)

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

	log.Info("Migrations applied")
}
