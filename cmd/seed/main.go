// Command seed populates a PostgreSQL database with the built-in sample
// profiles. It is idempotent: profiles that already exist are skipped.
package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cvd-risk-server/internal/config"
	"github.com/cvd-risk-server/internal/database"
	"github.com/cvd-risk-server/internal/domain"
	"github.com/cvd-risk-server/internal/repository"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	runner, err := database.NewMigrationRunner(cfg.Database, logger)
	if err != nil {
		log.Fatalf("Failed to create migration runner: %v", err)
	}
	if err := runner.Up(); err != nil {
		runner.Close()
		log.Fatalf("Failed to run migrations: %v", err)
	}
	runner.Close()

	repo := repository.NewProfileRepository(db.Pool, logger)

	var created, skipped int
	for _, seed := range domain.DefaultProfiles() {
		record := seed.Record
		_, err := repo.CreateProfile(ctx, seed.Name, seed.Description, &record)
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			logger.WithField("profile", seed.Name).Info("Profile already exists, skipping")
			skipped++
		case err != nil:
			log.Fatalf("Failed to create profile %q: %v", seed.Name, err)
		default:
			logger.WithField("profile", seed.Name).Info("Profile created")
			created++
		}
	}

	logger.WithFields(logrus.Fields{
		"created": created,
		"skipped": skipped,
	}).Info("Seeding complete")
}
