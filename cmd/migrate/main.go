package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fanta-optimizer/internal/models"
	"github.com/stitts-dev/fanta-optimizer/pkg/config"
	"github.com/stitts-dev/fanta-optimizer/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down]")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		logrus.Fatal("DATABASE_URL is required")
	}

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	switch command := os.Args[1]; command {
	case "up":
		if err := runMigrations(db); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		logrus.Info("Migrations completed successfully")

	case "down":
		if err := dropTables(db); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Info("Tables dropped successfully")

	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

func runMigrations(db *database.DB) error {
	if err := db.AutoMigrate(&models.BuildRecord{}); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}
	return nil
}

func dropTables(db *database.DB) error {
	if err := db.Migrator().DropTable(&models.BuildRecord{}); err != nil {
		return fmt.Errorf("failed to drop build_records: %w", err)
	}
	return nil
}
