package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"

	"events-admin/internal/config"
	"events-admin/internal/database"
)

func main() {
	var auto bool

	cmd := &cobra.Command{
		Use:   "migrate [file.sql ...]",
		Short: "Apply SQL migration files to the events database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args, auto)
		},
	}
	cmd.Flags().BoolVar(&auto, "auto", false, "also run gorm auto-migration for the dashboard models")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(files []string, auto bool) error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if len(files) == 0 {
		files = []string{"migrations/001_create_events.sql"}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		return err
	}

	// Connect to database
	db, err := database.Open(postgres.Open(cfg.GetDSN()))
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		return err
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			logger.Error("Failed to read migration file", "file", file, "error", err)
			return err
		}

		name := filepath.Base(file)
		logger.Info("Applying migration", "file", name)
		if err := db.Exec(string(sqlBytes)).Error; err != nil {
			logger.Error("Failed to apply migration", "file", name, "error", err)
			return err
		}
		logger.Info("Migration applied successfully", "file", name)
	}

	if auto {
		return database.AutoMigrate(db)
	}
	return nil
}
