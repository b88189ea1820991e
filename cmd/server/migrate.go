package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/simp-lee/flyingpig/internal/app"
	"github.com/simp-lee/flyingpig/internal/config"
)

// openDatabase sets up logging and the database outside of the HTTP app.
// The returned func releases both.
func openDatabase(cfg *config.Config) (*gorm.DB, *slog.Logger, func(), error) {
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("setup logger: %w", err)
	}
	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		_ = log.Close()
		return nil, nil, nil, fmt.Errorf("setup database: %w", err)
	}
	release := func() {
		if err := config.CloseDatabase(db); err != nil {
			log.Error("database close error", slog.Any("error", err))
		}
		_ = log.Close()
	}
	return db, log.Logger, release, nil
}

func migrateCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			db, log, release, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer release()

			if err := app.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info("migration completed", slog.String("driver", cfg.Database.Driver))
			return nil
		},
	}
}
