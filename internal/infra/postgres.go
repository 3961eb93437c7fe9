package infra

import (
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"shiftwise/internal/config"
	"shiftwise/internal/models/db_models"
)

func InitPostgresql(cfg config.Config, logger *slog.Logger) (*gorm.DB, error) {
	if cfg.PostgresURL == "" {
		return nil, fmt.Errorf("POSTGRES_URL is empty")
	}

	db, err := gorm.Open(postgres.Open(cfg.PostgresURL), &gorm.Config{})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&db_models.Account{},
		&db_models.AccountGroup{},
		&db_models.Agency{},
		&db_models.Profile{},
		&db_models.Plan{},
		&db_models.Subscription{},
		&db_models.Shift{},
		&db_models.ShiftAssignment{},
		&db_models.StaffPerformance{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func ClosePostgresql(db *gorm.DB, logger *slog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("get database instance", slog.Any("error", err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		logger.Error("close database connection", slog.Any("error", err))
	} else {
		logger.Info("postgres connection closed")
	}
}
