package migrations

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// RunMigrations brings the users and alerts tables up to date.
func RunMigrations(db *sql.DB, logger *zap.SugaredLogger, migrationsDir string) error {
	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("apply migrations from %s: %w", migrationsDir, err)
	}
	logger.Infow("Database migrations applied successfully!", "dir", migrationsDir)
	return nil
}
