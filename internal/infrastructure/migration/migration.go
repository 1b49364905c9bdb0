package migration

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/agendapay/agendapay/internal/shared/config"
	"github.com/agendapay/agendapay/internal/shared/constants"
	"github.com/agendapay/agendapay/internal/shared/logger"
)

// Manager handles database migrations with different strategies
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks a strategy for the environment and driver: gorm
// AutoMigrate in development, golang-migrate for MySQL elsewhere and goose
// for sqlite.
func NewManager(environment string, db *config.DatabaseConfig) *Manager {
	var strategy Strategy

	switch {
	case db.IsSQLite():
		strategy = NewGooseStrategy(GooseDialect(db))
	case strings.EqualFold(environment, constants.EnvDevelopment):
		strategy = NewGormAutoMigrateStrategy()
	default:
		strategy = NewGolangMigrateStrategy()
	}

	return NewManagerWithStrategy(strategy)
}

// NewManagerWithStrategy creates a new migration manager with a specific strategy
func NewManagerWithStrategy(strategy Strategy) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   logger.WithComponent("migration.manager"),
	}
}

// Migrate executes the configured migration strategy
func (m *Manager) Migrate(db *gorm.DB, models ...interface{}) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(db, models...); err != nil {
		m.logger.Errorw("migration failed",
			"strategy", m.strategy.GetName(),
			"error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully", "strategy", m.strategy.GetName())
	return nil
}

func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}

// GooseDialect maps the configured driver to a goose dialect name.
func GooseDialect(db *config.DatabaseConfig) string {
	if db.IsSQLite() {
		return "sqlite3"
	}
	return "mysql"
}
