package migration

import (
	"github.com/agendapay/agendapay/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.LedgerEntryModel{},
	}
}
