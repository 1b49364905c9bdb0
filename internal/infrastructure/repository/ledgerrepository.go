package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agendapay/agendapay/internal/domain/ledger"
	"github.com/agendapay/agendapay/internal/infrastructure/persistence/mappers"
	"github.com/agendapay/agendapay/internal/infrastructure/persistence/models"
	"github.com/agendapay/agendapay/internal/shared/db"
)

// LedgerRepository stores confirmation ledger entries in the ledger_entries table.
type LedgerRepository struct {
	db  *gorm.DB
	txm *db.TransactionManager
}

var _ ledger.Repository = (*LedgerRepository)(nil)

func NewLedgerRepository(gdb *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: gdb, txm: db.NewTransactionManager(gdb)}
}

// Claim inserts the entry unless a row for the token already exists, in
// which case the stored entry is returned.
func (r *LedgerRepository) Claim(ctx context.Context, entry *ledger.Entry) (*ledger.Entry, bool, error) {
	model, err := mappers.LedgerEntryToModel(entry)
	if err != nil {
		return nil, false, err
	}

	result := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model)
	if result.Error != nil {
		return nil, false, fmt.Errorf("failed to claim ledger entry: %w", result.Error)
	}
	if result.RowsAffected == 1 {
		return nil, true, nil
	}

	existing, err := r.Get(ctx, entry.Token)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// Complete writes the final result. The update only matches pending rows so
// a final entry is never rewritten.
func (r *LedgerRepository) Complete(ctx context.Context, token string, result ledger.Result, at time.Time) error {
	cols, err := mappers.LedgerResultColumns(result)
	if err != nil {
		return err
	}

	// When nothing matched, the count tells a missing token from a final one.
	return r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		tx := db.GetTxFromContext(ctx, r.db)
		updated := tx.Model(&models.LedgerEntryModel{}).
			Where("token = ? AND state = ?", token, string(ledger.StatePending)).
			Updates(map[string]interface{}{
				"state":         string(result.State()),
				"success":       cols.Success,
				"response":      cols.Response,
				"error_message": cols.ErrorMessage,
				"confirmed_at":  at.UTC(),
			})
		if updated.Error != nil {
			return fmt.Errorf("failed to complete ledger entry: %w", updated.Error)
		}
		if updated.RowsAffected > 0 {
			return nil
		}

		var count int64
		if err := tx.Model(&models.LedgerEntryModel{}).Where("token = ?", token).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check ledger entry: %w", err)
		}
		if count == 0 {
			return ledger.ErrEntryNotFound
		}
		return ledger.ErrAlreadyFinal
	})
}

func (r *LedgerRepository) Get(ctx context.Context, token string) (*ledger.Entry, error) {
	var model models.LedgerEntryModel

	if err := db.GetTxFromContext(ctx, r.db).Where("token = ?", token).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	return mappers.LedgerEntryToDomain(&model)
}
