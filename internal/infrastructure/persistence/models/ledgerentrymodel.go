package models

import (
	"time"

	"gorm.io/datatypes"
)

// LedgerEntryModel is the persistence model for confirmation ledger entries.
// Rows are inserted once per gateway token and never deleted.
type LedgerEntryModel struct {
	Token        string `gorm:"primaryKey;size:128"`
	SessionID    string `gorm:"size:128;index;not null"`
	State        string `gorm:"size:20;not null;index"`
	Success      *bool
	Response     datatypes.JSON
	ErrorMessage *string   `gorm:"type:text"`
	ClaimedAt    time.Time `gorm:"not null"`
	ConfirmedAt  *time.Time
	UpdatedAt    time.Time
}

func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}
