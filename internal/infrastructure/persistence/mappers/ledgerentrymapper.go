package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/agendapay/agendapay/internal/domain/ledger"
	"github.com/agendapay/agendapay/internal/infrastructure/persistence/models"
)

func LedgerEntryToModel(e *ledger.Entry) (*models.LedgerEntryModel, error) {
	model := &models.LedgerEntryModel{
		Token:       e.Token,
		SessionID:   e.SessionID,
		State:       string(e.State),
		ClaimedAt:   e.ClaimedAt,
		ConfirmedAt: e.ConfirmedAt,
	}

	if e.Result != nil {
		cols, err := LedgerResultColumns(*e.Result)
		if err != nil {
			return nil, err
		}
		model.Success = cols.Success
		model.Response = cols.Response
		model.ErrorMessage = cols.ErrorMessage
	}

	return model, nil
}

// LedgerResultColumns converts a confirmation result into its column values.
func LedgerResultColumns(r ledger.Result) (*models.LedgerEntryModel, error) {
	success := r.Success
	cols := &models.LedgerEntryModel{Success: &success}

	if r.Response != nil {
		raw, err := json.Marshal(r.Response)
		if err != nil {
			return nil, fmt.Errorf("failed to encode ledger response: %w", err)
		}
		cols.Response = datatypes.JSON(raw)
	}
	if r.Error != "" {
		msg := r.Error
		cols.ErrorMessage = &msg
	}

	return cols, nil
}

func LedgerEntryToDomain(model *models.LedgerEntryModel) (*ledger.Entry, error) {
	state := ledger.State(model.State)
	if !state.IsValid() {
		return nil, fmt.Errorf("invalid ledger state: %s", model.State)
	}

	entry := &ledger.Entry{
		Token:     model.Token,
		SessionID: model.SessionID,
		State:     state,
		ClaimedAt: model.ClaimedAt.UTC(),
	}

	if model.ConfirmedAt != nil {
		at := model.ConfirmedAt.UTC()
		entry.ConfirmedAt = &at
	}

	if state.IsFinal() {
		result := ledger.Result{Success: state == ledger.StateConfirmed}
		if len(model.Response) > 0 && string(model.Response) != "null" {
			if err := json.Unmarshal(model.Response, &result.Response); err != nil {
				return nil, fmt.Errorf("failed to decode ledger response: %w", err)
			}
		}
		if model.ErrorMessage != nil {
			result.Error = *model.ErrorMessage
		}
		entry.Result = &result
	}

	return entry, nil
}
