package services

import (
	"errors"
	"fmt"

	"github.com/anjiri1684/tutor_match/database"
	"github.com/anjiri1684/tutor_match/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Allowed ledger status edges. Completed rows are immutable except for the
// refund edge; nothing leaves failed or refunded.
var allowedTransactionTransitions = map[string][]string{
	models.TransactionStatusPending:   {models.TransactionStatusCompleted, models.TransactionStatusFailed},
	models.TransactionStatusCompleted: {models.TransactionStatusRefunded},
}

// RecordTransaction appends a ledger entry. Amount, currency and type are
// validated here; everything else about the row is immutable once written.
func RecordTransaction(txn *models.MonetizationTransaction) error {
	if txn.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if len(txn.Currency) != 3 {
		return fmt.Errorf("%w: currency must be a 3-letter code", ErrValidation)
	}
	switch txn.Type {
	case models.TransactionTypeLesson, models.TransactionTypePlatformFee, models.TransactionTypeBonus:
	default:
		return fmt.Errorf("%w: unknown transaction type %q", ErrValidation, txn.Type)
	}
	if txn.Status == "" {
		txn.Status = models.TransactionStatusPending
	}
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	return database.DB.Create(txn).Error
}

// UpdateTransactionStatus moves a ledger entry along one of the allowed
// edges, guarded by the current status so a double-submission cannot apply
// the same edge twice.
func UpdateTransactionStatus(txnID uuid.UUID, newStatus string) (*models.MonetizationTransaction, error) {
	var txn models.MonetizationTransaction
	if err := database.DB.First(&txn, "id = ?", txnID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: transaction %s", ErrNotFound, txnID)
		}
		return nil, err
	}

	allowed := false
	for _, next := range allowedTransactionTransitions[txn.Status] {
		if next == newStatus {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: cannot move transaction from %q to %q", ErrInvalidTransition, txn.Status, newStatus)
	}

	result := database.DB.Model(&models.MonetizationTransaction{}).
		Where("id = ? AND status = ?", txn.ID, txn.Status).
		Update("status", newStatus)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrConcurrencyConflict
	}

	txn.Status = newStatus
	return &txn, nil
}
