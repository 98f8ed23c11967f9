package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies money movements.
type TransactionType string

// Transaction types
const (
	TransactionDeposit     TransactionType = "deposit"
	TransactionWithdrawal  TransactionType = "withdrawal"
	TransactionTransfer    TransactionType = "transfer"
	TransactionSwap        TransactionType = "swap"
	TransactionCardPayment TransactionType = "card_payment"
)

// TransactionStatus is the settlement state of a transaction.
type TransactionStatus string

// Transaction statuses
const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

// Transaction validation errors
var (
	ErrEmptyTransactionID      = validationError("transaction ID cannot be empty")
	ErrEmptyTransactionUserID  = validationError("transaction user ID cannot be empty")
	ErrInvalidTransactionType  = validationError("invalid transaction type")
	ErrInvalidTransactionState = validationError("invalid transaction status")
	ErrInvalidStatusTransition = validationError("transaction already settled")
)

// Transaction is a money movement on a user's account.
type Transaction struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"user_id"`
	WalletID    *uuid.UUID        `json:"wallet_id,omitempty"`
	Type        TransactionType   `json:"type"`
	Status      TransactionStatus `json:"status"`
	Amount      decimal.Decimal   `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description,omitempty"`
	ExternalRef string            `json:"external_ref,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewTransaction creates a pending transaction.
func NewTransaction(userID uuid.UUID, txType TransactionType, amount decimal.Decimal, currency, description string) (*Transaction, error) {
	now := time.Now().UTC()
	tx := &Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        txType,
		Status:      TransactionPending,
		Amount:      amount,
		Currency:    strings.ToUpper(strings.TrimSpace(currency)),
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return tx, nil
}

// Validate checks if the Transaction has valid data.
func (t *Transaction) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTransactionID
	}
	if t.UserID == uuid.Nil {
		return ErrEmptyTransactionUserID
	}
	switch t.Type {
	case TransactionDeposit, TransactionWithdrawal, TransactionTransfer, TransactionSwap, TransactionCardPayment:
	default:
		return ErrInvalidTransactionType
	}
	switch t.Status {
	case TransactionPending, TransactionCompleted, TransactionFailed:
	default:
		return ErrInvalidTransactionState
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !validCurrency(t.Currency) {
		return ErrInvalidCurrency
	}
	return nil
}

// Settle moves a pending transaction to completed or failed.
func (t *Transaction) Settle(status TransactionStatus) error {
	if t.Status != TransactionPending {
		return ErrInvalidStatusTransition
	}
	if status != TransactionCompleted && status != TransactionFailed {
		return ErrInvalidTransactionState
	}
	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	return nil
}
