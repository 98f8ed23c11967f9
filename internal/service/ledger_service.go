package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/events"
	"github.com/ethicbank/portal-api/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewTransaction describes a transaction to record.
type NewTransaction struct {
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Currency    string
	Description string
	WalletID    *uuid.UUID
	ExternalRef string
}

// LedgerService records money movements.
type LedgerService interface {
	// CreateTransaction stores a pending transaction and emits
	// transaction.created. A referenced wallet must belong to the user.
	CreateTransaction(ctx context.Context, userID uuid.UUID, in NewTransaction) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, page store.Page) ([]*domain.Transaction, error)
	// Settle completes or fails a pending transaction.
	Settle(ctx context.Context, userID, id uuid.UUID, status domain.TransactionStatus) (*domain.Transaction, error)
}

type ledgerService struct {
	transactions store.TransactionStore
	wallets      store.WalletStore
	emitter      events.EventEmitter
	logger       *slog.Logger
}

// NewLedgerService creates a LedgerService.
func NewLedgerService(
	transactions store.TransactionStore,
	wallets store.WalletStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (LedgerService, error) {
	if transactions == nil {
		return nil, errors.New("transactions cannot be nil")
	}
	if wallets == nil {
		return nil, errors.New("wallets cannot be nil")
	}
	if emitter == nil {
		return nil, errors.New("emitter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ledgerService{
		transactions: transactions,
		wallets:      wallets,
		emitter:      emitter,
		logger:       logger.With("component", "ledger_service"),
	}, nil
}

func (s *ledgerService) CreateTransaction(ctx context.Context, userID uuid.UUID, in NewTransaction) (*domain.Transaction, error) {
	tx, err := domain.NewTransaction(userID, in.Type, in.Amount, in.Currency, in.Description)
	if err != nil {
		return nil, err
	}
	tx.ExternalRef = in.ExternalRef

	if in.WalletID != nil {
		if _, err := s.wallets.GetByID(ctx, userID, *in.WalletID); err != nil {
			return nil, NewServiceError("create_transaction", "failed to load wallet", err)
		}
		tx.WalletID = in.WalletID
	}

	if err := s.transactions.Create(ctx, tx); err != nil {
		s.logger.ErrorContext(ctx, "failed to save transaction", "error", err, "user_id", userID)
		return nil, NewServiceError("create_transaction", "failed to save transaction", err)
	}
	s.logger.InfoContext(ctx, "transaction created",
		"transaction_id", tx.ID,
		"user_id", userID,
		"type", tx.Type)

	s.emit(ctx, events.TypeTransactionCreated, userID, events.TransactionCreated{
		TransactionID: tx.ID,
		Type:          string(tx.Type),
		Amount:        tx.Amount,
		Currency:      tx.Currency,
	})
	return tx, nil
}

func (s *ledgerService) GetTransaction(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	tx, err := s.transactions.GetByID(ctx, userID, id)
	if err != nil {
		return nil, NewServiceError("get_transaction", "failed to retrieve transaction", err)
	}
	return tx, nil
}

func (s *ledgerService) ListTransactions(ctx context.Context, userID uuid.UUID, page store.Page) ([]*domain.Transaction, error) {
	txs, err := s.transactions.ListByUser(ctx, userID, page.Normalize())
	if err != nil {
		return nil, NewServiceError("list_transactions", "failed to list transactions", err)
	}
	return txs, nil
}

func (s *ledgerService) Settle(ctx context.Context, userID, id uuid.UUID, status domain.TransactionStatus) (*domain.Transaction, error) {
	tx, err := s.transactions.GetByID(ctx, userID, id)
	if err != nil {
		return nil, NewServiceError("settle_transaction", "failed to retrieve transaction", err)
	}
	if err := tx.Settle(status); err != nil {
		return nil, err
	}
	if err := s.transactions.UpdateStatus(ctx, tx); err != nil {
		return nil, NewServiceError("settle_transaction", "failed to save status", err)
	}
	s.logger.InfoContext(ctx, "transaction settled", "transaction_id", id, "status", status)
	return tx, nil
}

// emit publishes an event after the originating write has committed. A
// failing handler is logged and does not undo the write.
func (s *ledgerService) emit(ctx context.Context, eventType string, userID uuid.UUID, payload any) {
	emit(ctx, s.emitter, s.logger, eventType, userID, payload)
}

func emit(ctx context.Context, emitter events.EventEmitter, logger *slog.Logger, eventType string, userID uuid.UUID, payload any) {
	event, err := events.NewEvent(eventType, userID, payload)
	if err != nil {
		logger.ErrorContext(ctx, "failed to build event", "error", err, "event_type", eventType)
		return
	}
	if err := emitter.EmitEvent(ctx, event); err != nil {
		logger.WarnContext(ctx, "event handler failed",
			"error", err,
			"event_type", eventType,
			"event_id", event.ID)
	}
}
