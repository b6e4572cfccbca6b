// Package transaction coordinates the lifecycle of a transaction across the
// local ledger mirror and the remote API: optimistic local mutation,
// compensation, remote call, rollback on failure, and event-bus fanout.
package transaction

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/momentfin/ledgersync/internal/api"
	"github.com/momentfin/ledgersync/internal/bus"
	"github.com/momentfin/ledgersync/internal/domain"
	"github.com/momentfin/ledgersync/internal/ledger"
	"github.com/momentfin/ledgersync/internal/notify"
)

type transactionAPI interface {
	CreateTransaction(ctx context.Context, data api.TransactionData) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, id uuid.UUID, partial map[string]any) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	RestoreTransaction(ctx context.Context, id uuid.UUID) error
	PermanentDeleteTransaction(ctx context.Context, id uuid.UUID) error
	GetTransactions(ctx context.Context, filters api.TransactionFilters) ([]*domain.Transaction, error)
}

type balanceWriter interface {
	ApplyDelta(assetID uuid.UUID, delta decimal.Decimal) error
	RevertDelta(assetID uuid.UUID, delta decimal.Decimal)
	SyncOrRecover(ctx context.Context, assetID uuid.UUID) error
}

type Service struct {
	ledger   *ledger.Ledger
	remote   transactionAPI
	balances balanceWriter
	events   *bus.Bus
	notifier notify.Notifier
}

func NewService(l *ledger.Ledger, remote transactionAPI, balances balanceWriter, events *bus.Bus, n notify.Notifier) *Service {
	return &Service{
		ledger:   l,
		remote:   remote,
		balances: balances,
		events:   events,
		notifier: n,
	}
}

// Load replaces the local transaction set from the server, soft-deleted
// records included so they can be restored without a re-fetch.
func (s *Service) Load(ctx context.Context, filters api.TransactionFilters) error {
	filters.IncludeDeleted = true
	txs, err := s.remote.GetTransactions(ctx, filters)
	if err != nil {
		return err
	}
	s.ledger.LoadTransactions(txs)
	return nil
}
