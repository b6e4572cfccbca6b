package transaction

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/momentfin/ledgersync/internal/api"
	"github.com/momentfin/ledgersync/internal/bus"
	"github.com/momentfin/ledgersync/internal/domain"
	"github.com/momentfin/ledgersync/internal/ledger"
	"github.com/momentfin/ledgersync/internal/logging"
)

// Create validates locally, creates the transaction remotely, then mirrors
// it with the create compensation applied to the totals and the owning
// asset's balance.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*domain.Transaction, error) {
	log := logging.FromContext(ctx)

	if err := validateCreate(req); err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	created, err := s.remote.CreateTransaction(ctx, api.TransactionData{
		Title:      req.Title,
		Amount:     req.Amount,
		Type:       string(req.Type),
		AssetID:    req.AssetID,
		CategoryID: req.CategoryID,
		Date:       req.Date.Format("2006-01-02"),
	})
	if err != nil {
		s.notifier.Error(ctx, "Could not save the transaction.")
		return nil, fmt.Errorf("Create: %w", err)
	}

	local := s.ledger.Insert(created)

	delta := ledger.AssetDelta(ledger.OpCreate, local.Type, local.Amount)
	if err := s.applyAndSync(ctx, local.AssetID, delta); err != nil {
		// The transaction is committed remotely and mirrored; only the
		// balance sync is degraded, and the user was already told.
		log.Error("create: balance sync degraded", "transaction_id", local.RemoteID, "error", err)
	}

	s.events.Emit(bus.TopicTransactionCreated, bus.TransactionEvent{
		Transaction: local,
		Type:        local.Type,
		Amount:      local.Amount,
	})
	s.notifier.Success(ctx, "Transaction added.")

	log.Info("transaction created",
		"transaction_id", local.RemoteID,
		"type", local.Type,
		"amount", local.Amount,
	)
	return local, nil
}

// SoftDelete optimistically flags the transaction and compensates the totals
// and the owning asset, then confirms remotely. A remote failure reverts the
// flag and both compensations. No success notification here: the initiating
// dialog owns that message.
func (s *Service) SoftDelete(ctx context.Context, localID int64) error {
	tx, err := s.ledger.Transaction(localID)
	if err != nil {
		return fmt.Errorf("SoftDelete: %w", err)
	}

	op, err := s.ledger.SetDeleted(localID, true)
	if err != nil {
		return fmt.Errorf("SoftDelete: %w", err)
	}

	delta := ledger.AssetDelta(op, tx.Type, tx.Amount)
	if err := s.balances.ApplyDelta(tx.AssetID, delta); err != nil {
		// The flag flip and its totals compensation already landed; revert
		// them, the remote was never called.
		s.revertFlag(ctx, localID, false)
		return fmt.Errorf("SoftDelete: %w", err)
	}

	if err := s.remote.DeleteTransaction(ctx, tx.RemoteID); err != nil {
		s.rollbackFlag(ctx, localID, tx.AssetID, delta, false)
		s.notifier.Error(ctx, "Could not delete the transaction.")
		return fmt.Errorf("SoftDelete: %w", err)
	}

	if err := s.balances.SyncOrRecover(ctx, tx.AssetID); err != nil {
		logging.FromContext(ctx).Error("softDelete: balance sync degraded", "transaction_id", tx.RemoteID, "error", err)
	}

	deleted, _ := s.ledger.Transaction(localID)
	s.events.Emit(bus.TopicTransactionSoftDeleted, bus.TransactionEvent{
		Transaction: deleted,
		Type:        tx.Type,
		Amount:      tx.Amount,
	})
	return nil
}

// Restore is the exact inverse of SoftDelete and surfaces exactly one
// success or failure notification.
func (s *Service) Restore(ctx context.Context, localID int64) error {
	tx, err := s.ledger.Transaction(localID)
	if err != nil {
		return fmt.Errorf("Restore: %w", err)
	}

	op, err := s.ledger.SetDeleted(localID, false)
	if err != nil {
		return fmt.Errorf("Restore: %w", err)
	}

	delta := ledger.AssetDelta(op, tx.Type, tx.Amount)
	if err := s.balances.ApplyDelta(tx.AssetID, delta); err != nil {
		s.revertFlag(ctx, localID, true)
		return fmt.Errorf("Restore: %w", err)
	}

	if err := s.remote.RestoreTransaction(ctx, tx.RemoteID); err != nil {
		s.rollbackFlag(ctx, localID, tx.AssetID, delta, true)
		s.notifier.Error(ctx, "Could not restore the transaction.")
		return fmt.Errorf("Restore: %w", err)
	}

	if err := s.balances.SyncOrRecover(ctx, tx.AssetID); err != nil {
		logging.FromContext(ctx).Error("restore: balance sync degraded", "transaction_id", tx.RemoteID, "error", err)
	}

	restored, _ := s.ledger.Transaction(localID)
	s.events.Emit(bus.TopicTransactionRestored, bus.TransactionEvent{
		Transaction: restored,
		Type:        tx.Type,
		Amount:      tx.Amount,
	})
	s.notifier.Success(ctx, "Transaction restored.")
	return nil
}

// PermanentDelete removes the record from the local set immediately. A
// transaction that was still active carries one soft-delete-equivalent
// compensation; one that was already soft-deleted was compensated when it
// was flagged and must not be compensated again. A remote failure reinserts
// the record wholesale.
func (s *Service) PermanentDelete(ctx context.Context, localID int64) error {
	removed, op, err := s.ledger.Remove(localID)
	if err != nil {
		return fmt.Errorf("PermanentDelete: %w", err)
	}

	delta := ledger.AssetDelta(op, removed.Type, removed.Amount)
	if !delta.IsZero() {
		if err := s.balances.ApplyDelta(removed.AssetID, delta); err != nil {
			s.ledger.Reinsert(removed, op)
			return fmt.Errorf("PermanentDelete: %w", err)
		}
	}

	if err := s.remote.PermanentDeleteTransaction(ctx, removed.RemoteID); err != nil {
		s.ledger.Reinsert(removed, op)
		if !delta.IsZero() {
			s.balances.RevertDelta(removed.AssetID, delta)
		}
		s.notifier.Error(ctx, "Could not permanently delete the transaction.")
		return fmt.Errorf("PermanentDelete: %w", err)
	}

	if !delta.IsZero() {
		if err := s.balances.SyncOrRecover(ctx, removed.AssetID); err != nil {
			logging.FromContext(ctx).Error("permanentDelete: balance sync degraded", "transaction_id", removed.RemoteID, "error", err)
		}
	}

	s.events.Emit(bus.TopicTransactionPurged, bus.TransactionEvent{
		Transaction: removed,
		Type:        removed.Type,
		Amount:      removed.Amount,
	})
	s.notifier.Success(ctx, "Transaction permanently deleted.")
	return nil
}

// applyAndSync moves the local mirror and pushes the result remotely in one
// step, for paths with no optimistic window to protect.
func (s *Service) applyAndSync(ctx context.Context, assetID uuid.UUID, delta decimal.Decimal) error {
	if err := s.balances.ApplyDelta(assetID, delta); err != nil {
		return err
	}
	return s.balances.SyncOrRecover(ctx, assetID)
}

// revertFlag undoes an optimistic SetDeleted and its totals compensation.
// toDeleted is the flag state being restored.
func (s *Service) revertFlag(ctx context.Context, localID int64, toDeleted bool) {
	if _, err := s.ledger.SetDeleted(localID, toDeleted); err != nil {
		// The flag flip that got us here cannot have disappeared; log and
		// carry on.
		logging.FromContext(ctx).Error("rollback: flag revert failed", "local_id", localID, "error", err)
	}
}

// rollbackFlag reverts an optimistic SetDeleted plus its asset compensation.
func (s *Service) rollbackFlag(ctx context.Context, localID int64, assetID uuid.UUID, delta decimal.Decimal, toDeleted bool) {
	s.revertFlag(ctx, localID, toDeleted)
	s.balances.RevertDelta(assetID, delta)
}
