package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/momentfin/ledgersync/internal/bus"
	"github.com/momentfin/ledgersync/internal/domain"
	"github.com/momentfin/ledgersync/internal/ledger"
	"github.com/momentfin/ledgersync/internal/logging"
)

type EditRequest struct {
	Title      string
	Amount     decimal.Decimal
	Type       domain.TransactionType
	CategoryID uuid.UUID
	Date       time.Time
}

// Edit confirms the change remotely first, then moves the totals by the
// edit delta: the old compensation comes out, the new one goes in. A type
// change is just that same arithmetic across both totals at once.
func (s *Service) Edit(ctx context.Context, localID int64, req EditRequest) (*domain.Transaction, error) {
	log := logging.FromContext(ctx)

	orig, err := s.ledger.Transaction(localID)
	if err != nil {
		return nil, fmt.Errorf("Edit: %w", err)
	}

	if err := validateCreate(CreateRequest{
		Title:      req.Title,
		Amount:     req.Amount,
		Type:       req.Type,
		AssetID:    orig.AssetID,
		CategoryID: req.CategoryID,
		Date:       req.Date,
	}); err != nil {
		return nil, fmt.Errorf("Edit: %w", err)
	}

	partial := map[string]any{
		"title":       req.Title,
		"amount":      req.Amount,
		"type":        string(req.Type),
		"category_id": req.CategoryID,
		"date":        req.Date.Format("2006-01-02"),
	}
	if _, err := s.remote.UpdateTransaction(ctx, orig.RemoteID, partial); err != nil {
		s.notifier.Error(ctx, "Could not save the changes.")
		return nil, fmt.Errorf("Edit: %w", err)
	}

	origType, origAmount, err := s.ledger.ApplyEdit(localID, req.Type, req.Amount)
	if err != nil {
		return nil, fmt.Errorf("Edit: %w", err)
	}
	if err := s.ledger.UpdateDetails(localID, req.Title, req.CategoryID, req.Date); err != nil {
		return nil, fmt.Errorf("Edit: %w", err)
	}

	// A soft-deleted transaction carries no live compensation; only active
	// ones move the asset balance.
	if !orig.IsDeleted {
		assetDelta := ledger.EditAssetDelta(origType, origAmount, req.Type, req.Amount)
		if !assetDelta.IsZero() {
			if err := s.applyAndSync(ctx, orig.AssetID, assetDelta); err != nil {
				log.Error("edit: balance sync degraded", "transaction_id", orig.RemoteID, "error", err)
			}
		}
	}

	updated, err := s.ledger.Transaction(localID)
	if err != nil {
		return nil, fmt.Errorf("Edit: %w", err)
	}

	s.events.Emit(bus.TopicTransactionUpdated, bus.TransactionEditEvent{
		Transaction:    updated,
		OriginalType:   origType,
		OriginalAmount: origAmount,
		NewType:        req.Type,
		NewAmount:      req.Amount,
		TypeChanged:    origType != req.Type,
	})
	s.notifier.Success(ctx, "Transaction updated.")

	log.Info("transaction updated",
		"transaction_id", orig.RemoteID,
		"type_changed", origType != req.Type,
	)
	return updated, nil
}
