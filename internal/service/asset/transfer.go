package asset

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/momentfin/ledgersync/internal/api"
	"github.com/momentfin/ledgersync/internal/domain"
	"github.com/momentfin/ledgersync/internal/logging"
)

type TransferRequest struct {
	FromAsset   uuid.UUID
	ToAsset     uuid.UUID
	Amount      decimal.Decimal
	Date        time.Time
	Description string
}

// CreateTransfer moves money between two mirrored accounts. The remote call
// owns the real balance effect; on success the same -amount/+amount pair is
// mirrored locally so both accounts read correctly without a re-fetch.
func (s *Service) CreateTransfer(ctx context.Context, req TransferRequest) (*domain.AssetTransfer, error) {
	log := logging.FromContext(ctx)

	if err := s.validateTransfer(req); err != nil {
		return nil, fmt.Errorf("CreateTransfer: %w", err)
	}

	tr, err := s.transfers.CreateAssetTransfer(ctx, api.TransferData{
		FromAsset:   req.FromAsset,
		ToAsset:     req.ToAsset,
		Amount:      req.Amount,
		Date:        req.Date.Format("2006-01-02"),
		Description: req.Description,
	})
	if err != nil {
		s.notifier.Error(ctx, "Transfer failed. No balances were changed.")
		return nil, fmt.Errorf("CreateTransfer: %w", err)
	}

	if _, err := s.ledger.ApplyAssetDelta(req.FromAsset, req.Amount.Neg()); err != nil {
		return nil, fmt.Errorf("CreateTransfer: mirror sender: %w", err)
	}
	if _, err := s.ledger.ApplyAssetDelta(req.ToAsset, req.Amount); err != nil {
		return nil, fmt.Errorf("CreateTransfer: mirror receiver: %w", err)
	}

	log.Info("transfer mirrored",
		"transfer_id", tr.ID,
		"from_asset", req.FromAsset,
		"to_asset", req.ToAsset,
		"amount", req.Amount,
	)
	s.notifier.Success(ctx, "Transfer completed.")
	return tr, nil
}

// Transfers fetches the raw transfer records for translation into display
// rows.
func (s *Service) Transfers(ctx context.Context) ([]*domain.AssetTransfer, error) {
	out, err := s.transfers.GetAssetTransfers(ctx)
	if err != nil {
		return nil, fmt.Errorf("Transfers: %w", err)
	}
	return out, nil
}

func (s *Service) validateTransfer(req TransferRequest) error {
	if !req.Amount.IsPositive() {
		return fmt.Errorf("validateTransfer: %w", domain.ErrInvalidAmount)
	}
	if req.FromAsset == req.ToAsset {
		return fmt.Errorf("validateTransfer: %w", domain.ErrSelfTransfer)
	}
	if _, err := s.ledger.Asset(req.FromAsset); err != nil {
		return fmt.Errorf("validateTransfer: sender: %w", err)
	}
	if _, err := s.ledger.Asset(req.ToAsset); err != nil {
		return fmt.Errorf("validateTransfer: receiver: %w", err)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("validateTransfer: %w", domain.ErrMissingDate)
	}
	return nil
}
