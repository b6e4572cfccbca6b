// Package asset mirrors the user's accounts locally and owns every remote
// balance write, including the last-resort recovery path.
package asset

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/momentfin/ledgersync/internal/api"
	"github.com/momentfin/ledgersync/internal/domain"
	"github.com/momentfin/ledgersync/internal/ledger"
	"github.com/momentfin/ledgersync/internal/logging"
	"github.com/momentfin/ledgersync/internal/notify"
)

type assetAPI interface {
	GetAssets(ctx context.Context) ([]*domain.Asset, error)
	CreateAsset(ctx context.Context, data api.AssetData) (*domain.Asset, error)
	UpdateAsset(ctx context.Context, id uuid.UUID, data api.AssetData) (*domain.Asset, error)
	UpdateAssetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
}

type transferAPI interface {
	CreateAssetTransfer(ctx context.Context, data api.TransferData) (*domain.AssetTransfer, error)
	GetAssetTransfers(ctx context.Context) ([]*domain.AssetTransfer, error)
}

type Service struct {
	ledger    *ledger.Ledger
	assets    assetAPI
	transfers transferAPI
	notifier  notify.Notifier
}

func NewService(l *ledger.Ledger, assets assetAPI, transfers transferAPI, n notify.Notifier) *Service {
	return &Service{
		ledger:    l,
		assets:    assets,
		transfers: transfers,
		notifier:  n,
	}
}

// Load replaces the local asset mirror with the server's view.
func (s *Service) Load(ctx context.Context) error {
	assets, err := s.assets.GetAssets(ctx)
	if err != nil {
		return fmt.Errorf("Load: %w", err)
	}
	s.ledger.LoadAssets(assets)
	return nil
}

func (s *Service) Create(ctx context.Context, name string, kind domain.AssetType, balance decimal.Decimal) (*domain.Asset, error) {
	a, err := s.assets.CreateAsset(ctx, api.AssetData{Name: name, Type: string(kind), Balance: balance})
	if err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}
	s.ledger.UpsertAsset(a)
	return a, nil
}

// SyncBalance pushes the mirrored balance for one asset to the server. This
// is the primary write; callers fall back to Recover only when it fails.
func (s *Service) SyncBalance(ctx context.Context, assetID uuid.UUID) error {
	a, err := s.ledger.Asset(assetID)
	if err != nil {
		return fmt.Errorf("SyncBalance: %w", err)
	}

	_, err = s.assets.UpdateAsset(ctx, a.ID, api.AssetData{
		Name:    a.Name,
		Type:    string(a.Type),
		Balance: a.Balance,
	})
	if err != nil {
		return fmt.Errorf("SyncBalance: %w", err)
	}
	return nil
}

// ApplyDelta moves the local mirror only. The remote write is deferred to
// SyncOrRecover so an optimistic change can be reverted before the server
// ever sees it.
func (s *Service) ApplyDelta(assetID uuid.UUID, delta decimal.Decimal) error {
	if _, err := s.ledger.ApplyAssetDelta(assetID, delta); err != nil {
		return fmt.Errorf("ApplyDelta: %w", err)
	}
	return nil
}

// RevertDelta undoes a previously applied local delta. Rollback path only;
// no remote write, the remote never saw the optimistic change.
func (s *Service) RevertDelta(assetID uuid.UUID, delta decimal.Decimal) {
	// The asset existed moments ago; a miss here means it was purged
	// concurrently and there is nothing left to revert.
	_, _ = s.ledger.ApplyAssetDelta(assetID, delta.Neg())
}

// SyncOrRecover pushes the mirrored balance remotely, falling back to the
// narrow recovery write when the primary update fails. The caller computed
// the delta exactly once; the primary and the fallback push the same
// resulting balance. A fallback failure is terminal and user-visible.
func (s *Service) SyncOrRecover(ctx context.Context, assetID uuid.UUID) error {
	log := logging.FromContext(ctx)

	if err := s.SyncBalance(ctx, assetID); err != nil {
		log.Warn("primary balance update failed, entering recovery",
			"asset_id", assetID,
			"error", err,
		)
		if rerr := s.Recover(ctx, assetID); rerr != nil {
			s.notifier.Error(ctx, "Your account balance could not be updated. Please refresh.")
			return fmt.Errorf("SyncOrRecover: %w", rerr)
		}
	}
	return nil
}
