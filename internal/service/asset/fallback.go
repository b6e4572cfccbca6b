package asset

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/momentfin/ledgersync/internal/domain"
	"github.com/momentfin/ledgersync/internal/logging"
)

// Recover is the last-resort path after a failed primary balance update. It
// re-reads only the asset id and current mirrored balance and issues the
// narrow single-field write, bypassing the validation the full update runs.
// There is no further fallback behind it.
func (s *Service) Recover(ctx context.Context, assetID uuid.UUID) error {
	log := logging.FromContext(ctx)

	a, err := s.ledger.Asset(assetID)
	if err != nil {
		return fmt.Errorf("Recover: %w", domain.ErrRecoveryFailed)
	}

	if err := s.assets.UpdateAssetBalance(ctx, a.ID, a.Balance); err != nil {
		log.Error("fallback balance write failed",
			"asset_id", a.ID,
			"balance", a.Balance,
			"error", err,
		)
		return fmt.Errorf("Recover: %w: %w", domain.ErrRecoveryFailed, err)
	}

	log.Info("balance recovered via fallback write", "asset_id", a.ID, "balance", a.Balance)
	return nil
}
