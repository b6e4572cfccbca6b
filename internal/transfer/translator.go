// Package transfer translates directional asset transfers into the display
// shape transactions use, so both can be listed together. It is the single
// implementation every consumer shares; translator output is read-only and
// never feeds ledger arithmetic; the balance effects of a transfer are
// applied when the transfer is created.
package transfer

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"

	"github.com/momentfin/ledgersync/internal/domain"
)

// Category assigned to every translated transfer row.
const Category = "Transfer"

// AssetResolver resolves bare asset ids to mirrored assets. The ledger
// satisfies this.
type AssetResolver interface {
	Asset(id uuid.UUID) (*domain.Asset, error)
}

type Translator struct {
	resolver AssetResolver
}

func New(resolver AssetResolver) *Translator {
	return &Translator{resolver: resolver}
}

// ToDisplayRecord renders one transfer from the given asset's viewpoint:
// -amount when the viewpoint asset is the sender, +amount when it is the
// receiver. The counterparty name comes from the other side of the transfer.
func (t *Translator) ToDisplayRecord(tr *domain.AssetTransfer, viewpointAssetID uuid.UUID) (domain.DisplayRecord, error) {
	fromID := tr.FromAsset.ResolvedID()
	toID := tr.ToAsset.ResolvedID()

	var (
		amount       = tr.Amount
		counterParty domain.AssetRef
	)
	switch viewpointAssetID {
	case fromID:
		amount = amount.Neg()
		counterParty = tr.ToAsset
	case toID:
		counterParty = tr.FromAsset
	default:
		return domain.DisplayRecord{}, fmt.Errorf("ToDisplayRecord: transfer %s does not involve asset %s: %w",
			tr.ID, viewpointAssetID, domain.ErrTransferNotFound)
	}

	name, err := t.resolveName(counterParty)
	if err != nil {
		return domain.DisplayRecord{}, fmt.Errorf("ToDisplayRecord: %w", err)
	}

	title := tr.Description
	if title == "" {
		title = "Transfer"
	}

	return domain.DisplayRecord{
		LocalID:      SyntheticID(tr.ID),
		Title:        title,
		Amount:       amount,
		Category:     Category,
		Date:         tr.Date,
		CounterParty: name,
		IsTransfer:   true,
	}, nil
}

// ForAsset translates every transfer that touches the asset, skipping the
// ones that do not.
func (t *Translator) ForAsset(transfers []*domain.AssetTransfer, assetID uuid.UUID) ([]domain.DisplayRecord, error) {
	out := make([]domain.DisplayRecord, 0, len(transfers))
	for _, tr := range transfers {
		if tr.FromAsset.ResolvedID() != assetID && tr.ToAsset.ResolvedID() != assetID {
			continue
		}
		rec, err := t.ToDisplayRecord(tr, assetID)
		if err != nil {
			return nil, fmt.Errorf("ForAsset: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (t *Translator) resolveName(ref domain.AssetRef) (string, error) {
	if ref.Asset != nil {
		return ref.Asset.Name, nil
	}
	a, err := t.resolver.Asset(ref.ID)
	if err != nil {
		return "", fmt.Errorf("resolveName: %w", domain.ErrUnresolvedAsset)
	}
	return a.Name, nil
}

// SyntheticID derives a stable local handle from a transfer's durable id.
// Real transactions get positive handles, so the synthetic range is strictly
// negative and the two can never collide in a joint list.
func SyntheticID(id uuid.UUID) int64 {
	v := binary.BigEndian.Uint64(id[8:16])
	return -int64(v>>1) - 1
}
