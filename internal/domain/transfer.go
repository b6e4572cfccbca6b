package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetRef is either an embedded asset or a bare identifier, depending on
// how deeply the server expanded the record. Exactly one side is set.
type AssetRef struct {
	Asset *Asset
	ID    uuid.UUID
}

func (r AssetRef) ResolvedID() uuid.UUID {
	if r.Asset != nil {
		return r.Asset.ID
	}
	return r.ID
}

// AssetTransfer moves Amount from FromAsset to ToAsset. Amount is unsigned;
// the direction carries the sign.
type AssetTransfer struct {
	ID          uuid.UUID
	FromAsset   AssetRef
	ToAsset     AssetRef
	Amount      decimal.Decimal
	Date        time.Time
	Description string
}

// DisplayRecord is a read-only row shaped like a transaction so transfers
// and transactions can be listed, deduplicated and sorted together.
// It never feeds back into ledger arithmetic.
type DisplayRecord struct {
	LocalID      int64
	Title        string
	Amount       decimal.Decimal // signed from the viewpoint asset
	Category     string
	Date         time.Time
	CounterParty string
	IsTransfer   bool
}
