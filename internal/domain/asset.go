package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AssetType string

const (
	AssetTypeCash       AssetType = "cash"
	AssetTypeBank       AssetType = "bank"
	AssetTypeCard       AssetType = "card"
	AssetTypeInvestment AssetType = "investment"
)

// Asset is a locally mirrored account. Balance mirrors the authoritative
// remote value; the client never invents a balance, every local mutation is
// previous balance plus or minus a compensation delta.
type Asset struct {
	ID        uuid.UUID
	Name      string
	Type      AssetType
	Balance   decimal.Decimal
	IsDeleted bool
	CreatedAt time.Time
}

func (a *Asset) Clone() *Asset {
	c := *a
	return &c
}
