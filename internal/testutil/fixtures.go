package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/momentfin/ledgersync/internal/domain"
)

var (
	CheckingAssetID = uuid.MustParse("00000000-0000-0000-0001-000000000001")
	SavingsAssetID  = uuid.MustParse("00000000-0000-0000-0001-000000000002")
	GroceriesCatID  = uuid.MustParse("00000000-0000-0000-0002-000000000001")
	SalaryCatID     = uuid.MustParse("00000000-0000-0000-0002-000000000002")
)

var FixedDate = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func NewAsset(id uuid.UUID, name string, balance string) *domain.Asset {
	return &domain.Asset{
		ID:      id,
		Name:    name,
		Type:    domain.AssetTypeBank,
		Balance: Dec(balance),
	}
}

func NewTransaction(txType domain.TransactionType, amount string) *domain.Transaction {
	return &domain.Transaction{
		RemoteID:   uuid.New(),
		Title:      "test transaction",
		Amount:     Dec(amount),
		Type:       txType,
		AssetID:    CheckingAssetID,
		CategoryID: GroceriesCatID,
		Date:       FixedDate,
		Status:     domain.TransactionStatusActive,
	}
}
