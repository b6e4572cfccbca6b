package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/momentfin/ledgersync/internal/domain"
)

// envelope is the server's uniform response shape: {success, data|message}.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

type transactionWire struct {
	ID         uuid.UUID       `json:"id"`
	Title      string          `json:"title"`
	Amount     decimal.Decimal `json:"amount"`
	Type       string          `json:"type"`
	AssetID    uuid.UUID       `json:"asset_id"`
	CategoryID uuid.UUID       `json:"category_id"`
	Date       string          `json:"date"`
	IsDeleted  bool            `json:"is_deleted"`
	CreatedAt  time.Time       `json:"created_at"`
}

const dateLayout = "2006-01-02"

func (w transactionWire) toDomain() (*domain.Transaction, error) {
	date, err := time.Parse(dateLayout, w.Date)
	if err != nil {
		return nil, err
	}
	status := domain.TransactionStatusActive
	if w.IsDeleted {
		status = domain.TransactionStatusSoftDeleted
	}
	return &domain.Transaction{
		RemoteID:   w.ID,
		Title:      w.Title,
		Amount:     w.Amount,
		Type:       domain.TransactionType(w.Type),
		AssetID:    w.AssetID,
		CategoryID: w.CategoryID,
		Date:       date,
		IsDeleted:  w.IsDeleted,
		Status:     status,
		CreatedAt:  w.CreatedAt,
	}, nil
}

type assetWire struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	IsDeleted bool            `json:"is_deleted"`
	CreatedAt time.Time       `json:"created_at"`
}

func (w assetWire) toDomain() *domain.Asset {
	return &domain.Asset{
		ID:        w.ID,
		Name:      w.Name,
		Type:      domain.AssetType(w.Type),
		Balance:   w.Balance,
		IsDeleted: w.IsDeleted,
		CreatedAt: w.CreatedAt,
	}
}

// transferWire carries from/to either expanded or as bare ids.
type transferWire struct {
	ID          uuid.UUID       `json:"id"`
	FromAsset   json.RawMessage `json:"from_asset"`
	ToAsset     json.RawMessage `json:"to_asset"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
}

func parseAssetRef(raw json.RawMessage) (domain.AssetRef, error) {
	var id uuid.UUID
	if err := json.Unmarshal(raw, &id); err == nil {
		return domain.AssetRef{ID: id}, nil
	}
	var w assetWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return domain.AssetRef{}, err
	}
	return domain.AssetRef{Asset: w.toDomain()}, nil
}

func (w transferWire) toDomain() (*domain.AssetTransfer, error) {
	from, err := parseAssetRef(w.FromAsset)
	if err != nil {
		return nil, err
	}
	to, err := parseAssetRef(w.ToAsset)
	if err != nil {
		return nil, err
	}
	date, err := time.Parse(dateLayout, w.Date)
	if err != nil {
		return nil, err
	}
	return &domain.AssetTransfer{
		ID:          w.ID,
		FromAsset:   from,
		ToAsset:     to,
		Amount:      w.Amount,
		Date:        date,
		Description: w.Description,
	}, nil
}

// TransactionData is the create/update payload for a transaction.
type TransactionData struct {
	Title      string          `json:"title"`
	Amount     decimal.Decimal `json:"amount"`
	Type       string          `json:"type"`
	AssetID    uuid.UUID       `json:"asset_id"`
	CategoryID uuid.UUID       `json:"category_id"`
	Date       string          `json:"date"`
}

// TransferData is the createAssetTransfer payload.
type TransferData struct {
	FromAsset   uuid.UUID       `json:"from_asset"`
	ToAsset     uuid.UUID       `json:"to_asset"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
}

// AssetData is the create/update payload for an asset.
type AssetData struct {
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Balance decimal.Decimal `json:"balance"`
}

// TransactionFilters narrows getTransactions.
type TransactionFilters struct {
	AssetID        *uuid.UUID
	From, To       *time.Time
	IncludeDeleted bool
}
