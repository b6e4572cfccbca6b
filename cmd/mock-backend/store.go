package main

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type txRecord struct {
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

type assetRecord struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	IsDeleted bool            `json:"is_deleted"`
	CreatedAt time.Time       `json:"created_at"`
}

type transferRecord struct {
	ID          uuid.UUID       `json:"id"`
	FromAsset   uuid.UUID       `json:"from_asset"`
	ToAsset     uuid.UUID       `json:"to_asset"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
}

// store is the backend's whole database. Balance effects of transaction and
// transfer commands are applied here, server-side; clients only mirror them.
type store struct {
	mu           sync.Mutex
	transactions map[uuid.UUID]*txRecord
	assets       map[uuid.UUID]*assetRecord
	transfers    []*transferRecord
	preferences  map[string]string
}

func newStore() *store {
	s := &store{
		transactions: make(map[uuid.UUID]*txRecord),
		assets:       make(map[uuid.UUID]*assetRecord),
		preferences:  make(map[string]string),
	}

	// A couple of seeded accounts so a fresh engine has something to sync.
	for _, seed := range []struct {
		name    string
		balance string
	}{
		{"Checking", "100"},
		{"Savings", "50"},
	} {
		a := &assetRecord{
			ID:        uuid.New(),
			Name:      seed.name,
			Type:      "bank",
			Balance:   decimal.RequireFromString(seed.balance),
			CreatedAt: time.Now().UTC(),
		}
		s.assets[a.ID] = a
	}
	return s
}

func assetSign(txType string) decimal.Decimal {
	if txType == "income" {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(-1)
}

func (s *store) createTransaction(rec *txRecord) *txRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = uuid.New()
	rec.CreatedAt = time.Now().UTC()
	s.transactions[rec.ID] = rec

	if a, ok := s.assets[rec.AssetID]; ok {
		a.Balance = a.Balance.Add(assetSign(rec.Type).Mul(rec.Amount))
	}
	return rec
}

func (s *store) setTransactionDeleted(id uuid.UUID, deleted bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.transactions[id]
	if !ok || rec.IsDeleted == deleted {
		return false
	}
	rec.IsDeleted = deleted

	sign := assetSign(rec.Type).Neg()
	if !deleted {
		sign = sign.Neg()
	}
	if a, ok := s.assets[rec.AssetID]; ok {
		a.Balance = a.Balance.Add(sign.Mul(rec.Amount))
	}
	return true
}

func (s *store) purgeTransaction(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.transactions[id]
	if !ok {
		return false
	}
	delete(s.transactions, id)

	// An active record still carries a balance effect to undo; a
	// soft-deleted one was compensated when it was flagged.
	if !rec.IsDeleted {
		if a, ok := s.assets[rec.AssetID]; ok {
			a.Balance = a.Balance.Sub(assetSign(rec.Type).Mul(rec.Amount))
		}
	}
	return true
}

func (s *store) createTransfer(rec *transferRecord) *transferRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = uuid.New()
	s.transfers = append(s.transfers, rec)

	if a, ok := s.assets[rec.FromAsset]; ok {
		a.Balance = a.Balance.Sub(rec.Amount)
	}
	if a, ok := s.assets[rec.ToAsset]; ok {
		a.Balance = a.Balance.Add(rec.Amount)
	}
	return rec
}
