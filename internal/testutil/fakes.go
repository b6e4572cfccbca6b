// Package testutil holds the fakes and fixtures the engine's package tests
// share. The fakes fail on demand so rollback paths can be exercised.
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/momentfin/ledgersync/internal/api"
	"github.com/momentfin/ledgersync/internal/domain"
	"github.com/momentfin/ledgersync/internal/push"
)

var ErrRemoteDown = errors.New("remote unavailable")

// FakeAPI satisfies every consumer interface the engine declares against the
// REST client. Set the Fail* flags to make individual calls fail.
type FakeAPI struct {
	mu sync.Mutex

	FailCreate        bool
	FailUpdate        bool
	FailDelete        bool
	FailRestore       bool
	FailPurge         bool
	FailUpdateAsset   bool
	FailBalancePatch  bool
	FailCreateXfer    bool
	FailSavePref      bool
	FailGetPref       bool
	RemotePreference  string
	BalancePatchCalls int
	UpdateAssetCalls  int
	SavedPreferences  []string
	LastBalancePatch  decimal.Decimal

	Transactions []*domain.Transaction
	Assets       []*domain.Asset
	Transfers    []*domain.AssetTransfer
}

func (f *FakeAPI) CreateTransaction(_ context.Context, data api.TransactionData) (*domain.Transaction, error) {
	if f.FailCreate {
		return nil, ErrRemoteDown
	}
	return &domain.Transaction{
		RemoteID:   uuid.New(),
		Title:      data.Title,
		Amount:     data.Amount,
		Type:       domain.TransactionType(data.Type),
		AssetID:    data.AssetID,
		CategoryID: data.CategoryID,
		Date:       FixedDate,
		Status:     domain.TransactionStatusActive,
	}, nil
}

func (f *FakeAPI) UpdateTransaction(_ context.Context, id uuid.UUID, _ map[string]any) (*domain.Transaction, error) {
	if f.FailUpdate {
		return nil, ErrRemoteDown
	}
	return &domain.Transaction{RemoteID: id}, nil
}

func (f *FakeAPI) DeleteTransaction(_ context.Context, _ uuid.UUID) error {
	if f.FailDelete {
		return ErrRemoteDown
	}
	return nil
}

func (f *FakeAPI) RestoreTransaction(_ context.Context, _ uuid.UUID) error {
	if f.FailRestore {
		return ErrRemoteDown
	}
	return nil
}

func (f *FakeAPI) PermanentDeleteTransaction(_ context.Context, _ uuid.UUID) error {
	if f.FailPurge {
		return ErrRemoteDown
	}
	return nil
}

func (f *FakeAPI) GetTransactions(_ context.Context, _ api.TransactionFilters) ([]*domain.Transaction, error) {
	return f.Transactions, nil
}

func (f *FakeAPI) GetAssets(_ context.Context) ([]*domain.Asset, error) {
	return f.Assets, nil
}

func (f *FakeAPI) CreateAsset(_ context.Context, data api.AssetData) (*domain.Asset, error) {
	return &domain.Asset{
		ID:      uuid.New(),
		Name:    data.Name,
		Type:    domain.AssetType(data.Type),
		Balance: data.Balance,
	}, nil
}

func (f *FakeAPI) UpdateAsset(_ context.Context, id uuid.UUID, data api.AssetData) (*domain.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateAssetCalls++
	if f.FailUpdateAsset {
		return nil, ErrRemoteDown
	}
	return &domain.Asset{ID: id, Name: data.Name, Type: domain.AssetType(data.Type), Balance: data.Balance}, nil
}

func (f *FakeAPI) UpdateAssetBalance(_ context.Context, _ uuid.UUID, balance decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.BalancePatchCalls++
	f.LastBalancePatch = balance
	if f.FailBalancePatch {
		return ErrRemoteDown
	}
	return nil
}

func (f *FakeAPI) CreateAssetTransfer(_ context.Context, data api.TransferData) (*domain.AssetTransfer, error) {
	if f.FailCreateXfer {
		return nil, ErrRemoteDown
	}
	return &domain.AssetTransfer{
		ID:          uuid.New(),
		FromAsset:   domain.AssetRef{ID: data.FromAsset},
		ToAsset:     domain.AssetRef{ID: data.ToAsset},
		Amount:      data.Amount,
		Date:        FixedDate,
		Description: data.Description,
	}, nil
}

func (f *FakeAPI) GetAssetTransfers(_ context.Context) ([]*domain.AssetTransfer, error) {
	return f.Transfers, nil
}

func (f *FakeAPI) GetUserCurrencyPreference(_ context.Context, _ string) (string, error) {
	if f.FailGetPref {
		return "", ErrRemoteDown
	}
	return f.RemotePreference, nil
}

func (f *FakeAPI) SaveUserCurrencyPreference(_ context.Context, code, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailSavePref {
		return ErrRemoteDown
	}
	f.SavedPreferences = append(f.SavedPreferences, code)
	return nil
}

// FakeNotifier records every user-visible message.
type FakeNotifier struct {
	mu        sync.Mutex
	Successes []string
	Errors    []string
}

func (n *FakeNotifier) Success(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Successes = append(n.Successes, message)
}

func (n *FakeNotifier) Error(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Errors = append(n.Errors, message)
}

func (n *FakeNotifier) Counts() (successes, errors int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Successes), len(n.Errors)
}

// FakePushChannel hands messages straight to the registered handler.
type FakePushChannel struct {
	mu        sync.Mutex
	handler   push.Handler
	Connected bool
	UserID    string
}

func (c *FakePushChannel) Connect(_ context.Context, userID string, h push.Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = h
	c.Connected = true
	c.UserID = userID
	return nil
}

func (c *FakePushChannel) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = nil
	c.Connected = false
	return nil
}

// Push delivers a message as if it arrived from another session.
func (c *FakePushChannel) Push(msg push.Message) {
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()
	if h != nil {
		h(msg)
	}
}

// MemoryCache is an in-memory preference store for tests that don't want
// sqlite.
type MemoryCache struct {
	mu       sync.Mutex
	currency string
	set      bool
}

func (m *MemoryCache) Currency(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return "", domain.ErrNotFound
	}
	return m.currency, nil
}

func (m *MemoryCache) PutCurrency(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currency = code
	m.set = true
	return nil
}
