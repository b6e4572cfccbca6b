// Package ledger owns the client-side mirror of the user's financial state:
// the local transaction set, the asset balances, and the running
// income/expense totals every display region derives from. All mutation goes
// through compensation deltas; the ledger never invents a value.
package ledger

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/momentfin/ledgersync/internal/domain"
)

// Summary is the derived view consumers subscribe to.
type Summary struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Savings  decimal.Decimal
	Balance  decimal.Decimal
}

// Ledger is the single authoritative owner of mirrored ledger state.
// Display regions read derived state from here instead of replaying
// compensation arithmetic independently.
type Ledger struct {
	mu           sync.Mutex
	nextLocalID  int64
	transactions map[int64]*domain.Transaction
	byRemoteID   map[uuid.UUID]int64
	assets       map[uuid.UUID]*domain.Asset
	income       decimal.Decimal
	expenses     decimal.Decimal
}

func New() *Ledger {
	return &Ledger{
		transactions: make(map[int64]*domain.Transaction),
		byRemoteID:   make(map[uuid.UUID]int64),
		assets:       make(map[uuid.UUID]*domain.Asset),
	}
}

// LoadTransactions replaces the local transaction set with the server's view
// and rebuilds the running totals from scratch.
func (l *Ledger) LoadTransactions(txs []*domain.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.transactions = make(map[int64]*domain.Transaction, len(txs))
	l.byRemoteID = make(map[uuid.UUID]int64, len(txs))
	l.income = decimal.Zero
	l.expenses = decimal.Zero

	for _, tx := range txs {
		c := tx.Clone()
		l.nextLocalID++
		c.LocalID = l.nextLocalID
		l.transactions[c.LocalID] = c
		l.byRemoteID[c.RemoteID] = c.LocalID
		if !c.IsDeleted {
			l.addDelta(Compensate(OpCreate, c.Type, c.Amount))
		}
	}
}

// LoadAssets replaces the local asset mirror.
func (l *Ledger) LoadAssets(assets []*domain.Asset) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.assets = make(map[uuid.UUID]*domain.Asset, len(assets))
	for _, a := range assets {
		l.assets[a.ID] = a.Clone()
	}
}

// Insert mirrors a newly created transaction, assigns its local handle and
// applies the create compensation to the totals. The asset balance effect is
// applied separately by the caller through ApplyAssetDelta.
func (l *Ledger) Insert(tx *domain.Transaction) *domain.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := tx.Clone()
	l.nextLocalID++
	c.LocalID = l.nextLocalID
	c.Status = domain.TransactionStatusActive
	l.transactions[c.LocalID] = c
	l.byRemoteID[c.RemoteID] = c.LocalID
	l.addDelta(Compensate(OpCreate, c.Type, c.Amount))
	return c.Clone()
}

// Transaction returns a copy of the transaction with the given local handle.
func (l *Ledger) Transaction(localID int64) (*domain.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, ok := l.transactions[localID]
	if !ok {
		return nil, fmt.Errorf("Transaction: id %d: %w", localID, domain.ErrTransactionNotFound)
	}
	return tx.Clone(), nil
}

// Asset returns a copy of the mirrored asset.
func (l *Ledger) Asset(id uuid.UUID) (*domain.Asset, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.assets[id]
	if !ok {
		return nil, fmt.Errorf("Asset: %s: %w", id, domain.ErrAssetNotFound)
	}
	return a.Clone(), nil
}

// SetDeleted flips the soft-delete flag and applies the matching
// compensation to the totals. It reports the op it applied so the caller can
// mirror the same delta onto the owning asset and roll it back on failure.
func (l *Ledger) SetDeleted(localID int64, deleted bool) (Op, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, ok := l.transactions[localID]
	if !ok {
		return "", fmt.Errorf("SetDeleted: id %d: %w", localID, domain.ErrTransactionNotFound)
	}

	op := OpSoftDelete
	if !deleted {
		op = OpRestore
	}
	if tx.IsDeleted == deleted {
		if deleted {
			return "", fmt.Errorf("SetDeleted: id %d: %w", localID, domain.ErrAlreadyDeleted)
		}
		return "", fmt.Errorf("SetDeleted: id %d: %w", localID, domain.ErrNotDeleted)
	}

	tx.IsDeleted = deleted
	if deleted {
		tx.Status = domain.TransactionStatusSoftDeleted
	} else {
		tx.Status = domain.TransactionStatusActive
	}
	l.addDelta(Compensate(op, tx.Type, tx.Amount))
	return op, nil
}

// Remove takes the transaction out of the local set and applies the purge
// compensation selected by its soft-delete state. The removed record is
// returned so a failed remote call can reinsert it.
func (l *Ledger) Remove(localID int64) (*domain.Transaction, Op, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, ok := l.transactions[localID]
	if !ok {
		return nil, "", fmt.Errorf("Remove: id %d: %w", localID, domain.ErrTransactionNotFound)
	}

	delete(l.transactions, localID)
	delete(l.byRemoteID, tx.RemoteID)

	op := PurgeOp(tx.IsDeleted)
	l.addDelta(Compensate(op, tx.Type, tx.Amount))
	return tx.Clone(), op, nil
}

// Reinsert restores a previously removed transaction and reverses the purge
// compensation Remove applied. Rollback path only.
func (l *Ledger) Reinsert(tx *domain.Transaction, op Op) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := tx.Clone()
	l.transactions[c.LocalID] = c
	l.byRemoteID[c.RemoteID] = c.LocalID
	l.addDelta(Compensate(op, c.Type, c.Amount).Neg())
}

// ApplyEdit swaps the transaction's type and amount and moves the totals by
// the edit delta. The previous values are returned for rollback.
func (l *Ledger) ApplyEdit(localID int64, newType domain.TransactionType, newAmount decimal.Decimal) (origType domain.TransactionType, origAmount decimal.Decimal, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, ok := l.transactions[localID]
	if !ok {
		return "", decimal.Zero, fmt.Errorf("ApplyEdit: id %d: %w", localID, domain.ErrTransactionNotFound)
	}

	origType, origAmount = tx.Type, tx.Amount
	tx.Type = newType
	tx.Amount = newAmount
	if !tx.IsDeleted {
		l.addDelta(EditDelta(origType, origAmount, newType, newAmount))
	}
	return origType, origAmount, nil
}

// UpdateDetails rewrites the non-ledger fields of a transaction. Type and
// amount changes go through ApplyEdit so the totals move with them.
func (l *Ledger) UpdateDetails(localID int64, title string, categoryID uuid.UUID, date time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, ok := l.transactions[localID]
	if !ok {
		return fmt.Errorf("UpdateDetails: id %d: %w", localID, domain.ErrTransactionNotFound)
	}
	tx.Title = title
	tx.CategoryID = categoryID
	tx.Date = date
	return nil
}

// ApplyAssetDelta moves an asset balance by delta. Every asset mutation in
// the engine funnels through here: previous balance plus delta, nothing else.
func (l *Ledger) ApplyAssetDelta(assetID uuid.UUID, delta decimal.Decimal) (newBalance decimal.Decimal, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.assets[assetID]
	if !ok {
		return decimal.Zero, fmt.Errorf("ApplyAssetDelta: %s: %w", assetID, domain.ErrAssetNotFound)
	}
	a.Balance = a.Balance.Add(delta)
	return a.Balance, nil
}

// UpsertAsset mirrors a created or updated asset.
func (l *Ledger) UpsertAsset(a *domain.Asset) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.assets[a.ID] = a.Clone()
}

// Summary derives the aggregate view. Balance prefers the sum of non-deleted
// asset balances; income minus expenses is only the fallback when no asset
// data is mirrored, because assets are the authoritative store of value.
func (l *Ledger) Summary() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Summary{
		Income:   l.income,
		Expenses: l.expenses,
	}
	s.Savings = l.income.Sub(l.expenses)
	if s.Savings.IsNegative() {
		s.Savings = decimal.Zero
	}

	if len(l.assets) == 0 {
		s.Balance = l.income.Sub(l.expenses)
		return s
	}
	for _, a := range l.assets {
		if !a.IsDeleted {
			s.Balance = s.Balance.Add(a.Balance)
		}
	}
	return s
}

// Transactions returns copies of the local set, newest date first, purged
// records excluded by construction.
func (l *Ledger) Transactions() []*domain.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*domain.Transaction, 0, len(l.transactions))
	for _, tx := range l.transactions {
		out = append(out, tx.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].LocalID > out[j].LocalID
	})
	return out
}

// Assets returns copies of the mirrored assets, stable by name.
func (l *Ledger) Assets() []*domain.Asset {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*domain.Asset, 0, len(l.assets))
	for _, a := range l.assets {
		out = append(out, a.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (l *Ledger) addDelta(d Delta) {
	l.income = l.income.Add(d.Income)
	l.expenses = l.expenses.Add(d.Expenses)
}
