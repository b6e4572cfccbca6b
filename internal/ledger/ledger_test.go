package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentfin/ledgersync/internal/domain"
)

func newAsset(name, balance string) *domain.Asset {
	return &domain.Asset{ID: uuid.New(), Name: name, Type: domain.AssetTypeBank, Balance: dec(balance)}
}

func newTx(txType domain.TransactionType, amount string, assetID uuid.UUID) *domain.Transaction {
	return &domain.Transaction{
		RemoteID:   uuid.New(),
		Title:      "coffee and cake",
		Amount:     dec(amount),
		Type:       txType,
		AssetID:    assetID,
		CategoryID: uuid.New(),
		Status:     domain.TransactionStatusActive,
	}
}

func TestInsertMovesTotals(t *testing.T) {
	l := New()
	a := newAsset("Checking", "100")
	l.LoadAssets([]*domain.Asset{a})

	l.Insert(newTx(domain.TransactionTypeExpense, "30", a.ID))
	l.Insert(newTx(domain.TransactionTypeIncome, "50", a.ID))

	s := l.Summary()
	assert.True(t, s.Income.Equal(dec("50")))
	assert.True(t, s.Expenses.Equal(dec("30")))
	assert.True(t, s.Savings.Equal(dec("20")))
}

func TestSavingsNeverNegative(t *testing.T) {
	l := New()
	l.Insert(newTx(domain.TransactionTypeExpense, "80", uuid.New()))
	l.Insert(newTx(domain.TransactionTypeIncome, "50", uuid.New()))

	s := l.Summary()
	assert.True(t, s.Savings.IsZero(), "savings clamps at zero, got %s", s.Savings)
}

func TestSummaryBalancePrefersAssets(t *testing.T) {
	l := New()

	// No asset data: balance falls back to income minus expenses.
	l.Insert(newTx(domain.TransactionTypeIncome, "200", uuid.New()))
	l.Insert(newTx(domain.TransactionTypeExpense, "50", uuid.New()))
	assert.True(t, l.Summary().Balance.Equal(dec("150")))

	// Assets present: they win, deleted ones excluded.
	active := newAsset("Checking", "1000")
	deleted := newAsset("Old card", "777")
	deleted.IsDeleted = true
	l.LoadAssets([]*domain.Asset{active, deleted})
	assert.True(t, l.Summary().Balance.Equal(dec("1000")))
}

func TestSetDeletedRoundTrip(t *testing.T) {
	l := New()
	tx := l.Insert(newTx(domain.TransactionTypeExpense, "30", uuid.New()))
	before := l.Summary()

	op, err := l.SetDeleted(tx.LocalID, true)
	require.NoError(t, err)
	assert.Equal(t, OpSoftDelete, op)
	assert.True(t, l.Summary().Expenses.Equal(dec("0")))

	op, err = l.SetDeleted(tx.LocalID, false)
	require.NoError(t, err)
	assert.Equal(t, OpRestore, op)

	after := l.Summary()
	assert.True(t, after.Income.Equal(before.Income))
	assert.True(t, after.Expenses.Equal(before.Expenses))
}

func TestSetDeletedRejectsDoubleFlip(t *testing.T) {
	l := New()
	tx := l.Insert(newTx(domain.TransactionTypeExpense, "30", uuid.New()))

	_, err := l.SetDeleted(tx.LocalID, false)
	require.ErrorIs(t, err, domain.ErrNotDeleted)

	_, err = l.SetDeleted(tx.LocalID, true)
	require.NoError(t, err)
	_, err = l.SetDeleted(tx.LocalID, true)
	require.ErrorIs(t, err, domain.ErrAlreadyDeleted)
}

func TestRemoveSelectsPurgeOp(t *testing.T) {
	t.Run("active transaction is compensated once", func(t *testing.T) {
		l := New()
		tx := l.Insert(newTx(domain.TransactionTypeExpense, "30", uuid.New()))

		_, op, err := l.Remove(tx.LocalID)
		require.NoError(t, err)
		assert.Equal(t, OpPurgeActive, op)
		assert.True(t, l.Summary().Expenses.IsZero())
	})

	t.Run("soft-deleted transaction is not compensated again", func(t *testing.T) {
		l := New()
		tx := l.Insert(newTx(domain.TransactionTypeExpense, "30", uuid.New()))
		_, err := l.SetDeleted(tx.LocalID, true)
		require.NoError(t, err)
		require.True(t, l.Summary().Expenses.IsZero())

		_, op, err := l.Remove(tx.LocalID)
		require.NoError(t, err)
		assert.Equal(t, OpPurgeSoftDeleted, op)
		assert.True(t, l.Summary().Expenses.IsZero(), "no double compensation")
	})
}

func TestReinsertReversesPurge(t *testing.T) {
	l := New()
	tx := l.Insert(newTx(domain.TransactionTypeIncome, "75", uuid.New()))
	before := l.Summary()

	removed, op, err := l.Remove(tx.LocalID)
	require.NoError(t, err)

	l.Reinsert(removed, op)
	after := l.Summary()
	assert.True(t, after.Income.Equal(before.Income))
	_, err = l.Transaction(tx.LocalID)
	assert.NoError(t, err)
}

func TestApplyEdit(t *testing.T) {
	l := New()
	tx := l.Insert(newTx(domain.TransactionTypeExpense, "30", uuid.New()))

	origType, origAmount, err := l.ApplyEdit(tx.LocalID, domain.TransactionTypeIncome, dec("40"))
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeExpense, origType)
	assert.True(t, origAmount.Equal(dec("30")))

	s := l.Summary()
	assert.True(t, s.Income.Equal(dec("40")))
	assert.True(t, s.Expenses.IsZero())
}

func TestApplyEditOnSoftDeletedSkipsTotals(t *testing.T) {
	l := New()
	tx := l.Insert(newTx(domain.TransactionTypeExpense, "30", uuid.New()))
	_, err := l.SetDeleted(tx.LocalID, true)
	require.NoError(t, err)

	_, _, err = l.ApplyEdit(tx.LocalID, domain.TransactionTypeExpense, dec("90"))
	require.NoError(t, err)
	assert.True(t, l.Summary().Expenses.IsZero(), "deleted transaction carries no live compensation")
}

func TestApplyAssetDelta(t *testing.T) {
	l := New()
	a := newAsset("Checking", "100")
	l.LoadAssets([]*domain.Asset{a})

	got, err := l.ApplyAssetDelta(a.ID, dec("-30"))
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("70")))

	_, err = l.ApplyAssetDelta(uuid.New(), dec("1"))
	assert.ErrorIs(t, err, domain.ErrAssetNotFound)
}

func TestLoadTransactionsRebuildsTotals(t *testing.T) {
	l := New()
	deleted := newTx(domain.TransactionTypeExpense, "10", uuid.New())
	deleted.IsDeleted = true

	l.LoadTransactions([]*domain.Transaction{
		newTx(domain.TransactionTypeIncome, "100", uuid.New()),
		newTx(domain.TransactionTypeExpense, "40", uuid.New()),
		deleted,
	})

	s := l.Summary()
	assert.True(t, s.Income.Equal(dec("100")))
	assert.True(t, s.Expenses.Equal(dec("40")), "soft-deleted rows stay out of totals")
	assert.Len(t, l.Transactions(), 3, "soft-deleted rows stay in the local set")
}
