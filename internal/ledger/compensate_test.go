package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentfin/ledgersync/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCompensate(t *testing.T) {
	amount := dec("30")

	tests := []struct {
		name         string
		op           Op
		txType       domain.TransactionType
		wantIncome   string
		wantExpenses string
	}{
		{"create income", OpCreate, domain.TransactionTypeIncome, "30", "0"},
		{"create expense", OpCreate, domain.TransactionTypeExpense, "0", "30"},
		{"softDelete income", OpSoftDelete, domain.TransactionTypeIncome, "-30", "0"},
		{"softDelete expense", OpSoftDelete, domain.TransactionTypeExpense, "0", "-30"},
		{"restore income", OpRestore, domain.TransactionTypeIncome, "30", "0"},
		{"restore expense", OpRestore, domain.TransactionTypeExpense, "0", "30"},
		{"purge active income", OpPurgeActive, domain.TransactionTypeIncome, "-30", "0"},
		{"purge active expense", OpPurgeActive, domain.TransactionTypeExpense, "0", "-30"},
		{"purge soft-deleted income", OpPurgeSoftDeleted, domain.TransactionTypeIncome, "0", "0"},
		{"purge soft-deleted expense", OpPurgeSoftDeleted, domain.TransactionTypeExpense, "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Compensate(tt.op, tt.txType, amount)
			assert.True(t, d.Income.Equal(dec(tt.wantIncome)), "income: got %s want %s", d.Income, tt.wantIncome)
			assert.True(t, d.Expenses.Equal(dec(tt.wantExpenses)), "expenses: got %s want %s", d.Expenses, tt.wantExpenses)
		})
	}
}

func TestAssetDelta(t *testing.T) {
	amount := dec("30")

	tests := []struct {
		name   string
		op     Op
		txType domain.TransactionType
		want   string
	}{
		{"create expense takes money", OpCreate, domain.TransactionTypeExpense, "-30"},
		{"create income adds money", OpCreate, domain.TransactionTypeIncome, "30"},
		{"delete expense brings money back", OpSoftDelete, domain.TransactionTypeExpense, "30"},
		{"delete income takes money away", OpSoftDelete, domain.TransactionTypeIncome, "-30"},
		{"restore expense takes money again", OpRestore, domain.TransactionTypeExpense, "-30"},
		{"restore income adds money again", OpRestore, domain.TransactionTypeIncome, "30"},
		{"purge from active equals soft delete", OpPurgeActive, domain.TransactionTypeExpense, "30"},
		{"purge of soft-deleted is neutral", OpPurgeSoftDeleted, domain.TransactionTypeExpense, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssetDelta(tt.op, tt.txType, amount)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestAssetDeltaRoundTrip(t *testing.T) {
	// softDelete then restore must cancel exactly, for both types.
	for _, txType := range []domain.TransactionType{domain.TransactionTypeIncome, domain.TransactionTypeExpense} {
		sum := AssetDelta(OpSoftDelete, txType, dec("123.45")).
			Add(AssetDelta(OpRestore, txType, dec("123.45")))
		require.True(t, sum.IsZero(), "%s round trip left %s", txType, sum)
	}
}

func TestEditDelta(t *testing.T) {
	t.Run("same type amount change", func(t *testing.T) {
		d := EditDelta(domain.TransactionTypeExpense, dec("30"), domain.TransactionTypeExpense, dec("50"))
		assert.True(t, d.Income.IsZero())
		assert.True(t, d.Expenses.Equal(dec("20")))
	})

	t.Run("cross type", func(t *testing.T) {
		d := EditDelta(domain.TransactionTypeExpense, dec("30"), domain.TransactionTypeIncome, dec("30"))
		assert.True(t, d.Income.Equal(dec("30")))
		assert.True(t, d.Expenses.Equal(dec("-30")))
	})

	t.Run("asset delta cross type", func(t *testing.T) {
		// expense 30 became income 40: +30 back, +40 in.
		d := EditAssetDelta(domain.TransactionTypeExpense, dec("30"), domain.TransactionTypeIncome, dec("40"))
		assert.True(t, d.Equal(dec("70")), "got %s", d)
	})
}

func TestPurgeOp(t *testing.T) {
	assert.Equal(t, OpPurgeSoftDeleted, PurgeOp(true))
	assert.Equal(t, OpPurgeActive, PurgeOp(false))
}
