package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/momentfin/ledgersync/internal/domain"
)

// Op is a transaction lifecycle transition that carries a ledger effect.
type Op string

const (
	OpCreate     Op = "create"
	OpSoftDelete Op = "softDelete"
	OpRestore    Op = "restore"
	// OpPurgeActive removes a still-active transaction; it has not been
	// compensated yet, so it carries the same effect as a soft delete.
	OpPurgeActive Op = "purgeActive"
	// OpPurgeSoftDeleted removes a transaction whose soft delete was already
	// compensated. Compensating again is the double-compensation bug; the
	// effect is zero.
	OpPurgeSoftDeleted Op = "purgeSoftDeleted"
)

// Delta is the income/expense adjustment produced by a lifecycle transition.
type Delta struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

func (d Delta) Neg() Delta {
	return Delta{Income: d.Income.Neg(), Expenses: d.Expenses.Neg()}
}

func (d Delta) Add(o Delta) Delta {
	return Delta{Income: d.Income.Add(o.Income), Expenses: d.Expenses.Add(o.Expenses)}
}

// Compensate computes the income/expense delta for one transition of a
// transaction with the given type and unsigned amount.
//
//	create:            income += amount | expenses += amount
//	softDelete:        income -= amount | expenses -= amount
//	restore:           income += amount | expenses += amount
//	purgeActive:       income -= amount | expenses -= amount
//	purgeSoftDeleted:  no change
func Compensate(op Op, txType domain.TransactionType, amount decimal.Decimal) Delta {
	var sign decimal.Decimal
	switch op {
	case OpCreate, OpRestore:
		sign = decimal.NewFromInt(1)
	case OpSoftDelete, OpPurgeActive:
		sign = decimal.NewFromInt(-1)
	case OpPurgeSoftDeleted:
		return Delta{}
	default:
		return Delta{}
	}

	if txType == domain.TransactionTypeIncome {
		return Delta{Income: sign.Mul(amount)}
	}
	return Delta{Expenses: sign.Mul(amount)}
}

// AssetDelta computes the change to the owning asset's balance for one
// transition. The asset moves opposite to the aggregate for expenses:
// deleting an expense brings the money back (+amount), deleting an income
// takes it away (-amount), and create/restore invert that.
func AssetDelta(op Op, txType domain.TransactionType, amount decimal.Decimal) decimal.Decimal {
	var sign decimal.Decimal
	switch op {
	case OpCreate, OpRestore:
		sign = decimal.NewFromInt(1)
	case OpSoftDelete, OpPurgeActive:
		sign = decimal.NewFromInt(-1)
	case OpPurgeSoftDeleted:
		return decimal.Zero
	default:
		return decimal.Zero
	}

	if txType == domain.TransactionTypeExpense {
		sign = sign.Neg()
	}
	return sign.Mul(amount)
}

// EditDelta is the combined effect of changing a transaction's type and/or
// amount: remove the old compensation, apply the new one.
func EditDelta(originalType domain.TransactionType, originalAmount decimal.Decimal,
	newType domain.TransactionType, newAmount decimal.Decimal) Delta {
	removed := Compensate(OpCreate, originalType, originalAmount).Neg()
	applied := Compensate(OpCreate, newType, newAmount)
	return removed.Add(applied)
}

// EditAssetDelta is EditDelta for the owning asset's balance.
func EditAssetDelta(originalType domain.TransactionType, originalAmount decimal.Decimal,
	newType domain.TransactionType, newAmount decimal.Decimal) decimal.Decimal {
	removed := AssetDelta(OpCreate, originalType, originalAmount).Neg()
	applied := AssetDelta(OpCreate, newType, newAmount)
	return removed.Add(applied)
}

// PurgeOp selects the purge variant for a transaction, so a soft-deleted
// transaction is never compensated twice.
func PurgeOp(wasAlreadySoftDeleted bool) Op {
	if wasAlreadySoftDeleted {
		return OpPurgeSoftDeleted
	}
	return OpPurgeActive
}
