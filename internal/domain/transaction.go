package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

type TransactionStatus string

const (
	TransactionStatusActive      TransactionStatus = "active"
	TransactionStatusSoftDeleted TransactionStatus = "soft_deleted"
)

// Transaction is the locally mirrored view of a remote transaction.
// LocalID is a process-local handle assigned on first sight; RemoteID is
// the durable identifier owned by the server. Amount is an unsigned
// magnitude, the sign is carried by Type.
type Transaction struct {
	LocalID    int64
	RemoteID   uuid.UUID
	Title      string
	Amount     decimal.Decimal
	Type       TransactionType
	AssetID    uuid.UUID
	CategoryID uuid.UUID
	Date       time.Time
	IsDeleted  bool
	Status     TransactionStatus
	CreatedAt  time.Time
}

func (t *Transaction) Clone() *Transaction {
	c := *t
	return &c
}
