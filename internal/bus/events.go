package bus

import (
	"github.com/shopspring/decimal"

	"github.com/momentfin/ledgersync/internal/domain"
)

// TransactionEvent is the payload for every transaction lifecycle topic
// except TopicTransactionUpdated. Amount and Type let subscribers adjust
// running totals from the delta alone, without re-fetching.
type TransactionEvent struct {
	Transaction *domain.Transaction
	Type        domain.TransactionType
	Amount      decimal.Decimal
}

// TransactionEditEvent is the payload for TopicTransactionUpdated.
type TransactionEditEvent struct {
	Transaction    *domain.Transaction
	OriginalType   domain.TransactionType
	OriginalAmount decimal.Decimal
	NewType        domain.TransactionType
	NewAmount      decimal.Decimal
	TypeChanged    bool
}

// CurrencyEvent is the payload for TopicCurrencyChanged and
// TopicPreferenceUpdated.
type CurrencyEvent struct {
	Code string
	// Remote is true when the change was pushed from another session.
	Remote bool
}
