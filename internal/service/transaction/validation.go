package transaction

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/momentfin/ledgersync/internal/domain"
)

// CreateRequest carries the fields a new transaction needs. Amount is an
// unsigned magnitude; Type carries the sign.
type CreateRequest struct {
	Title      string
	Amount     decimal.Decimal
	Type       domain.TransactionType
	AssetID    uuid.UUID
	CategoryID uuid.UUID
	Date       time.Time
}

const (
	titleMinLen = 3
	titleMaxLen = 100
)

// validateCreate runs entirely locally; no remote call happens until the
// request is known to be well formed.
func validateCreate(req CreateRequest) error {
	if !req.Amount.IsPositive() {
		return fmt.Errorf("validateCreate: %w", domain.ErrInvalidAmount)
	}
	if !req.Type.IsValid() {
		return fmt.Errorf("validateCreate: %w", domain.ErrInvalidType)
	}
	title := strings.TrimSpace(req.Title)
	if n := utf8.RuneCountInString(title); n < titleMinLen || n > titleMaxLen {
		return fmt.Errorf("validateCreate: %w", domain.ErrInvalidTitle)
	}
	if req.CategoryID == uuid.Nil {
		return fmt.Errorf("validateCreate: %w", domain.ErrMissingCategory)
	}
	if req.AssetID == uuid.Nil {
		return fmt.Errorf("validateCreate: %w", domain.ErrMissingAsset)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("validateCreate: %w", domain.ErrMissingDate)
	}
	return nil
}
