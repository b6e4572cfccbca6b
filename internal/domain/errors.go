package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAssetNotFound       = errors.New("asset not found")
	ErrTransferNotFound    = errors.New("transfer not found")

	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrMissingCategory = errors.New("category is required")
	ErrMissingAsset    = errors.New("account is required")
	ErrMissingDate     = errors.New("date is required")
	ErrInvalidTitle    = errors.New("title must be between 3 and 100 characters")
	ErrInvalidType     = errors.New("transaction type must be income or expense")
	ErrSelfTransfer    = errors.New("cannot transfer to the same account")
	ErrUnknownCurrency = errors.New("unknown currency code")
	ErrAssetNameTaken  = errors.New("an account with this name already exists")
	ErrAlreadyDeleted  = errors.New("transaction is already deleted")
	ErrNotDeleted      = errors.New("transaction is not deleted")
	ErrUnresolvedAsset = errors.New("transfer asset reference not resolved")
	ErrRemoteRejected  = errors.New("remote rejected the request")
	ErrRecoveryFailed  = errors.New("balance recovery failed")
)
