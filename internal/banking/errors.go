package banking

import "errors"

var (
	// ErrAccountNotFound indicates a missing bank account.
	ErrAccountNotFound = errors.New("banking: bank account not found")
	// ErrTransactionNotFound indicates a missing bank transaction.
	ErrTransactionNotFound = errors.New("banking: transaction not found")
	// ErrNonPositiveAmount indicates a zero or negative transaction amount.
	ErrNonPositiveAmount = errors.New("banking: amount must be positive")
)
