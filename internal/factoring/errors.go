package factoring

import "errors"

var (
	// ErrOperationNotFound indicates a missing operation.
	ErrOperationNotFound = errors.New("factoring: operation not found")
	// ErrAlreadyReversed indicates a second reversal attempt.
	ErrAlreadyReversed = errors.New("factoring: operation already reversed")
	// ErrWrongDocumentKind indicates a document that does not match the
	// settlement variant.
	ErrWrongDocumentKind = errors.New("factoring: document kind does not match settlement")
	// ErrNothingToFactor indicates the batch nets out to zero or less.
	ErrNothingToFactor = errors.New("factoring: batch has no factorable amount")
	// ErrNumberExhausted indicates the bounded collision loop gave up.
	ErrNumberExhausted = errors.New("factoring: could not allocate a free operation number")
)
