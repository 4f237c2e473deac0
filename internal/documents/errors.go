package documents

import "errors"

var (
	// ErrDocumentNotFound indicates a target document does not exist.
	ErrDocumentNotFound = errors.New("documents: document not found")
	// ErrDocumentNotOpen indicates the document is settled or voided and
	// cannot be settled again.
	ErrDocumentNotOpen = errors.New("documents: document is not open")
	// ErrCreditNoteNotFound indicates a target credit note does not exist.
	ErrCreditNoteNotFound = errors.New("documents: credit note not found")
	// ErrCreditNoteNotActive indicates the credit note has already been
	// applied or voided.
	ErrCreditNoteNotActive = errors.New("documents: credit note is not active")
)
