package documents

import "time"

// DocumentKind separates supplier and customer paper.
type DocumentKind string

const (
	KindPurchaseInvoice DocumentKind = "PURCHASE_INVOICE"
	KindSaleInvoice     DocumentKind = "SALE_INVOICE"
)

// DocumentStatus enumerates the document lifecycle.
type DocumentStatus string

const (
	StatusOpen    DocumentStatus = "OPEN"
	StatusSettled DocumentStatus = "SETTLED"
	StatusVoid    DocumentStatus = "VOID"
)

// Document is an invoice carrying an outstanding balance.
// Invariant: 0 <= Balance <= Total, and StatusSettled implies Balance == 0.
type Document struct {
	ID           int64
	Kind         DocumentKind
	Number       string
	Counterparty string
	Total        float64
	Balance      float64
	Status       DocumentStatus
	IssuedAt     time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreditNoteStatus enumerates the credit note lifecycle.
type CreditNoteStatus string

const (
	CreditNoteActive  CreditNoteStatus = "ACTIVE"
	CreditNoteApplied CreditNoteStatus = "APPLIED"
	CreditNoteVoid    CreditNoteStatus = "VOID"
)

// CreditNote reduces the factorable amount of a sale settlement. It never
// receives a payment record; settlement only flips its status.
type CreditNote struct {
	ID           int64
	Number       string
	Counterparty string
	Total        float64
	Status       CreditNoteStatus
	IssuedAt     time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OutstandingSummary aggregates what is currently factorable.
type OutstandingSummary struct {
	OpenPurchaseCount   int     `json:"open_purchase_count"`
	OpenPurchaseBalance float64 `json:"open_purchase_balance"`
	OpenSaleCount       int     `json:"open_sale_count"`
	OpenSaleBalance     float64 `json:"open_sale_balance"`
	ActiveCreditNotes   int     `json:"active_credit_notes"`
	ActiveCreditTotal   float64 `json:"active_credit_total"`
}
