package factoring

import (
	"fmt"
	"time"
)

// SettlementKind tags the two settlement variants. Purchase settlements pay
// down supplier invoices with cash going out; sale settlements collect
// customer invoices with cash coming in.
type SettlementKind string

const (
	PurchaseSettlement SettlementKind = "PURCHASE"
	SaleSettlement     SettlementKind = "SALE"
)

// NumberPrefix returns the operation number prefix for a settlement kind.
func (k SettlementKind) NumberPrefix() string {
	if k == PurchaseSettlement {
		return "FP"
	}
	return "FS"
}

// FormatOperationNumber renders an operation number from a counter value.
func FormatOperationNumber(k SettlementKind, n int64) string {
	return fmt.Sprintf("%s-%08d", k.NumberPrefix(), n)
}

// ReversalReference derives the reference used by every reversal-side write.
func ReversalReference(number string) string {
	return "REVERSAL-" + number
}

// OperationStatus enumerates the operation lifecycle. An operation is created
// Active and may transition exactly once to Reversed.
type OperationStatus string

const (
	StatusActive   OperationStatus = "ACTIVE"
	StatusReversed OperationStatus = "REVERSED"
)

// FactoringOperation records one settlement against a financial entity.
// Invariant: Discount == round(Gross*Rate/100) and Net == Gross-Discount.
type FactoringOperation struct {
	ID                int64
	Kind              SettlementKind
	Number            string
	OperationDate     time.Time
	Gross             float64
	DiscountRate      float64
	Discount          float64
	Net               float64
	BankAccountID     int64
	FinancialEntity   string
	JournalEntryID    int64
	BankTransactionID int64
	Status            OperationStatus
	CreatedBy         int64
	CreatedAt         time.Time
	ReversedAt        *time.Time
}

// DocumentLink pins one settled document or applied credit note to the
// operation, with enough prior state to restore it on reversal. Links are
// immutable once written.
type DocumentLink struct {
	ID              int64
	OperationID     int64
	DocumentID      *int64
	CreditNoteID    *int64
	Amount          float64
	PreviousBalance float64
	PreviousStatus  string
}
