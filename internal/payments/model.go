package payments

import (
	"fmt"
	"time"
)

// Direction distinguishes cash paid out from cash received.
type Direction string

const (
	Egress  Direction = "EGRESS"
	Ingress Direction = "INGRESS"
)

// NumberPrefix returns the voucher prefix for a payment direction.
func (d Direction) NumberPrefix() string {
	if d == Egress {
		return "PV"
	}
	return "RV"
}

// FormatNumber renders a payment number from a counter value.
func FormatNumber(d Direction, n int64) string {
	return fmt.Sprintf("%s-%08d", d.NumberPrefix(), n)
}

// PaymentRecord is one payment against a specific document. Reference carries
// the settlement operation number so the whole batch can be traced (and, on
// reversal, removed) by a single key.
type PaymentRecord struct {
	ID            int64
	Number        string
	Direction     Direction
	DocumentID    int64
	BankAccountID int64
	Amount        float64
	Method        string
	Reference     string
	PaidAt        time.Time
	CreatedAt     time.Time
}

// PaymentInput carries the fields needed to record a payment.
type PaymentInput struct {
	Direction     Direction
	DocumentID    int64
	BankAccountID int64
	Amount        float64
	Method        string
	Reference     string
	PaidAt        time.Time
}
