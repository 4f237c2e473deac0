package banking

import "time"

// Direction is the sign of a cash movement.
type Direction string

const (
	Inflow  Direction = "INFLOW"
	Outflow Direction = "OUTFLOW"
)

// Opposite returns the contra direction.
func (d Direction) Opposite() Direction {
	if d == Inflow {
		return Outflow
	}
	return Inflow
}

// Signed applies the direction to an amount.
func (d Direction) Signed(amount float64) float64 {
	if d == Outflow {
		return -amount
	}
	return amount
}

// BankAccount is a cash account with a cached balance. The cached balance is
// only ever adjusted together with a transaction insert, never on its own.
type BankAccount struct {
	ID          int64
	Name        string
	GLAccountID int64
	Balance     float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BankTransaction is one cash movement on an account.
type BankTransaction struct {
	ID            int64
	BankAccountID int64
	Direction     Direction
	Amount        float64
	Reference     string
	Memo          string
	Reconciled    bool
	CreatedAt     time.Time
}
