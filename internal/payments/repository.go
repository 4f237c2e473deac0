package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNonPositiveAmount indicates a zero or negative payment amount.
var ErrNonPositiveAmount = errors.New("payments: amount must be positive")

const paymentColumns = `id, number, direction, document_id, bank_account_id, amount, method, reference, paid_at, created_at`

// Repository provides PostgreSQL backed persistence for payment records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns payment records, newest first.
func (r *Repository) List(ctx context.Context) ([]PaymentRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payment_records ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

// ListByReference returns payments created under one settlement operation.
func (r *Repository) ListByReference(ctx context.Context, reference string) ([]PaymentRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payment_records WHERE reference=$1 ORDER BY id`, reference)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

// NextNumberTx allocates the next payment number for a direction. The counter
// row is locked until the surrounding transaction commits, so concurrent
// settlements serialize here instead of racing a max-scan.
func NextNumberTx(ctx context.Context, tx pgx.Tx, d Direction) (string, error) {
	var value int64
	err := tx.QueryRow(ctx, `INSERT INTO sequence_counters (scope, value) VALUES ($1, 1)
ON CONFLICT (scope) DO UPDATE SET value = sequence_counters.value + 1
RETURNING value`, "payment:"+d.NumberPrefix()).Scan(&value)
	if err != nil {
		return "", err
	}
	return FormatNumber(d, value), nil
}

// InsertPaymentTx writes one payment record inside an open transaction.
func InsertPaymentTx(ctx context.Context, tx pgx.Tx, in PaymentInput) (PaymentRecord, error) {
	if in.Amount <= 0 {
		return PaymentRecord{}, ErrNonPositiveAmount
	}
	number, err := NextNumberTx(ctx, tx, in.Direction)
	if err != nil {
		return PaymentRecord{}, err
	}
	var rec PaymentRecord
	err = tx.QueryRow(ctx, `INSERT INTO payment_records (number, direction, document_id, bank_account_id, amount, method, reference, paid_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id, created_at`,
		number, in.Direction, in.DocumentID, in.BankAccountID, fmt.Sprintf("%.2f", in.Amount), in.Method, in.Reference, in.PaidAt).
		Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return PaymentRecord{}, err
	}
	rec.Number = number
	rec.Direction = in.Direction
	rec.DocumentID = in.DocumentID
	rec.BankAccountID = in.BankAccountID
	rec.Amount = in.Amount
	rec.Method = in.Method
	rec.Reference = in.Reference
	rec.PaidAt = in.PaidAt
	return rec, nil
}

// DeleteByReferenceTx removes the payment records a settlement generated.
// Only the reversal path calls this; it is not a general-purpose delete.
func DeleteByReferenceTx(ctx context.Context, tx pgx.Tx, reference string) (int64, error) {
	cmd, err := tx.Exec(ctx, `DELETE FROM payment_records WHERE reference=$1`, reference)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanPayments(rows pgx.Rows) ([]PaymentRecord, error) {
	var out []PaymentRecord
	for rows.Next() {
		var p PaymentRecord
		if err := rows.Scan(&p.ID, &p.Number, &p.Direction, &p.DocumentID, &p.BankAccountID, &p.Amount, &p.Method, &p.Reference, &p.PaidAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
