package documents

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const documentColumns = `id, kind, number, counterparty, total, balance, status, issued_at, created_at, updated_at`
const creditNoteColumns = `id, number, counterparty, total, status, issued_at, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for documents.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListOpen returns open documents of the given kind, oldest first.
func (r *Repository) ListOpen(ctx context.Context, kind DocumentKind) ([]Document, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+documentColumns+` FROM documents WHERE kind=$1 AND status='OPEN' ORDER BY issued_at, id`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocuments(rows)
}

// ListActiveCreditNotes returns credit notes still available for application.
func (r *Repository) ListActiveCreditNotes(ctx context.Context) ([]CreditNote, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+creditNoteColumns+` FROM credit_notes WHERE status='ACTIVE' ORDER BY issued_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var notes []CreditNote
	for rows.Next() {
		var n CreditNote
		if err := rows.Scan(&n.ID, &n.Number, &n.Counterparty, &n.Total, &n.Status, &n.IssuedAt, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// OutstandingSummary aggregates open balances across both ledgers.
func (r *Repository) OutstandingSummary(ctx context.Context) (OutstandingSummary, error) {
	var s OutstandingSummary
	err := r.pool.QueryRow(ctx, `SELECT
    COUNT(*) FILTER (WHERE kind='PURCHASE_INVOICE'),
    COALESCE(SUM(balance) FILTER (WHERE kind='PURCHASE_INVOICE'), 0),
    COUNT(*) FILTER (WHERE kind='SALE_INVOICE'),
    COALESCE(SUM(balance) FILTER (WHERE kind='SALE_INVOICE'), 0)
FROM documents WHERE status='OPEN'`).
		Scan(&s.OpenPurchaseCount, &s.OpenPurchaseBalance, &s.OpenSaleCount, &s.OpenSaleBalance)
	if err != nil {
		return OutstandingSummary{}, err
	}
	err = r.pool.QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(total), 0) FROM credit_notes WHERE status='ACTIVE'`).
		Scan(&s.ActiveCreditNotes, &s.ActiveCreditTotal)
	if err != nil {
		return OutstandingSummary{}, err
	}
	return s, nil
}

// LockDocumentsTx fetches the target documents with exclusive row locks so two
// concurrent settlements cannot both read the same balance. Rows are locked in
// id order to avoid deadlocks between competing batches.
func LockDocumentsTx(ctx context.Context, tx pgx.Tx, ids []int64) ([]Document, error) {
	rows, err := tx.Query(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	docs, err := scanDocuments(rows)
	if err != nil {
		return nil, err
	}
	if len(docs) != len(ids) {
		return nil, ErrDocumentNotFound
	}
	return docs, nil
}

// LockCreditNotesTx fetches credit notes with exclusive row locks.
func LockCreditNotesTx(ctx context.Context, tx pgx.Tx, ids []int64) ([]CreditNote, error) {
	rows, err := tx.Query(ctx, `SELECT `+creditNoteColumns+` FROM credit_notes WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var notes []CreditNote
	for rows.Next() {
		var n CreditNote
		if err := rows.Scan(&n.ID, &n.Number, &n.Counterparty, &n.Total, &n.Status, &n.IssuedAt, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(notes) != len(ids) {
		return nil, ErrCreditNoteNotFound
	}
	return notes, nil
}

// SettleDocumentTx zeroes the balance and marks the document settled.
func SettleDocumentTx(ctx context.Context, tx pgx.Tx, id int64) error {
	cmd, err := tx.Exec(ctx, `UPDATE documents SET balance=0, status='SETTLED', updated_at=NOW() WHERE id=$1 AND status='OPEN'`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDocumentNotOpen
	}
	return nil
}

// RestoreDocumentTx puts a document back to its pre-settlement balance and status.
func RestoreDocumentTx(ctx context.Context, tx pgx.Tx, id int64, balance float64, status DocumentStatus) error {
	cmd, err := tx.Exec(ctx, `UPDATE documents SET balance=$2, status=$3, updated_at=NOW() WHERE id=$1`, id, fmt.Sprintf("%.2f", balance), status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// SetCreditNoteStatusTx flips a credit note between ACTIVE and APPLIED.
func SetCreditNoteStatusTx(ctx context.Context, tx pgx.Tx, id int64, status CreditNoteStatus) error {
	cmd, err := tx.Exec(ctx, `UPDATE credit_notes SET status=$2, updated_at=NOW() WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCreditNoteNotFound
	}
	return nil
}

func scanDocuments(rows pgx.Rows) ([]Document, error) {
	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Kind, &d.Number, &d.Counterparty, &d.Total, &d.Balance, &d.Status, &d.IssuedAt, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
