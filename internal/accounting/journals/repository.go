package journals

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/accounting/shared"
	"github.com/meridian-erp/meridian-erp/internal/platform/db"
)

// Repository encapsulates DB operations for journals.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns entries newest first, without lines.
func (r *Repository) List(ctx context.Context) ([]JournalEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, entry_date, reference, memo, source_module, source_id, posted_by, created_at FROM journal_entries ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(&e.ID, &e.Date, &e.Reference, &e.Memo, &e.SourceModule, &e.SourceID, &e.PostedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetWithLines loads one entry and its lines.
func (r *Repository) GetWithLines(ctx context.Context, entryID int64) (JournalEntry, error) {
	var entry JournalEntry
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		entry, err = GetEntryWithLinesTx(ctx, tx, entryID)
		return err
	})
	return entry, err
}

// Post validates and persists an entry with its lines atomically.
func (r *Repository) Post(ctx context.Context, in PostingInput) (JournalEntry, error) {
	var entry JournalEntry
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		entry, err = InsertEntryTx(ctx, tx, in)
		return err
	})
	return entry, err
}

// InsertEntryTx writes a journal entry and its lines inside an open
// transaction. Callers composing larger units of work (settlement postings)
// share this with the standalone posting path so the balancing check cannot
// be bypassed.
func InsertEntryTx(ctx context.Context, tx pgx.Tx, in PostingInput) (JournalEntry, error) {
	if err := in.Validate(); err != nil {
		return JournalEntry{}, err
	}
	row := tx.QueryRow(ctx, `INSERT INTO journal_entries (entry_date, reference, memo, source_module, source_id, posted_by)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id, created_at`, in.Date, in.Reference, in.Memo, in.SourceModule, in.SourceID, nullInt(in.PostedBy))
	var entry JournalEntry
	entry.Date = in.Date
	entry.Reference = in.Reference
	entry.Memo = in.Memo
	entry.SourceModule = in.SourceModule
	entry.SourceID = in.SourceID
	entry.PostedBy = in.PostedBy
	if err := row.Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return JournalEntry{}, err
	}
	for _, line := range in.Lines {
		var l JournalLine
		err := tx.QueryRow(ctx, `INSERT INTO journal_lines (je_id, account_id, debit, credit)
VALUES ($1,$2,$3,$4) RETURNING id, created_at`, entry.ID, line.AccountID, toNumeric(line.Debit), toNumeric(line.Credit)).
			Scan(&l.ID, &l.CreatedAt)
		if err != nil {
			return JournalEntry{}, err
		}
		l.JournalID = entry.ID
		l.AccountID = line.AccountID
		l.Debit = line.Debit
		l.Credit = line.Credit
		entry.Lines = append(entry.Lines, l)
	}
	return entry, nil
}

// GetEntryWithLinesTx loads an entry and its lines inside an open transaction.
func GetEntryWithLinesTx(ctx context.Context, tx pgx.Tx, entryID int64) (JournalEntry, error) {
	var entry JournalEntry
	err := tx.QueryRow(ctx, `SELECT id, entry_date, reference, memo, source_module, source_id, posted_by, created_at
FROM journal_entries WHERE id=$1`, entryID).
		Scan(&entry.ID, &entry.Date, &entry.Reference, &entry.Memo, &entry.SourceModule, &entry.SourceID, &entry.PostedBy, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, shared.ErrJournalNotFound
		}
		return JournalEntry{}, err
	}
	rows, err := tx.Query(ctx, `SELECT id, je_id, account_id, debit, credit, created_at
FROM journal_lines WHERE je_id=$1 ORDER BY id ASC`, entryID)
	if err != nil {
		return JournalEntry{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line JournalLine
		if err := rows.Scan(&line.ID, &line.JournalID, &line.AccountID, &line.Debit, &line.Credit, &line.CreatedAt); err != nil {
			return JournalEntry{}, err
		}
		entry.Lines = append(entry.Lines, line)
	}
	return entry, rows.Err()
}

// Helpers
func nullInt(val int64) any {
	if val == 0 {
		return nil
	}
	return val
}

func toNumeric(v float64) any {
	return fmt.Sprintf("%.2f", v)
}
