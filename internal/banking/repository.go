package banking

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/platform/db"
)

// TransactionInput carries everything needed to record a cash movement.
type TransactionInput struct {
	BankAccountID int64
	Direction     Direction
	Amount        float64
	Reference     string
	Memo          string
}

// Repository provides PostgreSQL backed persistence for the bank ledger.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListAccounts returns all cash accounts.
func (r *Repository) ListAccounts(ctx context.Context) ([]BankAccount, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, gl_account_id, balance, created_at, updated_at FROM bank_accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []BankAccount
	for rows.Next() {
		var a BankAccount
		if err := rows.Scan(&a.ID, &a.Name, &a.GLAccountID, &a.Balance, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// GetAccount returns one cash account.
func (r *Repository) GetAccount(ctx context.Context, id int64) (BankAccount, error) {
	var a BankAccount
	err := r.pool.QueryRow(ctx, `SELECT id, name, gl_account_id, balance, created_at, updated_at FROM bank_accounts WHERE id=$1`, id).
		Scan(&a.ID, &a.Name, &a.GLAccountID, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BankAccount{}, ErrAccountNotFound
		}
		return BankAccount{}, err
	}
	return a, nil
}

// ListTransactions returns an account's movements, newest first.
func (r *Repository) ListTransactions(ctx context.Context, accountID int64) ([]BankTransaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, bank_account_id, direction, amount, reference, memo, reconciled, created_at
FROM bank_transactions WHERE bank_account_id=$1 ORDER BY id DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var txns []BankTransaction
	for rows.Next() {
		var t BankTransaction
		if err := rows.Scan(&t.ID, &t.BankAccountID, &t.Direction, &t.Amount, &t.Reference, &t.Memo, &t.Reconciled, &t.CreatedAt); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// RecordTransaction records one cash movement in its own transaction.
func (r *Repository) RecordTransaction(ctx context.Context, in TransactionInput) (BankTransaction, error) {
	var txn BankTransaction
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		txn, err = InsertTransactionTx(ctx, tx, in)
		return err
	})
	return txn, err
}

// ReverseByContra inserts an opposite-direction movement referencing the
// original. The original row stays untouched so the audit trail is complete.
func (r *Repository) ReverseByContra(ctx context.Context, transactionID int64) (BankTransaction, error) {
	var contra BankTransaction
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		original, err := GetTransactionTx(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		contra, err = InsertTransactionTx(ctx, tx, TransactionInput{
			BankAccountID: original.BankAccountID,
			Direction:     original.Direction.Opposite(),
			Amount:        original.Amount,
			Reference:     "REVERSAL-" + original.Reference,
			Memo:          fmt.Sprintf("Contra of bank transaction %d", original.ID),
		})
		return err
	})
	return contra, err
}

// InsertTransactionTx writes the transaction row and adjusts the owning
// account's cached balance in the same statement sequence. This is the only
// code path that touches bank_accounts.balance; there is no trigger or model
// hook doing it elsewhere.
func InsertTransactionTx(ctx context.Context, tx pgx.Tx, in TransactionInput) (BankTransaction, error) {
	if in.Amount <= 0 {
		return BankTransaction{}, ErrNonPositiveAmount
	}
	if in.Direction != Inflow && in.Direction != Outflow {
		return BankTransaction{}, fmt.Errorf("banking: unknown direction %q", in.Direction)
	}

	var txn BankTransaction
	err := tx.QueryRow(ctx, `INSERT INTO bank_transactions (bank_account_id, direction, amount, reference, memo, reconciled)
VALUES ($1,$2,$3,$4,$5,false) RETURNING id, created_at`,
		in.BankAccountID, in.Direction, fmt.Sprintf("%.2f", in.Amount), in.Reference, in.Memo).
		Scan(&txn.ID, &txn.CreatedAt)
	if err != nil {
		return BankTransaction{}, err
	}
	txn.BankAccountID = in.BankAccountID
	txn.Direction = in.Direction
	txn.Amount = in.Amount
	txn.Reference = in.Reference
	txn.Memo = in.Memo

	cmd, err := tx.Exec(ctx, `UPDATE bank_accounts SET balance = balance + $2, updated_at=NOW() WHERE id=$1`,
		in.BankAccountID, fmt.Sprintf("%.2f", in.Direction.Signed(in.Amount)))
	if err != nil {
		return BankTransaction{}, err
	}
	if cmd.RowsAffected() == 0 {
		return BankTransaction{}, ErrAccountNotFound
	}
	return txn, nil
}

// GetTransactionTx loads one transaction inside an open transaction.
func GetTransactionTx(ctx context.Context, tx pgx.Tx, id int64) (BankTransaction, error) {
	var t BankTransaction
	err := tx.QueryRow(ctx, `SELECT id, bank_account_id, direction, amount, reference, memo, reconciled, created_at
FROM bank_transactions WHERE id=$1`, id).
		Scan(&t.ID, &t.BankAccountID, &t.Direction, &t.Amount, &t.Reference, &t.Memo, &t.Reconciled, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BankTransaction{}, ErrTransactionNotFound
		}
		return BankTransaction{}, err
	}
	return t, nil
}
