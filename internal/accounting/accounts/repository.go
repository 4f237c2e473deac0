package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/accounting/shared"
)

// Repository provides PostgreSQL backed persistence for the chart of accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns the chart of accounts ordered by code.
func (r *Repository) List(ctx context.Context) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, code, name, kind, created_at, updated_at FROM accounts ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Kind, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetByCode looks up a single account.
func (r *Repository) GetByCode(ctx context.Context, code string) (Account, error) {
	var a Account
	err := r.pool.QueryRow(ctx, `SELECT id, code, name, kind, created_at, updated_at FROM accounts WHERE code=$1`, code).
		Scan(&a.ID, &a.Code, &a.Name, &a.Kind, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

// FactoringAccountsTx resolves every account a settlement posting needs inside
// an open transaction. A missing mapping row or a bank account without a ledger
// account is a configuration error: the operation cannot be priced into the
// ledger, so the caller must abort.
func FactoringAccountsTx(ctx context.Context, tx pgx.Tx, bankAccountID int64) (FactoringAccounts, error) {
	var out FactoringAccounts
	err := tx.QueryRow(ctx, `SELECT gl_account_id FROM bank_accounts WHERE id=$1`, bankAccountID).Scan(&out.BankAccountGL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FactoringAccounts{}, shared.ErrMappingNotFound
		}
		return FactoringAccounts{}, err
	}
	if out.BankAccountGL == 0 {
		return FactoringAccounts{}, shared.ErrMappingNotFound
	}

	rows, err := tx.Query(ctx, `SELECT purpose, account_id FROM account_mappings WHERE purpose = ANY($1)`,
		[]string{PurposeReceivablesControl, PurposePayablesControl, PurposeFinancialIncome, PurposeFinancialExpense})
	if err != nil {
		return FactoringAccounts{}, err
	}
	defer rows.Close()
	found := map[string]int64{}
	for rows.Next() {
		var purpose string
		var accountID int64
		if err := rows.Scan(&purpose, &accountID); err != nil {
			return FactoringAccounts{}, err
		}
		found[purpose] = accountID
	}
	if err := rows.Err(); err != nil {
		return FactoringAccounts{}, err
	}
	for _, purpose := range []string{PurposeReceivablesControl, PurposePayablesControl, PurposeFinancialIncome, PurposeFinancialExpense} {
		if found[purpose] == 0 {
			return FactoringAccounts{}, shared.ErrMappingNotFound
		}
	}
	out.ReceivablesControl = found[PurposeReceivablesControl]
	out.PayablesControl = found[PurposePayablesControl]
	out.FinancialIncome = found[PurposeFinancialIncome]
	out.FinancialExpense = found[PurposeFinancialExpense]
	return out, nil
}
