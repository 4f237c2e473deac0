package banking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryBankRepo struct {
	accounts map[int64]*BankAccount
	txns     map[int64]*BankTransaction
	nextID   int64
}

func newMemoryBankRepo() *memoryBankRepo {
	return &memoryBankRepo{
		accounts: map[int64]*BankAccount{
			1: {ID: 1, Name: "Operating", GLAccountID: 10, Balance: 0},
		},
		txns: make(map[int64]*BankTransaction),
	}
}

func (r *memoryBankRepo) ListAccounts(ctx context.Context) ([]BankAccount, error) {
	var out []BankAccount
	for _, a := range r.accounts {
		out = append(out, *a)
	}
	return out, nil
}

func (r *memoryBankRepo) GetAccount(ctx context.Context, id int64) (BankAccount, error) {
	a, ok := r.accounts[id]
	if !ok {
		return BankAccount{}, ErrAccountNotFound
	}
	return *a, nil
}

func (r *memoryBankRepo) ListTransactions(ctx context.Context, accountID int64) ([]BankTransaction, error) {
	var out []BankTransaction
	for _, t := range r.txns {
		if t.BankAccountID == accountID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *memoryBankRepo) RecordTransaction(ctx context.Context, in TransactionInput) (BankTransaction, error) {
	if in.Amount <= 0 {
		return BankTransaction{}, ErrNonPositiveAmount
	}
	account, ok := r.accounts[in.BankAccountID]
	if !ok {
		return BankTransaction{}, ErrAccountNotFound
	}
	r.nextID++
	txn := &BankTransaction{
		ID:            r.nextID,
		BankAccountID: in.BankAccountID,
		Direction:     in.Direction,
		Amount:        in.Amount,
		Reference:     in.Reference,
		Memo:          in.Memo,
		CreatedAt:     time.Now(),
	}
	r.txns[txn.ID] = txn
	account.Balance += in.Direction.Signed(in.Amount)
	return *txn, nil
}

func (r *memoryBankRepo) ReverseByContra(ctx context.Context, transactionID int64) (BankTransaction, error) {
	original, ok := r.txns[transactionID]
	if !ok {
		return BankTransaction{}, ErrTransactionNotFound
	}
	return r.RecordTransaction(ctx, TransactionInput{
		BankAccountID: original.BankAccountID,
		Direction:     original.Direction.Opposite(),
		Amount:        original.Amount,
		Reference:     "REVERSAL-" + original.Reference,
	})
}

func TestRecordTransactionAdjustsBalance(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryBankRepo()
	svc := NewService(repo)

	_, err := svc.RecordTransaction(ctx, TransactionInput{BankAccountID: 1, Direction: Inflow, Amount: 810, Reference: "FS-00000001"})
	require.NoError(t, err)

	account, err := svc.GetAccount(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 810.0, account.Balance)

	_, err = svc.RecordTransaction(ctx, TransactionInput{BankAccountID: 1, Direction: Outflow, Amount: 950, Reference: "FP-00000001"})
	require.NoError(t, err)

	account, _ = svc.GetAccount(ctx, 1)
	require.Equal(t, -140.0, account.Balance)
}

func TestRecordTransactionRejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryBankRepo())

	_, err := svc.RecordTransaction(ctx, TransactionInput{BankAccountID: 1, Direction: Inflow, Amount: 0})
	require.ErrorIs(t, err, ErrNonPositiveAmount)

	_, err = svc.RecordTransaction(ctx, TransactionInput{BankAccountID: 1, Direction: Outflow, Amount: -5})
	require.ErrorIs(t, err, ErrNonPositiveAmount)
}

func TestReverseByContraKeepsOriginal(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryBankRepo()
	svc := NewService(repo)

	original, err := svc.RecordTransaction(ctx, TransactionInput{BankAccountID: 1, Direction: Outflow, Amount: 950, Reference: "FP-00000001"})
	require.NoError(t, err)

	contra, err := svc.ReverseByContra(ctx, original.ID)
	require.NoError(t, err)
	require.Equal(t, Inflow, contra.Direction)
	require.Equal(t, 950.0, contra.Amount)
	require.Equal(t, "REVERSAL-FP-00000001", contra.Reference)

	// Balance is back to the pre-operation value and both rows survive.
	account, _ := svc.GetAccount(ctx, 1)
	require.Equal(t, 0.0, account.Balance)
	txns, err := svc.ListTransactions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, txns, 2)
}

func TestDirectionHelpers(t *testing.T) {
	require.Equal(t, Outflow, Inflow.Opposite())
	require.Equal(t, Inflow, Outflow.Opposite())
	require.Equal(t, -10.0, Outflow.Signed(10))
	require.Equal(t, 10.0, Inflow.Signed(10))
}
