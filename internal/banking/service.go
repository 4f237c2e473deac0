package banking

import "context"

// RepositoryPort defines data access methods for the bank ledger.
type RepositoryPort interface {
	ListAccounts(ctx context.Context) ([]BankAccount, error)
	GetAccount(ctx context.Context, id int64) (BankAccount, error)
	ListTransactions(ctx context.Context, accountID int64) ([]BankTransaction, error)
	RecordTransaction(ctx context.Context, in TransactionInput) (BankTransaction, error)
	ReverseByContra(ctx context.Context, transactionID int64) (BankTransaction, error)
}

// Service handles bank ledger business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListAccounts returns all cash accounts with balances.
func (s *Service) ListAccounts(ctx context.Context) ([]BankAccount, error) {
	return s.repo.ListAccounts(ctx)
}

// GetAccount returns one cash account.
func (s *Service) GetAccount(ctx context.Context, id int64) (BankAccount, error) {
	return s.repo.GetAccount(ctx, id)
}

// ListTransactions returns an account's movements.
func (s *Service) ListTransactions(ctx context.Context, accountID int64) ([]BankTransaction, error) {
	if _, err := s.repo.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return s.repo.ListTransactions(ctx, accountID)
}

// RecordTransaction records a standalone cash movement.
func (s *Service) RecordTransaction(ctx context.Context, in TransactionInput) (BankTransaction, error) {
	if in.Amount <= 0 {
		return BankTransaction{}, ErrNonPositiveAmount
	}
	return s.repo.RecordTransaction(ctx, in)
}

// ReverseByContra undoes a transaction's effect on the balance by inserting an
// opposite-direction movement. The original row is never mutated or deleted.
func (s *Service) ReverseByContra(ctx context.Context, transactionID int64) (BankTransaction, error) {
	return s.repo.ReverseByContra(ctx, transactionID)
}
