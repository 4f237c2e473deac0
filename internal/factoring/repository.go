package factoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/accounting/accounts"
	"github.com/meridian-erp/meridian-erp/internal/accounting/journals"
	"github.com/meridian-erp/meridian-erp/internal/banking"
	"github.com/meridian-erp/meridian-erp/internal/documents"
	"github.com/meridian-erp/meridian-erp/internal/payments"
	"github.com/meridian-erp/meridian-erp/internal/platform/db"
)

// Repository encapsulates DB operations for factoring operations.
type Repository interface {
	GetOperation(ctx context.Context, id int64) (FactoringOperation, error)
	GetOperationWithLinks(ctx context.Context, id int64) (FactoringOperation, []DocumentLink, error)
	ListOperations(ctx context.Context) ([]FactoringOperation, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes every write the orchestrator composes into one atomic
// unit. All methods run on the same open transaction, so any failure rolls
// back the settlement as a whole.
type TxRepository interface {
	LockDocuments(ctx context.Context, ids []int64) ([]documents.Document, error)
	LockCreditNotes(ctx context.Context, ids []int64) ([]documents.CreditNote, error)
	SettleDocument(ctx context.Context, id int64) error
	RestoreDocument(ctx context.Context, id int64, balance float64, status documents.DocumentStatus) error
	SetCreditNoteStatus(ctx context.Context, id int64, status documents.CreditNoteStatus) error

	NextOperationNumber(ctx context.Context, kind SettlementKind) (string, error)
	OperationNumberExists(ctx context.Context, number string) (bool, error)
	InsertOperation(ctx context.Context, op FactoringOperation) (FactoringOperation, error)
	GetOperationForUpdate(ctx context.Context, id int64) (FactoringOperation, error)
	MarkOperationReversed(ctx context.Context, id int64, at time.Time) error
	InsertLinks(ctx context.Context, operationID int64, links []DocumentLink) error
	ListLinks(ctx context.Context, operationID int64) ([]DocumentLink, error)

	InsertPayment(ctx context.Context, in payments.PaymentInput) (payments.PaymentRecord, error)
	DeletePaymentsByReference(ctx context.Context, reference string) (int64, error)

	RecordBankTransaction(ctx context.Context, in banking.TransactionInput) (banking.BankTransaction, error)
	GetBankTransaction(ctx context.Context, id int64) (banking.BankTransaction, error)

	FactoringAccounts(ctx context.Context, bankAccountID int64) (accounts.FactoringAccounts, error)
	InsertJournalEntry(ctx context.Context, in journals.PostingInput) (journals.JournalEntry, error)
	GetJournalEntry(ctx context.Context, id int64) (journals.JournalEntry, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// bank_transaction_id is NULL for settlements that moved no cash; it reads
// back as zero.
const operationColumns = `id, kind, number, operation_date, gross, discount_rate, discount, net,
bank_account_id, financial_entity, journal_entry_id, COALESCE(bank_transaction_id, 0), status, created_by, created_at, reversed_at`

func scanOperation(row pgx.Row) (FactoringOperation, error) {
	var op FactoringOperation
	err := row.Scan(&op.ID, &op.Kind, &op.Number, &op.OperationDate, &op.Gross, &op.DiscountRate,
		&op.Discount, &op.Net, &op.BankAccountID, &op.FinancialEntity, &op.JournalEntryID,
		&op.BankTransactionID, &op.Status, &op.CreatedBy, &op.CreatedAt, &op.ReversedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FactoringOperation{}, ErrOperationNotFound
		}
		return FactoringOperation{}, err
	}
	return op, nil
}

func (r *repository) GetOperation(ctx context.Context, id int64) (FactoringOperation, error) {
	return scanOperation(r.pool.QueryRow(ctx, `SELECT `+operationColumns+` FROM factoring_operations WHERE id=$1`, id))
}

func (r *repository) GetOperationWithLinks(ctx context.Context, id int64) (FactoringOperation, []DocumentLink, error) {
	op, err := r.GetOperation(ctx, id)
	if err != nil {
		return FactoringOperation{}, nil, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, operation_id, document_id, credit_note_id, amount, previous_balance, previous_status
FROM factoring_documents WHERE operation_id=$1 ORDER BY id`, id)
	if err != nil {
		return FactoringOperation{}, nil, err
	}
	defer rows.Close()
	links, err := scanLinks(rows)
	if err != nil {
		return FactoringOperation{}, nil, err
	}
	return op, links, nil
}

func (r *repository) ListOperations(ctx context.Context) ([]FactoringOperation, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+operationColumns+` FROM factoring_operations ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ops []FactoringOperation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) LockDocuments(ctx context.Context, ids []int64) ([]documents.Document, error) {
	return documents.LockDocumentsTx(ctx, r.tx, ids)
}

func (r *txRepository) LockCreditNotes(ctx context.Context, ids []int64) ([]documents.CreditNote, error) {
	return documents.LockCreditNotesTx(ctx, r.tx, ids)
}

func (r *txRepository) SettleDocument(ctx context.Context, id int64) error {
	return documents.SettleDocumentTx(ctx, r.tx, id)
}

func (r *txRepository) RestoreDocument(ctx context.Context, id int64, balance float64, status documents.DocumentStatus) error {
	return documents.RestoreDocumentTx(ctx, r.tx, id, balance, status)
}

func (r *txRepository) SetCreditNoteStatus(ctx context.Context, id int64, status documents.CreditNoteStatus) error {
	return documents.SetCreditNoteStatusTx(ctx, r.tx, id, status)
}

// NextOperationNumber bumps the per-kind counter. The counter row stays locked
// until commit, which serializes concurrent settlements of the same kind.
func (r *txRepository) NextOperationNumber(ctx context.Context, kind SettlementKind) (string, error) {
	var value int64
	err := r.tx.QueryRow(ctx, `INSERT INTO sequence_counters (scope, value) VALUES ($1, 1)
ON CONFLICT (scope) DO UPDATE SET value = sequence_counters.value + 1
RETURNING value`, "factoring:"+kind.NumberPrefix()).Scan(&value)
	if err != nil {
		return "", err
	}
	return FormatOperationNumber(kind, value), nil
}

func (r *txRepository) OperationNumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM factoring_operations WHERE number=$1)`, number).Scan(&exists)
	return exists, err
}

func (r *txRepository) InsertOperation(ctx context.Context, op FactoringOperation) (FactoringOperation, error) {
	// number carries a unique constraint as the storage-level backstop for
	// the allocation loop.
	row := r.tx.QueryRow(ctx, `INSERT INTO factoring_operations
(kind, number, operation_date, gross, discount_rate, discount, net, bank_account_id, financial_entity, journal_entry_id, bank_transaction_id, status, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13) RETURNING id, created_at`,
		op.Kind, op.Number, op.OperationDate, toNumeric(op.Gross), toNumeric(op.DiscountRate), toNumeric(op.Discount), toNumeric(op.Net),
		op.BankAccountID, op.FinancialEntity, op.JournalEntryID, nullInt(op.BankTransactionID), op.Status, nullInt(op.CreatedBy))
	if err := row.Scan(&op.ID, &op.CreatedAt); err != nil {
		return FactoringOperation{}, err
	}
	return op, nil
}

func (r *txRepository) GetOperationForUpdate(ctx context.Context, id int64) (FactoringOperation, error) {
	return scanOperation(r.tx.QueryRow(ctx, `SELECT `+operationColumns+` FROM factoring_operations WHERE id=$1 FOR UPDATE`, id))
}

func (r *txRepository) MarkOperationReversed(ctx context.Context, id int64, at time.Time) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE factoring_operations SET status='REVERSED', reversed_at=$2 WHERE id=$1 AND status='ACTIVE'`, id, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAlreadyReversed
	}
	return nil
}

func (r *txRepository) InsertLinks(ctx context.Context, operationID int64, links []DocumentLink) error {
	for _, link := range links {
		_, err := r.tx.Exec(ctx, `INSERT INTO factoring_documents (operation_id, document_id, credit_note_id, amount, previous_balance, previous_status)
VALUES ($1,$2,$3,$4,$5,$6)`, operationID, link.DocumentID, link.CreditNoteID, toNumeric(link.Amount), toNumeric(link.PreviousBalance), link.PreviousStatus)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) ListLinks(ctx context.Context, operationID int64) ([]DocumentLink, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, operation_id, document_id, credit_note_id, amount, previous_balance, previous_status
FROM factoring_documents WHERE operation_id=$1 ORDER BY id`, operationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLinks(rows)
}

func (r *txRepository) InsertPayment(ctx context.Context, in payments.PaymentInput) (payments.PaymentRecord, error) {
	return payments.InsertPaymentTx(ctx, r.tx, in)
}

func (r *txRepository) DeletePaymentsByReference(ctx context.Context, reference string) (int64, error) {
	return payments.DeleteByReferenceTx(ctx, r.tx, reference)
}

func (r *txRepository) RecordBankTransaction(ctx context.Context, in banking.TransactionInput) (banking.BankTransaction, error) {
	return banking.InsertTransactionTx(ctx, r.tx, in)
}

func (r *txRepository) GetBankTransaction(ctx context.Context, id int64) (banking.BankTransaction, error) {
	return banking.GetTransactionTx(ctx, r.tx, id)
}

func (r *txRepository) FactoringAccounts(ctx context.Context, bankAccountID int64) (accounts.FactoringAccounts, error) {
	return accounts.FactoringAccountsTx(ctx, r.tx, bankAccountID)
}

func (r *txRepository) InsertJournalEntry(ctx context.Context, in journals.PostingInput) (journals.JournalEntry, error) {
	return journals.InsertEntryTx(ctx, r.tx, in)
}

func (r *txRepository) GetJournalEntry(ctx context.Context, id int64) (journals.JournalEntry, error) {
	return journals.GetEntryWithLinesTx(ctx, r.tx, id)
}

func scanLinks(rows pgx.Rows) ([]DocumentLink, error) {
	var links []DocumentLink
	for rows.Next() {
		var l DocumentLink
		if err := rows.Scan(&l.ID, &l.OperationID, &l.DocumentID, &l.CreditNoteID, &l.Amount, &l.PreviousBalance, &l.PreviousStatus); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
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
