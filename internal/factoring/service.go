package factoring

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-erp/meridian-erp/internal/accounting/journals"
	"github.com/meridian-erp/meridian-erp/internal/banking"
	"github.com/meridian-erp/meridian-erp/internal/documents"
	"github.com/meridian-erp/meridian-erp/internal/payments"
	internalShared "github.com/meridian-erp/meridian-erp/internal/shared"
)

const (
	sourceModule  = "FACTORING"
	paymentMethod = "FACTORING"
)

// AuditPort records who settled or reversed what.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// SummaryPort invalidates the cached outstanding totals after a settlement
// commits.
type SummaryPort interface {
	InvalidateSummary(ctx context.Context)
}

// Service orchestrates factoring settlements. Every write of a settlement or
// reversal happens in one database transaction; audit records and cache
// invalidation run only after that transaction commits.
type Service struct {
	repo       Repository
	audit      AuditPort
	summary    SummaryPort
	now        func() time.Time
	retryLimit int
}

// NewService builds a Service. retryLimit caps the operation number collision
// loop; values below one fall back to a single attempt.
func NewService(repo Repository, audit AuditPort, summary SummaryPort, retryLimit int) *Service {
	if retryLimit < 1 {
		retryLimit = 1
	}
	return &Service{repo: repo, audit: audit, summary: summary, now: time.Now, retryLimit: retryLimit}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// List returns all operations, newest first.
func (s *Service) List(ctx context.Context) ([]FactoringOperation, error) {
	return s.repo.ListOperations(ctx)
}

// Get returns one operation with its document links.
func (s *Service) Get(ctx context.Context, id int64) (FactoringOperation, []DocumentLink, error) {
	return s.repo.GetOperationWithLinks(ctx, id)
}

// Create settles a batch of documents against a financial entity. It locks the
// batch, prices it, settles every document, records one payment per document,
// moves cash once if any nets out, posts a balanced journal entry, and
// persists the operation with enough prior state to undo everything later.
// Any failure along the way rolls the whole settlement back.
func (s *Service) Create(ctx context.Context, in CreateInput) (FactoringOperation, error) {
	if err := in.Validate(); err != nil {
		return FactoringOperation{}, err
	}
	if in.OperationDate.IsZero() {
		in.OperationDate = s.now()
	}

	var op FactoringOperation
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		docs, err := tx.LockDocuments(ctx, in.DocumentIDs)
		if err != nil {
			return err
		}
		expectedKind := documents.KindSaleInvoice
		if in.Kind == PurchaseSettlement {
			expectedKind = documents.KindPurchaseInvoice
		}
		for _, d := range docs {
			if d.Status != documents.StatusOpen {
				return fmt.Errorf("%w: document %s", documents.ErrDocumentNotOpen, d.Number)
			}
			if d.Kind != expectedKind {
				return fmt.Errorf("%w: document %s", ErrWrongDocumentKind, d.Number)
			}
		}

		var notes []documents.CreditNote
		if len(in.CreditNoteIDs) > 0 {
			notes, err = tx.LockCreditNotes(ctx, in.CreditNoteIDs)
			if err != nil {
				return err
			}
			for _, n := range notes {
				if n.Status != documents.CreditNoteActive {
					return fmt.Errorf("%w: credit note %s", documents.ErrCreditNoteNotActive, n.Number)
				}
			}
		}

		pricing, err := ComputePricing(in.Kind, docs, notes, in.DiscountRate)
		if err != nil {
			return err
		}

		number, err := s.allocateNumber(ctx, tx, in.Kind)
		if err != nil {
			return err
		}

		links := make([]DocumentLink, 0, len(docs)+len(notes))
		for _, d := range docs {
			doc := d
			if err := tx.SettleDocument(ctx, doc.ID); err != nil {
				return err
			}
			if _, err := tx.InsertPayment(ctx, payments.PaymentInput{
				Direction:     PaymentDirection(in.Kind),
				DocumentID:    doc.ID,
				BankAccountID: in.BankAccountID,
				Amount:        doc.Balance,
				Method:        paymentMethod,
				Reference:     number,
				PaidAt:        in.OperationDate,
			}); err != nil {
				return err
			}
			links = append(links, DocumentLink{
				DocumentID:      &doc.ID,
				Amount:          doc.Balance,
				PreviousBalance: doc.Balance,
				PreviousStatus:  string(doc.Status),
			})
		}
		for _, n := range notes {
			note := n
			if err := tx.SetCreditNoteStatus(ctx, note.ID, documents.CreditNoteApplied); err != nil {
				return err
			}
			links = append(links, DocumentLink{
				CreditNoteID:    &note.ID,
				Amount:          note.Total,
				PreviousBalance: note.Total,
				PreviousStatus:  string(note.Status),
			})
		}

		// A 100% rate prices net to zero: the full gross is discount and no
		// cash changes hands, so the settlement carries no bank transaction.
		var bankTxnID int64
		if pricing.Net > 0 {
			bankTxn, err := tx.RecordBankTransaction(ctx, banking.TransactionInput{
				BankAccountID: in.BankAccountID,
				Direction:     CashDirection(in.Kind),
				Amount:        pricing.Net,
				Reference:     number,
				Memo:          fmt.Sprintf("Factoring settlement %s with %s", number, in.FinancialEntity),
			})
			if err != nil {
				return err
			}
			bankTxnID = bankTxn.ID
		}

		mapping, err := tx.FactoringAccounts(ctx, in.BankAccountID)
		if err != nil {
			return err
		}
		entry, err := tx.InsertJournalEntry(ctx, journals.PostingInput{
			Date:         in.OperationDate,
			Reference:    number,
			Memo:         fmt.Sprintf("Factoring settlement %s", number),
			SourceModule: sourceModule,
			SourceID:     uuid.New(),
			PostedBy:     in.ActorID,
			Lines:        JournalLines(in.Kind, mapping, pricing),
		})
		if err != nil {
			return err
		}

		op, err = tx.InsertOperation(ctx, FactoringOperation{
			Kind:              in.Kind,
			Number:            number,
			OperationDate:     in.OperationDate,
			Gross:             pricing.Gross,
			DiscountRate:      in.DiscountRate,
			Discount:          pricing.Discount,
			Net:               pricing.Net,
			BankAccountID:     in.BankAccountID,
			FinancialEntity:   in.FinancialEntity,
			JournalEntryID:    entry.ID,
			BankTransactionID: bankTxnID,
			Status:            StatusActive,
			CreatedBy:         in.ActorID,
		})
		if err != nil {
			return err
		}
		return tx.InsertLinks(ctx, op.ID, links)
	})
	if err != nil {
		return FactoringOperation{}, err
	}

	s.afterCommit(ctx, in.ActorID, "factoring.create", op, map[string]any{
		"number": op.Number,
		"kind":   string(op.Kind),
		"gross":  op.Gross,
		"net":    op.Net,
	})
	return op, nil
}

// Reverse undoes a settlement. Documents and credit notes return to their
// recorded prior state, the batch's payment records are deleted, cash comes
// back through a contra transaction, and a mirrored journal entry offsets the
// original posting. The operation itself stays on file as REVERSED.
func (s *Service) Reverse(ctx context.Context, in ReverseInput) (FactoringOperation, error) {
	if in.OperationID == 0 {
		return FactoringOperation{}, ErrOperationNotFound
	}

	var op FactoringOperation
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		op, err = tx.GetOperationForUpdate(ctx, in.OperationID)
		if err != nil {
			return err
		}
		if op.Status == StatusReversed {
			return ErrAlreadyReversed
		}

		links, err := tx.ListLinks(ctx, op.ID)
		if err != nil {
			return err
		}
		for _, link := range links {
			switch {
			case link.DocumentID != nil:
				err = tx.RestoreDocument(ctx, *link.DocumentID, link.PreviousBalance, documents.DocumentStatus(link.PreviousStatus))
			case link.CreditNoteID != nil:
				err = tx.SetCreditNoteStatus(ctx, *link.CreditNoteID, documents.CreditNoteStatus(link.PreviousStatus))
			}
			if err != nil {
				return err
			}
		}

		if _, err := tx.DeletePaymentsByReference(ctx, op.Number); err != nil {
			return err
		}

		// Settlements at a 100% rate moved no cash, so there is nothing to
		// contra-post.
		if op.BankTransactionID != 0 {
			original, err := tx.GetBankTransaction(ctx, op.BankTransactionID)
			if err != nil {
				return err
			}
			if _, err := tx.RecordBankTransaction(ctx, banking.TransactionInput{
				BankAccountID: original.BankAccountID,
				Direction:     original.Direction.Opposite(),
				Amount:        original.Amount,
				Reference:     ReversalReference(op.Number),
				Memo:          fmt.Sprintf("Reversal of factoring settlement %s", op.Number),
			}); err != nil {
				return err
			}
		}

		entry, err := tx.GetJournalEntry(ctx, op.JournalEntryID)
		if err != nil {
			return err
		}
		if _, err := tx.InsertJournalEntry(ctx, journals.PostingInput{
			Date:         s.now(),
			Reference:    ReversalReference(op.Number),
			Memo:         fmt.Sprintf("Reversal of factoring settlement %s", op.Number),
			SourceModule: sourceModule,
			SourceID:     uuid.New(),
			PostedBy:     in.ActorID,
			Lines:        journals.ReversedLines(entry.Lines),
		}); err != nil {
			return err
		}

		reversedAt := s.now()
		if err := tx.MarkOperationReversed(ctx, op.ID, reversedAt); err != nil {
			return err
		}
		op.Status = StatusReversed
		op.ReversedAt = &reversedAt
		return nil
	})
	if err != nil {
		return FactoringOperation{}, err
	}

	s.afterCommit(ctx, in.ActorID, "factoring.reverse", op, map[string]any{
		"number": op.Number,
	})
	return op, nil
}

// allocateNumber bumps the counter and verifies the result is unused. The
// exists check covers numbers created outside the counter (imports, manual
// fixes); the loop is bounded so a poisoned counter cannot spin forever.
func (s *Service) allocateNumber(ctx context.Context, tx TxRepository, kind SettlementKind) (string, error) {
	for attempt := 0; attempt < s.retryLimit; attempt++ {
		number, err := tx.NextOperationNumber(ctx, kind)
		if err != nil {
			return "", err
		}
		exists, err := tx.OperationNumberExists(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", ErrNumberExhausted
}

func (s *Service) afterCommit(ctx context.Context, actorID int64, action string, op FactoringOperation, meta map[string]any) {
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			ActorID:  actorID,
			Action:   action,
			Entity:   "factoring_operation",
			EntityID: fmt.Sprintf("%d", op.ID),
			Meta:     meta,
			At:       s.now(),
		})
	}
	if s.summary != nil {
		s.summary.InvalidateSummary(ctx)
	}
}
