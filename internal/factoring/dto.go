package factoring

import (
	"fmt"
	"time"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

// CreateInput groups fields required to settle a batch.
type CreateInput struct {
	Kind            SettlementKind
	DocumentIDs     []int64
	CreditNoteIDs   []int64
	DiscountRate    float64
	BankAccountID   int64
	FinancialEntity string
	OperationDate   time.Time
	ActorID         int64
}

// Validate rejects malformed requests before any row is locked. Failures wrap
// httpx.ErrValidation so the transport layer can map them to 400.
func (in CreateInput) Validate() error {
	if in.Kind != PurchaseSettlement && in.Kind != SaleSettlement {
		return fmt.Errorf("%w: settlement kind must be PURCHASE or SALE", httpx.ErrValidation)
	}
	if in.DiscountRate < 0 || in.DiscountRate > 100 {
		return fmt.Errorf("%w: discount rate must be between 0 and 100", httpx.ErrValidation)
	}
	if len(in.DocumentIDs) == 0 && len(in.CreditNoteIDs) == 0 {
		return fmt.Errorf("%w: at least one document or credit note required", httpx.ErrValidation)
	}
	if in.Kind == PurchaseSettlement && len(in.CreditNoteIDs) > 0 {
		return fmt.Errorf("%w: credit notes only apply to sale settlements", httpx.ErrValidation)
	}
	if in.BankAccountID == 0 {
		return fmt.Errorf("%w: bank account required", httpx.ErrValidation)
	}
	if in.FinancialEntity == "" {
		return fmt.Errorf("%w: financial entity required", httpx.ErrValidation)
	}
	return nil
}

// ReverseInput wraps parameters for a reversal.
type ReverseInput struct {
	OperationID int64
	ActorID     int64
}
