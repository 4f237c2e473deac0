package factoring

import (
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/accounting/accounts"
	"github.com/meridian-erp/meridian-erp/internal/accounting/journals"
	"github.com/meridian-erp/meridian-erp/internal/banking"
	"github.com/meridian-erp/meridian-erp/internal/documents"
	"github.com/meridian-erp/meridian-erp/internal/payments"
)

// Pricing is the monetary outcome of a settlement batch.
// Net + Discount always reconstructs Gross exactly.
type Pricing struct {
	Gross    float64
	Discount float64
	Net      float64
}

// ComputePricing derives gross, discount and net for a settlement batch.
// Purchase settlements sum the outstanding balances of the documents. Sale
// settlements additionally subtract the full totals of the applied credit
// notes; the notes shrink the factorable amount without receiving a payment.
// Rounding runs through decimals so 0.1-style float drift cannot unbalance
// the journal entry downstream.
func ComputePricing(kind SettlementKind, docs []documents.Document, notes []documents.CreditNote, rate float64) (Pricing, error) {
	gross := decimal.Zero
	for _, d := range docs {
		gross = gross.Add(decimal.NewFromFloat(d.Balance))
	}
	if kind == SaleSettlement {
		for _, n := range notes {
			gross = gross.Sub(decimal.NewFromFloat(n.Total))
		}
	}
	gross = gross.Round(2)
	if gross.LessThanOrEqual(decimal.Zero) {
		return Pricing{}, ErrNothingToFactor
	}

	discount := gross.Mul(decimal.NewFromFloat(rate)).Div(decimal.NewFromInt(100)).Round(2)
	net := gross.Sub(discount)

	return Pricing{
		Gross:    gross.InexactFloat64(),
		Discount: discount.InexactFloat64(),
		Net:      net.InexactFloat64(),
	}, nil
}

// JournalLines builds the balanced posting for a settlement. Journal lines
// must carry an amount, so the discount line is omitted at a zero rate and
// the bank line at a 100% rate, where no cash moves.
//
// Purchase: Debit payables control gross; Credit bank net; Credit financial
// income discount. Sale: Debit bank net; Debit financial expense discount;
// Credit receivables control gross.
func JournalLines(kind SettlementKind, m accounts.FactoringAccounts, p Pricing) []journals.PostingLineInput {
	var lines []journals.PostingLineInput
	switch kind {
	case PurchaseSettlement:
		lines = append(lines, journals.PostingLineInput{AccountID: m.PayablesControl, Debit: p.Gross})
		if p.Net > 0 {
			lines = append(lines, journals.PostingLineInput{AccountID: m.BankAccountGL, Credit: p.Net})
		}
		if p.Discount > 0 {
			lines = append(lines, journals.PostingLineInput{AccountID: m.FinancialIncome, Credit: p.Discount})
		}
	case SaleSettlement:
		if p.Net > 0 {
			lines = append(lines, journals.PostingLineInput{AccountID: m.BankAccountGL, Debit: p.Net})
		}
		if p.Discount > 0 {
			lines = append(lines, journals.PostingLineInput{AccountID: m.FinancialExpense, Debit: p.Discount})
		}
		lines = append(lines, journals.PostingLineInput{AccountID: m.ReceivablesControl, Credit: p.Gross})
	}
	return lines
}

// CashDirection returns the bank ledger direction for a settlement kind.
func CashDirection(kind SettlementKind) banking.Direction {
	if kind == PurchaseSettlement {
		return banking.Outflow
	}
	return banking.Inflow
}

// PaymentDirection returns the payment voucher direction for a settlement kind.
func PaymentDirection(kind SettlementKind) payments.Direction {
	if kind == PurchaseSettlement {
		return payments.Egress
	}
	return payments.Ingress
}
