package factoring

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/internal/accounting/accounts"
	"github.com/meridian-erp/meridian-erp/internal/banking"
	"github.com/meridian-erp/meridian-erp/internal/documents"
	"github.com/meridian-erp/meridian-erp/internal/payments"
)

func TestComputePricingPurchase(t *testing.T) {
	docs := []documents.Document{{ID: 1, Balance: 1000}}
	p, err := ComputePricing(PurchaseSettlement, docs, nil, 5)
	require.NoError(t, err)
	require.Equal(t, 1000.0, p.Gross)
	require.Equal(t, 50.0, p.Discount)
	require.Equal(t, 950.0, p.Net)
}

func TestComputePricingSaleWithCreditNote(t *testing.T) {
	docs := []documents.Document{
		{ID: 1, Balance: 600},
		{ID: 2, Balance: 400},
	}
	notes := []documents.CreditNote{{ID: 9, Total: 100}}
	p, err := ComputePricing(SaleSettlement, docs, notes, 10)
	require.NoError(t, err)
	require.Equal(t, 900.0, p.Gross)
	require.Equal(t, 90.0, p.Discount)
	require.Equal(t, 810.0, p.Net)
}

func TestComputePricingRounding(t *testing.T) {
	// 333.33 * 2.5% = 8.33325, rounds to 8.33; net must be exact complement.
	docs := []documents.Document{{ID: 1, Balance: 333.33}}
	p, err := ComputePricing(PurchaseSettlement, docs, nil, 2.5)
	require.NoError(t, err)
	require.Equal(t, 8.33, p.Discount)
	require.Equal(t, 325.00, p.Net)
	require.InDelta(t, p.Gross, p.Discount+p.Net, 1e-9)
}

func TestComputePricingNothingToFactor(t *testing.T) {
	docs := []documents.Document{{ID: 1, Balance: 100}}
	notes := []documents.CreditNote{{ID: 2, Total: 100}}
	_, err := ComputePricing(SaleSettlement, docs, notes, 5)
	require.ErrorIs(t, err, ErrNothingToFactor)

	_, err = ComputePricing(SaleSettlement, nil, notes, 5)
	require.ErrorIs(t, err, ErrNothingToFactor)
}

func TestJournalLinesPurchase(t *testing.T) {
	m := accounts.FactoringAccounts{BankAccountGL: 1, ReceivablesControl: 2, PayablesControl: 3, FinancialIncome: 4, FinancialExpense: 5}
	lines := JournalLines(PurchaseSettlement, m, Pricing{Gross: 1000, Discount: 50, Net: 950})
	require.Len(t, lines, 3)
	require.Equal(t, int64(3), lines[0].AccountID)
	require.Equal(t, 1000.0, lines[0].Debit)
	require.Equal(t, int64(1), lines[1].AccountID)
	require.Equal(t, 950.0, lines[1].Credit)
	require.Equal(t, int64(4), lines[2].AccountID)
	require.Equal(t, 50.0, lines[2].Credit)
}

func TestJournalLinesSale(t *testing.T) {
	m := accounts.FactoringAccounts{BankAccountGL: 1, ReceivablesControl: 2, PayablesControl: 3, FinancialIncome: 4, FinancialExpense: 5}
	lines := JournalLines(SaleSettlement, m, Pricing{Gross: 900, Discount: 90, Net: 810})
	require.Len(t, lines, 3)
	require.Equal(t, int64(1), lines[0].AccountID)
	require.Equal(t, 810.0, lines[0].Debit)
	require.Equal(t, int64(5), lines[1].AccountID)
	require.Equal(t, 90.0, lines[1].Debit)
	require.Equal(t, int64(2), lines[2].AccountID)
	require.Equal(t, 900.0, lines[2].Credit)
}

func TestJournalLinesZeroDiscount(t *testing.T) {
	m := accounts.FactoringAccounts{BankAccountGL: 1, PayablesControl: 3, FinancialIncome: 4}
	lines := JournalLines(PurchaseSettlement, m, Pricing{Gross: 500, Discount: 0, Net: 500})
	require.Len(t, lines, 2)
	for _, l := range lines {
		require.NotEqual(t, int64(4), l.AccountID)
	}
}

func TestJournalLinesFullDiscount(t *testing.T) {
	m := accounts.FactoringAccounts{BankAccountGL: 1, ReceivablesControl: 2, PayablesControl: 3, FinancialIncome: 4, FinancialExpense: 5}

	p, err := ComputePricing(PurchaseSettlement, []documents.Document{{ID: 1, Balance: 500}}, nil, 100)
	require.NoError(t, err)
	require.Equal(t, 500.0, p.Discount)
	require.Equal(t, 0.0, p.Net)

	// No cash moves, so neither side carries a bank line.
	lines := JournalLines(PurchaseSettlement, m, p)
	require.Len(t, lines, 2)
	require.Equal(t, int64(3), lines[0].AccountID)
	require.Equal(t, 500.0, lines[0].Debit)
	require.Equal(t, int64(4), lines[1].AccountID)
	require.Equal(t, 500.0, lines[1].Credit)

	lines = JournalLines(SaleSettlement, m, p)
	require.Len(t, lines, 2)
	require.Equal(t, int64(5), lines[0].AccountID)
	require.Equal(t, 500.0, lines[0].Debit)
	require.Equal(t, int64(2), lines[1].AccountID)
	require.Equal(t, 500.0, lines[1].Credit)
}

func TestDirections(t *testing.T) {
	require.Equal(t, banking.Outflow, CashDirection(PurchaseSettlement))
	require.Equal(t, banking.Inflow, CashDirection(SaleSettlement))
	require.Equal(t, payments.Egress, PaymentDirection(PurchaseSettlement))
	require.Equal(t, payments.Ingress, PaymentDirection(SaleSettlement))
}

func TestFormatOperationNumber(t *testing.T) {
	require.Equal(t, "FP-00000007", FormatOperationNumber(PurchaseSettlement, 7))
	require.Equal(t, "FS-00012345", FormatOperationNumber(SaleSettlement, 12345))
	require.Equal(t, "REVERSAL-FP-00000007", ReversalReference("FP-00000007"))
}
