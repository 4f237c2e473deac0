package accounts

import "time"

// AccountKind classifies a general-ledger account.
type AccountKind string

const (
	KindAsset     AccountKind = "ASSET"
	KindLiability AccountKind = "LIABILITY"
	KindEquity    AccountKind = "EQUITY"
	KindIncome    AccountKind = "INCOME"
	KindExpense   AccountKind = "EXPENSE"
)

// Account is a chart-of-accounts row.
type Account struct {
	ID        int64
	Code      string
	Name      string
	Kind      AccountKind
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Mapping purposes resolved for settlement postings. The bank-side account is
// resolved per bank account, not through a mapping row.
const (
	PurposeReceivablesControl = "RECEIVABLES_CONTROL"
	PurposePayablesControl    = "PAYABLES_CONTROL"
	PurposeFinancialIncome    = "FINANCIAL_INCOME"
	PurposeFinancialExpense   = "FINANCIAL_EXPENSE"
)

// FactoringAccounts carries every account identifier a settlement posting needs.
type FactoringAccounts struct {
	BankAccountGL      int64
	ReceivablesControl int64
	PayablesControl    int64
	FinancialIncome    int64
	FinancialExpense   int64
}
