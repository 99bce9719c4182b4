package models

// Currency identifies the denomination a user entered an amount in.
type Currency string

const (
	CurrencyOldSYP Currency = "OLD_SYP"
	CurrencyNewSYP Currency = "NEW_SYP"
	CurrencyUSD    Currency = "USD"
)

// TransactionType marks an entry as money in or money out.
type TransactionType string

const (
	TypeIncome  TransactionType = "INCOME"
	TypeExpense TransactionType = "EXPENSE"
)

// DefaultUsdRate prices USD entries when no global rate was ever configured.
const DefaultUsdRate float64 = 15000

// Transaction is a single ledger entry.
//
// Amount is always denominated in new SYP and is the only field used for
// arithmetic. OriginalAmount, InputCurrency and UsdRate record exactly what
// the user typed; they are kept for display and audit and are never
// re-derived from Amount. Once stored, Amount is immutable even if the
// global USD rate changes later.
type Transaction struct {
	ID             string          `json:"id" db:"id"`
	UserID         string          `json:"userId" db:"user_id"`
	Amount         float64         `json:"amount" db:"amount"`
	OriginalAmount float64         `json:"originalAmount" db:"original_amount"`
	InputCurrency  Currency        `json:"inputCurrency" db:"input_currency"`
	UsdRate        *float64        `json:"usdRate,omitempty" db:"usd_rate"`
	Description    string          `json:"description" db:"description"`
	Notes          string          `json:"notes,omitempty" db:"notes"`
	Type           TransactionType `json:"type" db:"type"`
	Date           string          `json:"date" db:"date"` // ledger day, YYYY-MM-DD
	CreatedAt      int64           `json:"createdAt" db:"created_at"`
}

// Signed returns the amount with its accounting sign applied.
func (t Transaction) Signed() float64 {
	if t.Type == TypeExpense {
		return -t.Amount
	}
	return t.Amount
}
