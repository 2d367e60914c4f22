package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money in from money out.
type TransactionType string

const (
	TransactionIncome  TransactionType = "Income"
	TransactionExpense TransactionType = "Expense"
)

// ParseTransactionType accepts the exact spelling only.
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(strings.TrimSpace(s)); t {
	case TransactionIncome, TransactionExpense:
		return t, nil
	default:
		return "", fmt.Errorf("%w: transaction_type must be one of: Income, Expense", ErrValidation)
	}
}

// Transaction is an immutable ledger entry owned by exactly one user.
type Transaction struct {
	ID          string
	UserID      string
	Title       string
	Description *string
	Amount      decimal.Decimal
	Category    Category
	Type        TransactionType
	Date        time.Time
}

// AmountInput holds an amount as received, either a JSON number or a JSON
// string. Parsing into a decimal happens in the writer.
type AmountInput string

func (a *AmountInput) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*a = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = AmountInput(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount must be a number or numeric string")
	}
	*a = AmountInput(n.String())
	return nil
}
