package domain

import (
	"fmt"
	"strings"
)

// Category is a spending or earning bucket.
type Category string

// CategoryOthers is the fallback bucket valid for both transaction types.
const CategoryOthers Category = "Others"

var (
	ExpenseCategories = []Category{"Food", "Travel", "Bills", "Shopping", "Rent", CategoryOthers}
	IncomeCategories  = []Category{"Salary", "Bonus", "Gift", "Investment", CategoryOthers}
)

// CategoriesFor returns the ordered category list for t, or nil for an
// unknown type.
func CategoriesFor(t TransactionType) []Category {
	switch t {
	case TransactionExpense:
		return ExpenseCategories
	case TransactionIncome:
		return IncomeCategories
	}
	return nil
}

// ValidateCategory checks category against the list for t. Matching is exact
// after trimming whitespace; nothing is coerced.
func ValidateCategory(t TransactionType, category string) (Category, error) {
	allowed := CategoriesFor(t)
	if allowed == nil {
		return "", fmt.Errorf("%w: unknown transaction_type %q", ErrValidation, t)
	}
	c := Category(strings.TrimSpace(category))
	for _, a := range allowed {
		if a == c {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: category %q is not valid for %s (allowed: %s)",
		ErrValidation, category, t, JoinCategories(allowed))
}

// JoinCategories renders a category list as "A, B, C".
func JoinCategories(cs []Category) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}
