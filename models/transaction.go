package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ============================================================================
// TRANSACTION MODEL
// ============================================================================

type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Amount is a money value in minor currency units (centavos). Keeping amounts
// as integers makes aggregation exact and order-independent.
type Amount int64

var ErrBadAmount = errors.New("amount must be a positive number with at most two decimal places")

// UnmarshalJSON accepts both `1234.56` and `"1234.56"`; the web client sends
// whatever its input field held.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// ParseAmount converts a decimal string like "2000" or "150.75" into minor
// units without going through floating point.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] == '-' || s[0] == '+' {
		return 0, ErrBadAmount
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" || len(frac) > 2 || (hasFrac && frac == "") {
		return 0, ErrBadAmount
	}
	var units int64
	for _, r := range whole {
		if r < '0' || r > '9' {
			return 0, ErrBadAmount
		}
		units = units*10 + int64(r-'0')
		if units > (1<<62)/100 {
			return 0, ErrBadAmount
		}
	}
	var cents int64
	for _, r := range frac {
		if r < '0' || r > '9' {
			return 0, ErrBadAmount
		}
		cents = cents*10 + int64(r-'0')
	}
	if len(frac) == 1 {
		cents *= 10
	}
	return Amount(units*100 + cents), nil
}

// String renders the amount as a plain decimal: Amount(1500) is "15.00".
func (a Amount) String() string {
	return fmt.Sprintf("%d.%02d", int64(a)/100, int64(a)%100)
}

// Transaction is a single ledger entry. It belongs to exactly one user and is
// immutable once created.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"-"`
	Amount      Amount          `json:"amount"`
	Description string          `json:"description"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AddTransactionRequest is the write payload. Amount arrives as a raw message
// so the service layer can report a ValidationError instead of a bind error
// and garbage never reaches the store.
type AddTransactionRequest struct {
	Amount      json.RawMessage `json:"amount"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
}

// Summary holds the aggregated totals for one snapshot.
type Summary struct {
	Balance      Amount `json:"balance"`
	TotalIncome  Amount `json:"total_income"`
	TotalExpense Amount `json:"total_expense"`
}

// Category is static service-level configuration, not user data. Icon and
// Color are rendering hints for the client.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}
