package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionKind = "income"
	Expense TransactionKind = "expense"
)

// DefaultAlertThreshold is the fraction of a budget at which an overspend
// warning is raised when a budget is first created.
const DefaultAlertThreshold = 0.8

type (
	TransactionKind string

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          int64
		Kind        TransactionKind
		Amount      Money
		Category    string
		Description string
		Date        time.Time
	}

	Budget struct {
		ID             int64
		Category       string // unique key
		Amount         Money
		AlertThreshold float64 // fraction in (0,1]
	}

	Category struct {
		ID   int64
		Name string
	}

	User struct {
		ID        int64
		Email     string
		Username  string
		OTP       string    // empty when no live code
		OTPExpiry time.Time // zero when no live code
	}
)

// DefaultCategories is the fixed label set seeded at initialization.
var DefaultCategories = []string{
	"Salary", "Freelance", "Investment", "Food", "Transportation",
	"Utilities", "Rent", "Entertainment", "Shopping", "Healthcare",
	"Education", "Insurance", "Savings", "Other",
}

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidKind         = errors.New("invalid transaction kind")
	ErrInvalidDate         = errors.New("invalid date")
	ErrFutureDate          = errors.New("cannot add future transactions")
	ErrEmptyCategory       = errors.New("empty category")
	ErrDescriptionTooLong  = errors.New("description too long (max 200 characters)")
	ErrInvalidThreshold    = errors.New("alert threshold must be in (0,1]")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDuplicateCategory   = errors.New("category already exists")
)

func (k TransactionKind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidKind
	}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks a transaction before it enters the ledger. now is the
// reference instant for the future-date rejection.
func (t Transaction) Validate(now time.Time) error {
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if t.Date.After(now) {
		return ErrFutureDate
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if b.AlertThreshold <= 0 || b.AlertThreshold > 1 {
		return ErrInvalidThreshold
	}
	return nil
}
