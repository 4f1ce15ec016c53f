package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	good := Transaction{
		Kind:        Expense,
		Amount:      Money{Cents: 1250},
		Category:    "Food",
		Description: "groceries",
		Date:        now.AddDate(0, 0, -1),
	}
	if err := good.Validate(now); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		tx   Transaction
		want error
	}{
		{"future date", Transaction{Kind: Expense, Amount: Money{Cents: 100}, Category: "Food", Date: now.Add(time.Hour)}, ErrFutureDate},
		{"zero date", Transaction{Kind: Expense, Amount: Money{Cents: 100}, Category: "Food"}, ErrInvalidDate},
		{"zero amount", Transaction{Kind: Expense, Amount: Money{Cents: 0}, Category: "Food", Date: now}, ErrInvalidAmount},
		{"bad kind", Transaction{Kind: "transfer", Amount: Money{Cents: 100}, Category: "Food", Date: now}, ErrInvalidKind},
		{"empty category", Transaction{Kind: Income, Amount: Money{Cents: 100}, Category: "  ", Date: now}, ErrEmptyCategory},
		{"description too long", Transaction{Kind: Expense, Amount: Money{Cents: 100}, Category: "Food", Description: strings.Repeat("x", 201), Date: now}, ErrDescriptionTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.tx.Validate(now); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestTransactionValidateToday(t *testing.T) {
	// A transaction dated exactly now is not "in the future".
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	tx := Transaction{Kind: Income, Amount: Money{Cents: 5000}, Category: "Salary", Date: now}
	if err := tx.Validate(now); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestBudgetValidate(t *testing.T) {
	good := Budget{Category: "Food", Amount: Money{Cents: 10000}, AlertThreshold: DefaultAlertThreshold}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Budget{
		{Category: "", Amount: Money{Cents: 100}, AlertThreshold: 0.8},
		{Category: "Food", Amount: Money{Cents: 0}, AlertThreshold: 0.8},
		{Category: "Food", Amount: Money{Cents: 100}, AlertThreshold: 0},
		{Category: "Food", Amount: Money{Cents: 100}, AlertThreshold: 1.5},
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
