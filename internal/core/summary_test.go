package core

import (
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2026, 8, d, 10, 0, 0, 0, time.UTC)
}

func TestSummarize(t *testing.T) {
	txs := []Transaction{
		{Kind: Income, Amount: Money{Cents: 300000}, Category: "Salary", Date: day(1)},
		{Kind: Expense, Amount: Money{Cents: 4500}, Category: "Food", Date: day(2)},
		{Kind: Expense, Amount: Money{Cents: 3500}, Category: "Food", Date: day(3)},
		{Kind: Expense, Amount: Money{Cents: 90000}, Category: "Rent", Date: day(1)},
		{Kind: Income, Amount: Money{Cents: 12000}, Category: "Freelance", Date: day(4)},
	}
	s := Summarize(txs)

	if s.TotalIncome != 312000 {
		t.Fatalf("total income: got %d", s.TotalIncome)
	}
	if s.TotalExpenses != 98000 {
		t.Fatalf("total expenses: got %d", s.TotalExpenses)
	}
	if s.Balance != s.TotalIncome-s.TotalExpenses {
		t.Fatalf("balance %d != income-expenses %d", s.Balance, s.TotalIncome-s.TotalExpenses)
	}
	if s.CategoryExpenses["Food"] != 8000 {
		t.Fatalf("Food: got %d, want 8000", s.CategoryExpenses["Food"])
	}
	if s.CategoryExpenses["Rent"] != 90000 {
		t.Fatalf("Rent: got %d, want 90000", s.CategoryExpenses["Rent"])
	}
	// Income kinds never contribute to category expenses.
	if _, ok := s.CategoryExpenses["Salary"]; ok {
		t.Fatal("income category leaked into expenses")
	}
	if _, ok := s.CategoryExpenses["Freelance"]; ok {
		t.Fatal("income category leaked into expenses")
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalIncome != 0 || s.TotalExpenses != 0 || s.Balance != 0 {
		t.Fatalf("expected zero totals, got %+v", s)
	}
	if len(s.CategoryExpenses) != 0 {
		t.Fatalf("expected empty map, got %v", s.CategoryExpenses)
	}
}

func TestSummarizeMonth(t *testing.T) {
	txs := []Transaction{
		{Kind: Expense, Amount: Money{Cents: 1000}, Category: "Food", Date: day(3)},
		{Kind: Expense, Amount: Money{Cents: 2000}, Category: "Food", Date: day(3)},
		{Kind: Expense, Amount: Money{Cents: 500}, Category: "Transportation", Date: day(1)},
		{Kind: Expense, Amount: Money{Cents: 700}, Category: "Food", Date: day(10)},
		{Kind: Income, Amount: Money{Cents: 99999}, Category: "Salary", Date: day(10)},
	}
	m := SummarizeMonth(txs)

	if m.CategoryExpenses["Food"] != 3700 {
		t.Fatalf("Food: got %d, want 3700", m.CategoryExpenses["Food"])
	}
	if len(m.Days) != 3 {
		t.Fatalf("expected 3 day buckets, got %d", len(m.Days))
	}
	// Days descending.
	wantDays := []int{10, 3, 1}
	for i, d := range m.Days {
		if d.Day.Day() != wantDays[i] {
			t.Fatalf("day %d: got %d, want %d", i, d.Day.Day(), wantDays[i])
		}
	}
	if m.Days[1].ByCategory["Food"] != 3000 {
		t.Fatalf("Aug 3 Food: got %d, want 3000", m.Days[1].ByCategory["Food"])
	}
	if _, ok := m.CategoryExpenses["Salary"]; ok {
		t.Fatal("income leaked into monthly category expenses")
	}
}

func TestMonthWindow(t *testing.T) {
	now := time.Date(2026, 8, 31, 23, 15, 0, 0, time.UTC)
	start, end := MonthWindow(now)

	if !start.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start: got %v", start)
	}
	wantEnd := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC).Add(-time.Microsecond)
	if !end.Equal(wantEnd) {
		t.Fatalf("end: got %v, want %v", end, wantEnd)
	}

	// December rolls into the next year.
	start, end = MonthWindow(time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC))
	if start.Month() != time.December || end.Year() != 2026 || end.Month() != time.December {
		t.Fatalf("december window: start %v end %v", start, end)
	}
}

func TestTrailingWindowStart(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	if got := TrailingWindowStart(now); !got.Equal(now.AddDate(0, 0, -60)) {
		t.Fatalf("got %v", got)
	}
}
