// Package services orchestrates storage, aggregation and authentication for
// the request layer.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tally/internal/core"
	"tally/internal/storage"
)

// LedgerService serves the dashboard and monthly views and applies ledger
// mutations. Alerts are recomputed on every query: spend changes with every
// mutation, so nothing here is cached.
type LedgerService struct {
	store *storage.SQLiteRepository
	now   func() time.Time
}

func NewLedgerService(store *storage.SQLiteRepository) *LedgerService {
	return &LedgerService{store: store, now: time.Now}
}

// DashboardSnapshot is the read-only view backing the main page: the
// trailing-60-day transaction window plus budgets, categories, totals and
// alerts.
type DashboardSnapshot struct {
	Transactions  []core.Transaction
	Budgets       []core.Budget
	Categories    []core.Category
	TotalIncome   int64
	TotalExpenses int64
	Balance       int64
	Alerts        []core.BudgetAlert
}

// MonthlyReport is the read-only view for the calendar-month summary.
type MonthlyReport struct {
	Month            string // e.g. "August 2026"
	CategoryExpenses map[string]int64
	Days             []core.DayExpenses
	Alerts           []core.BudgetAlert
}

func (s *LedgerService) Dashboard(ctx context.Context) (*DashboardSnapshot, error) {
	now := s.now()
	txs, err := s.store.ListTransactionsBetween(ctx, core.TrailingWindowStart(now), now)
	if err != nil {
		return nil, fmt.Errorf("list window transactions: %w", err)
	}
	budgets, err := s.store.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	sum := core.Summarize(txs)
	return &DashboardSnapshot{
		Transactions:  txs,
		Budgets:       budgets,
		Categories:    categories,
		TotalIncome:   sum.TotalIncome,
		TotalExpenses: sum.TotalExpenses,
		Balance:       sum.Balance,
		Alerts:        core.EvaluateAlerts(budgets, sum.CategoryExpenses),
	}, nil
}

func (s *LedgerService) MonthlySummary(ctx context.Context) (*MonthlyReport, error) {
	start, end := core.MonthWindow(s.now())
	txs, err := s.store.ListTransactionsBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list month transactions: %w", err)
	}
	budgets, err := s.store.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	monthly := core.SummarizeMonth(txs)
	return &MonthlyReport{
		Month:            start.Format("January 2006"),
		CategoryExpenses: monthly.CategoryExpenses,
		Days:             monthly.Days,
		Alerts:           core.EvaluateAlerts(budgets, monthly.CategoryExpenses),
	}, nil
}

// AddTransaction validates raw submission fields and appends a transaction.
// amount is a decimal string, date is YYYY-MM-DD.
func (s *LedgerService) AddTransaction(ctx context.Context, kind, amount, category, description, date string) (core.Transaction, error) {
	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		return core.Transaction{}, err
	}
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %v", core.ErrInvalidDate, err)
	}

	t := core.Transaction{
		Kind:        core.TransactionKind(kind),
		Amount:      core.Money{Cents: cents},
		Category:    strings.TrimSpace(category),
		Description: strings.TrimSpace(description),
		Date:        parsed,
	}
	if err := t.Validate(s.now()); err != nil {
		return core.Transaction{}, err
	}
	return s.store.CreateTransaction(ctx, t)
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id int64) error {
	return s.store.DeleteTransaction(ctx, id)
}

// SetBudget upserts the budget for a category. Referential integrity with
// the category registry is deliberately not enforced.
func (s *LedgerService) SetBudget(ctx context.Context, category, amount string) (core.Budget, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return core.Budget{}, core.ErrEmptyCategory
	}
	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		return core.Budget{}, err
	}
	return s.store.UpsertBudget(ctx, category, core.Money{Cents: cents})
}

func (s *LedgerService) AddCategory(ctx context.Context, name string) (core.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Category{}, core.ErrEmptyCategory
	}
	cat, err := s.store.CreateCategory(ctx, name)
	if err != nil {
		return core.Category{}, err
	}
	slog.InfoContext(ctx, "Category added", "name", name)
	return cat, nil
}
