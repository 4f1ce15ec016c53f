package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tally/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dir, err := os.MkdirTemp("", "tally-test-*")
	if err != nil {
		t.Fatalf("temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	repo, err := NewSQLiteRepository(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSeededCategories(t *testing.T) {
	repo := newTestRepo(t)
	cats, err := repo.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats) != len(core.DefaultCategories) {
		t.Fatalf("got %d categories, want %d", len(cats), len(core.DefaultCategories))
	}
	names := make(map[string]bool, len(cats))
	for _, c := range cats {
		names[c.Name] = true
	}
	for _, want := range []string{"Food", "Rent", "Salary", "Other"} {
		if !names[want] {
			t.Fatalf("seed missing %q", want)
		}
	}
}

func TestTransactions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	mk := func(kind core.TransactionKind, cents int64, cat string, date time.Time) core.Transaction {
		t.Helper()
		tx, err := repo.CreateTransaction(ctx, core.Transaction{
			Kind: kind, Amount: core.Money{Cents: cents}, Category: cat, Description: "x", Date: date,
		})
		if err != nil {
			t.Fatalf("create transaction: %v", err)
		}
		return tx
	}

	inWindow := mk(core.Expense, 1000, "Food", base)
	mk(core.Income, 5000, "Salary", base.AddDate(0, 0, -1))
	outOfWindow := mk(core.Expense, 2000, "Rent", base.AddDate(0, 0, -90))

	t.Run("window filtering and order", func(t *testing.T) {
		txs, err := repo.ListTransactionsBetween(ctx, base.AddDate(0, 0, -60), base)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(txs) != 2 {
			t.Fatalf("got %d transactions, want 2", len(txs))
		}
		if txs[0].ID != inWindow.ID {
			t.Fatalf("expected newest first, got id %d", txs[0].ID)
		}
		for _, tx := range txs {
			if tx.ID == outOfWindow.ID {
				t.Fatal("out-of-window transaction returned")
			}
		}
		if !txs[0].Date.Equal(base) {
			t.Fatalf("date round-trip: got %v, want %v", txs[0].Date, base)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := repo.DeleteTransaction(ctx, inWindow.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := repo.DeleteTransaction(ctx, inWindow.ID); !errors.Is(err, core.ErrTransactionNotFound) {
			t.Fatalf("second delete: got %v, want ErrTransactionNotFound", err)
		}
	})

	t.Run("delete missing", func(t *testing.T) {
		if err := repo.DeleteTransaction(ctx, 99999); !errors.Is(err, core.ErrTransactionNotFound) {
			t.Fatalf("got %v, want ErrTransactionNotFound", err)
		}
	})
}

func TestUpsertBudget(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.UpsertBudget(ctx, "Food", core.Money{Cents: 10000})
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}
	if first.AlertThreshold != core.DefaultAlertThreshold {
		t.Fatalf("threshold: got %v, want %v", first.AlertThreshold, core.DefaultAlertThreshold)
	}

	second, err := repo.UpsertBudget(ctx, "Food", core.Money{Cents: 20000})
	if err != nil {
		t.Fatalf("update budget: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert created a new row: %d vs %d", second.ID, first.ID)
	}
	if second.Amount.Cents != 20000 {
		t.Fatalf("amount: got %d, want 20000", second.Amount.Cents)
	}
	if second.AlertThreshold != core.DefaultAlertThreshold {
		t.Fatalf("threshold changed on update: %v", second.AlertThreshold)
	}

	budgets, err := repo.ListBudgets(ctx)
	if err != nil {
		t.Fatalf("list budgets: %v", err)
	}
	if len(budgets) != 1 {
		t.Fatalf("got %d budgets, want 1", len(budgets))
	}
}

func TestCreateCategoryDuplicate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateCategory(ctx, "Pets"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.CreateCategory(ctx, "Pets"); !errors.Is(err, core.ErrDuplicateCategory) {
		t.Fatalf("got %v, want ErrDuplicateCategory", err)
	}
	// Seeded names are duplicates too.
	if _, err := repo.CreateCategory(ctx, "Food"); !errors.Is(err, core.ErrDuplicateCategory) {
		t.Fatalf("got %v, want ErrDuplicateCategory", err)
	}
}

func TestUserOTPLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u, err := repo.GetUserByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u != nil {
		t.Fatal("expected nil for unseen email")
	}

	u, err = repo.CreateUser(ctx, "a@b.com", "alex")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	expiry := time.Date(2026, 8, 15, 12, 5, 0, 0, time.UTC)
	if err := repo.SetUserOTP(ctx, u.ID, "123456", expiry); err != nil {
		t.Fatalf("set otp: %v", err)
	}

	u, err = repo.GetUserByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("get after set: %v", err)
	}
	if u.OTP != "123456" || !u.OTPExpiry.Equal(expiry) {
		t.Fatalf("stored otp state: %q %v", u.OTP, u.OTPExpiry)
	}
	if u.Username != "alex" {
		t.Fatalf("username: got %q", u.Username)
	}

	if err := repo.ClearUserOTP(ctx, u.ID); err != nil {
		t.Fatalf("clear otp: %v", err)
	}
	u, err = repo.GetUserByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("get after clear: %v", err)
	}
	if u.OTP != "" || !u.OTPExpiry.IsZero() {
		t.Fatalf("otp not cleared: %q %v", u.OTP, u.OTPExpiry)
	}
}
