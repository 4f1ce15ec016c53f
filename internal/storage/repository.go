// Package storage provides the SQLite-backed ledger store.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tally/internal/core"

	_ "modernc.org/sqlite" // pure Go SQLite driver (no CGO)
)

// SQLiteRepository persists transactions, budgets, categories and users.
// Timestamps are stored as unix microseconds in UTC.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateTransaction appends a new transaction and returns it with its
// assigned ID.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (kind, amount_cents, category, description, date_us)
		 VALUES (?, ?, ?, ?, ?)`,
		string(t.Kind), t.Amount.Cents, t.Category, t.Description, t.Date.UTC().UnixMicro(),
	)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"kind", t.Kind,
		"amount_cents", t.Amount.Cents,
		"category", t.Category)
	return t, nil
}

// DeleteTransaction removes a transaction by id. A miss is reported as
// core.ErrTransactionNotFound, not a failure.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows: %w", err)
	}
	if n == 0 {
		return core.ErrTransactionNotFound
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// ListTransactionsBetween returns transactions with start <= date <= end,
// newest first.
func (r *SQLiteRepository) ListTransactionsBetween(ctx context.Context, start, end time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, amount_cents, category, description, date_us
		 FROM transactions
		 WHERE date_us BETWEEN ? AND ?
		 ORDER BY date_us DESC, id DESC`,
		start.UTC().UnixMicro(), end.UTC().UnixMicro(),
	)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var (
			t      core.Transaction
			kind   string
			dateUS int64
		)
		if err := rows.Scan(&t.ID, &kind, &t.Amount.Cents, &t.Category, &t.Description, &dateUS); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Kind = core.TransactionKind(kind)
		t.Date = time.UnixMicro(dateUS).UTC()
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

// UpsertBudget creates a budget for the category with the default alert
// threshold, or replaces the amount of an existing one. The stored threshold
// is never touched on update.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, category string, amount core.Money) (core.Budget, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (category, amount_cents, alert_threshold)
		 VALUES (?, ?, ?)
		 ON CONFLICT(category) DO UPDATE SET amount_cents = excluded.amount_cents`,
		category, amount.Cents, core.DefaultAlertThreshold,
	)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}

	var b core.Budget
	err = r.db.QueryRowContext(ctx,
		`SELECT id, category, amount_cents, alert_threshold FROM budgets WHERE category = ?`,
		category,
	).Scan(&b.ID, &b.Category, &b.Amount.Cents, &b.AlertThreshold)
	if err != nil {
		return core.Budget{}, fmt.Errorf("read budget back: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved", "category", b.Category, "amount_cents", b.Amount.Cents)
	return b, nil
}

// ListBudgets returns all budgets in insertion order.
func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, amount_cents, alert_threshold FROM budgets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.Category, &b.Amount.Cents, &b.AlertThreshold); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return budgets, nil
}

// CreateCategory adds a new category label. An existing name is reported as
// core.ErrDuplicateCategory.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return core.Category{}, core.ErrDuplicateCategory
		}
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	return core.Category{ID: id, Name: name}, nil
}

// ListCategories returns all category labels in insertion order.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return cats, nil
}

// GetUserByEmail returns the user for an email, or nil when unseen.
func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	var (
		u        core.User
		username sql.NullString
		otp      sql.NullString
		expiryUS sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, username, otp, otp_expiry_us FROM users WHERE email = ?`,
		email,
	).Scan(&u.ID, &u.Email, &username, &otp, &expiryUS)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	u.Username = username.String
	u.OTP = otp.String
	if expiryUS.Valid {
		u.OTPExpiry = time.UnixMicro(expiryUS.Int64).UTC()
	}
	return &u, nil
}

// CreateUser registers a new user identity for an email. Username may be
// empty.
func (r *SQLiteRepository) CreateUser(ctx context.Context, email, username string) (*core.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, username) VALUES (?, ?)`, email, username)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user id: %w", err)
	}
	slog.InfoContext(ctx, "User registered", "id", id, "email", email)
	return &core.User{ID: id, Email: email, Username: username}, nil
}

// SetUserOTP stores a freshly issued passcode and expiry, overwriting any
// prior live code.
func (r *SQLiteRepository) SetUserOTP(ctx context.Context, userID int64, code string, expiry time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET otp = ?, otp_expiry_us = ? WHERE id = ?`,
		code, expiry.UTC().UnixMicro(), userID)
	if err != nil {
		return fmt.Errorf("set user otp: %w", err)
	}
	return nil
}

// ClearUserOTP nulls the stored passcode after successful verification.
func (r *SQLiteRepository) ClearUserOTP(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET otp = NULL, otp_expiry_us = NULL WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("clear user otp: %w", err)
	}
	return nil
}
