package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"tally/internal/core"
)

type transactionJSON struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
}

type budgetJSON struct {
	ID             int64   `json:"id"`
	Category       string  `json:"category"`
	AmountCents    int64   `json:"amount_cents"`
	AlertThreshold float64 `json:"alert_threshold"`
}

type alertJSON struct {
	Category    string `json:"category"`
	BudgetCents int64  `json:"budget_cents"`
	SpentCents  int64  `json:"spent_cents"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          t.ID,
		Kind:        string(t.Kind),
		AmountCents: t.Amount.Cents,
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date.Format("2006-01-02"),
	}
}

func toBudgetJSON(b core.Budget) budgetJSON {
	return budgetJSON{
		ID:             b.ID,
		Category:       b.Category,
		AmountCents:    b.Amount.Cents,
		AlertThreshold: b.AlertThreshold,
	}
}

func toAlertsJSON(alerts []core.BudgetAlert) []alertJSON {
	out := make([]alertJSON, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, alertJSON{
			Category:    a.Category,
			BudgetCents: a.BudgetCents,
			SpentCents:  a.SpentCents,
		})
	}
	return out
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	txs := make([]transactionJSON, 0, len(snap.Transactions))
	for _, t := range snap.Transactions {
		txs = append(txs, toTransactionJSON(t))
	}
	budgets := make([]budgetJSON, 0, len(snap.Budgets))
	for _, b := range snap.Budgets {
		budgets = append(budgets, toBudgetJSON(b))
	}
	categories := make([]string, 0, len(snap.Categories))
	for _, c := range snap.Categories {
		categories = append(categories, c.Name)
	}

	writeJSON(w, http.StatusOK, struct {
		Transactions  []transactionJSON `json:"transactions"`
		Budgets       []budgetJSON      `json:"budgets"`
		Categories    []string          `json:"categories"`
		TotalIncome   int64             `json:"total_income_cents"`
		TotalExpenses int64             `json:"total_expenses_cents"`
		Balance       int64             `json:"balance_cents"`
		Alerts        []alertJSON       `json:"alerts"`
	}{
		Transactions:  txs,
		Budgets:       budgets,
		Categories:    categories,
		TotalIncome:   snap.TotalIncome,
		TotalExpenses: snap.TotalExpenses,
		Balance:       snap.Balance,
		Alerts:        toAlertsJSON(snap.Alerts),
	})
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	report, err := s.ledger.MonthlySummary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	type dayJSON struct {
		Day        string           `json:"day"`
		ByCategory map[string]int64 `json:"by_category_cents"`
	}
	days := make([]dayJSON, 0, len(report.Days))
	for _, d := range report.Days {
		days = append(days, dayJSON{
			Day:        d.Day.Format("2006-01-02"),
			ByCategory: d.ByCategory,
		})
	}

	writeJSON(w, http.StatusOK, struct {
		Month            string           `json:"month"`
		CategoryExpenses map[string]int64 `json:"category_expenses_cents"`
		Days             []dayJSON        `json:"days"`
		Alerts           []alertJSON      `json:"alerts"`
	}{
		Month:            report.Month,
		CategoryExpenses: report.CategoryExpenses,
		Days:             days,
		Alerts:           toAlertsJSON(report.Alerts),
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind        string `json:"kind"`
		Amount      string `json:"amount"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Date        string `json:"date"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	tx, err := s.ledger.AddTransaction(r.Context(), req.Kind, req.Amount,
		sanitizeInput(req.Category), sanitizeInput(req.Description), req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionJSON(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, r, core.ErrTransactionNotFound)
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
		Amount   string `json:"amount"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	budget, err := s.ledger.SetBudget(r.Context(), sanitizeInput(req.Category), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetJSON(budget))
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	cat, err := s.ledger.AddCategory(r.Context(), sanitizeInput(req.Name))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}{ID: cat.ID, Name: cat.Name})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	if err := s.accounts.Login(r.Context(), req.Email, sanitizeInput(req.Username)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
	}{Message: "OTP sent to your email"})
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	token, err := s.accounts.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, s.SessionCookie(token, s.sessions.SessionDuration()))
	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
	}{Message: "login successful"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	if claims := sessionClaims(r); claims != nil {
		slog.InfoContext(r.Context(), "User logged out", "email", claims.Email)
	}
	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
	}{Message: "logged out"})
}
