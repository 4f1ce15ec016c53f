package core

import (
	"sort"
	"time"
)

// LedgerSummary is the reduction of a transaction window for the dashboard.
// Amounts are cents; CategoryExpenses only ever contains expense kinds.
type LedgerSummary struct {
	TotalIncome      int64
	TotalExpenses    int64
	Balance          int64 // TotalIncome - TotalExpenses
	CategoryExpenses map[string]int64
}

// DayExpenses holds per-category expense sums for one calendar day.
type DayExpenses struct {
	Day        time.Time // truncated to midnight in the day's location
	ByCategory map[string]int64
}

// MonthlySummary is the reduction of a calendar-month window.
type MonthlySummary struct {
	CategoryExpenses map[string]int64
	Days             []DayExpenses // descending by day
}

// Summarize reduces a transaction set to income/expense totals, balance and
// per-category expense sums. A pure function: empty input yields zero totals
// and an empty map.
func Summarize(txs []Transaction) LedgerSummary {
	s := LedgerSummary{CategoryExpenses: make(map[string]int64)}
	for _, t := range txs {
		switch t.Kind {
		case Income:
			s.TotalIncome += t.Amount.Cents
		case Expense:
			s.TotalExpenses += t.Amount.Cents
			s.CategoryExpenses[t.Category] += t.Amount.Cents
		}
	}
	s.Balance = s.TotalIncome - s.TotalExpenses
	return s
}

// SummarizeMonth buckets expenses by category and by calendar day. Days are
// returned in descending order; income transactions never contribute.
func SummarizeMonth(txs []Transaction) MonthlySummary {
	m := MonthlySummary{CategoryExpenses: make(map[string]int64)}
	byDay := make(map[time.Time]map[string]int64)
	for _, t := range txs {
		if t.Kind != Expense {
			continue
		}
		m.CategoryExpenses[t.Category] += t.Amount.Cents

		day := truncateToDay(t.Date)
		if byDay[day] == nil {
			byDay[day] = make(map[string]int64)
		}
		byDay[day][t.Category] += t.Amount.Cents
	}

	m.Days = make([]DayExpenses, 0, len(byDay))
	for day, cats := range byDay {
		m.Days = append(m.Days, DayExpenses{Day: day, ByCategory: cats})
	}
	sort.Slice(m.Days, func(i, j int) bool {
		return m.Days[i].Day.After(m.Days[j].Day)
	})
	return m
}

// TrailingWindowStart returns the lower bound of the dashboard window:
// 60 days before now.
func TrailingWindowStart(now time.Time) time.Time {
	return now.AddDate(0, 0, -60)
}

// MonthWindow returns the calendar-month window containing now: the first
// instant of the month through one microsecond before the next month.
func MonthWindow(now time.Time) (start, end time.Time) {
	start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end = start.AddDate(0, 1, 0).Add(-time.Microsecond)
	return start, end
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
