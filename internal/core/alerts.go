package core

import "math"

// BudgetAlert reports a budget whose current spend has reached its alert
// threshold.
type BudgetAlert struct {
	Category    string
	BudgetCents int64
	SpentCents  int64
}

// EvaluateAlerts flags every budget where spend >= amount * alert_threshold.
// The comparison is non-strict and the threshold is rounded to the nearest
// cent first, so hitting the boundary exactly fires the alert. Output order
// follows budget order; budgets with no recorded spend count as zero. Pure:
// callers must re-evaluate after every ledger mutation.
func EvaluateAlerts(budgets []Budget, categoryExpenses map[string]int64) []BudgetAlert {
	var alerts []BudgetAlert
	for _, b := range budgets {
		spent := categoryExpenses[b.Category]
		threshold := int64(math.Round(float64(b.Amount.Cents) * b.AlertThreshold))
		if spent >= threshold {
			alerts = append(alerts, BudgetAlert{
				Category:    b.Category,
				BudgetCents: b.Amount.Cents,
				SpentCents:  spent,
			})
		}
	}
	return alerts
}
