package miner

import (
	"context"
	"fmt"
)

// mineAnomalies compares the most recent month against the trailing-window
// average. Requires at least 3 months of history.
func (e *Engine) mineAnomalies(ctx context.Context, userID string) []Insight {
	cashflow := e.Metrics.Cashflow(ctx, userID, 6)
	months := cashflow.Data
	if len(months) < 3 {
		return nil
	}

	var sumIncome, sumExpense float64
	for _, m := range months {
		sumIncome += m.Income
		sumExpense += m.Expenses
	}
	avgIncome := sumIncome / float64(len(months))
	avgExpense := sumExpense / float64(len(months))

	latest := months[0]
	var insights []Insight

	if avgIncome > 0 {
		incomeDiffPct := pct(latest.Income-avgIncome, avgIncome)
		if incomeDiffPct > 30 {
			insights = append(insights, Insight{
				ID:       "anomaly-income-spike",
				Type:     "opportunity",
				Category: "income",
				Title:    fmt.Sprintf("Income Spike: +%.0f%% This Month", incomeDiffPct),
				Description: fmt.Sprintf("This month's income is %s, significantly above your %s average. Great time to boost savings!",
					money(latest.Income), money(avgIncome)),
				Impact:     "high",
				Action:     "Save or invest the extra income",
				Evidence:   "cashflow-data",
				Confidence: 0.9,
			})
		} else if incomeDiffPct < -30 {
			insights = append(insights, Insight{
				ID:          "anomaly-income-drop",
				Type:        "warning",
				Category:    "income",
				Title:       fmt.Sprintf("Income Drop: %.0f%%", incomeDiffPct),
				Description: "This month's income is below average. Make sure this isn't a recurring issue.",
				Impact:      "high",
				Action:      "Review income sources",
				Evidence:    "cashflow-data",
				Confidence:  0.85,
			})
		}
	}

	if avgExpense > 0 {
		expenseDiffPct := pct(latest.Expenses-avgExpense, avgExpense)
		if expenseDiffPct > 25 {
			insights = append(insights, Insight{
				ID:       "anomaly-expense-spike",
				Type:     "warning",
				Category: "spending",
				Title:    fmt.Sprintf("Expense Spike: +%.0f%% This Month", expenseDiffPct),
				Description: fmt.Sprintf("Spending of %s is above your %s average. Check for one-time expenses.",
					money(latest.Expenses), money(avgExpense)),
				Impact:     "medium",
				Action:     "Review recent transactions",
				Evidence:   "cashflow-data",
				Confidence: 0.85,
			})
		}
	}

	return insights
}
