package miner

import (
	"context"
	"fmt"
)

// QuickInsight is a single-glance take on the latest month. No text
// generation involved.
type QuickInsight struct {
	Insight     string   `json:"insight"`
	Type        string   `json:"type"`
	SavingsRate *float64 `json:"savings_rate,omitempty"`
	Action      string   `json:"action,omitempty"`
	Evidence    []string `json:"evidence,omitempty"`
}

// Quick classifies the most recent month's savings rate. With no cashflow
// data it returns guidance rather than an error.
func (e *Engine) Quick(ctx context.Context, userID string) QuickInsight {
	cashflow := e.Metrics.Cashflow(ctx, userID, 1)
	if len(cashflow.Data) == 0 {
		return QuickInsight{
			Insight: "Start by adding your accounts and transactions to get personalized insights!",
			Type:    "tip",
			Action:  "Add an account",
		}
	}

	latest := cashflow.Data[0]
	rate := 0.0
	if latest.Income > 0 {
		rate = (latest.Income - latest.Expenses) / latest.Income * 100
	}

	out := QuickInsight{
		SavingsRate: &rate,
		Evidence:    []string{"cashflow-data"},
	}
	switch {
	case rate >= 20:
		out.Insight = fmt.Sprintf("Great job! You're saving %.0f%% of your income this month.", rate)
		out.Type = "achievement"
	case rate >= 0:
		out.Insight = fmt.Sprintf("You're saving %.0f%% of your income. Try to reach 20%% for long-term wealth building.", rate)
		out.Type = "tip"
	default:
		out.Insight = "You're spending more than you earn. Let's review your expenses together."
		out.Type = "warning"
	}
	return out
}
