package miner

import (
	"context"
	"fmt"
	"math"
)

// savingsRate is one month's savings rate, kept in the cashflow's
// newest-first order.
type savingsRate struct {
	Month string
	Rate  float64
	Saved float64
}

// mineSavings computes the per-month savings rate over the trailing window,
// buckets the average into fixed tiers, and adds a trend insight when the
// newest and oldest rates diverge by more than 5 percentage points.
func (e *Engine) mineSavings(ctx context.Context, userID string) []Insight {
	cashflow := e.Metrics.Cashflow(ctx, userID, 6)
	if len(cashflow.Data) == 0 {
		return nil
	}

	var rates []savingsRate
	for _, month := range cashflow.Data {
		if month.Income <= 0 {
			continue
		}
		rate := (month.Income - month.Expenses) / month.Income * 100
		rates = append(rates, savingsRate{Month: month.Month, Rate: rate, Saved: month.Income - month.Expenses})
	}
	if len(rates) == 0 {
		return nil
	}

	var sum float64
	for _, r := range rates {
		sum += r.Rate
	}
	avg := sum / float64(len(rates))

	var insights []Insight
	switch {
	case avg >= 20:
		insights = append(insights, Insight{
			ID:          "savings-excellent",
			Type:        "achievement",
			Category:    "savings",
			Title:       fmt.Sprintf("Excellent Savings Rate: %.0f%%", avg),
			Description: fmt.Sprintf("You're saving above the recommended 20%% rate. Your 6-month average is %.1f%%. Keep it up!", avg),
			Impact:      "high",
			Action:      "Consider increasing investments",
			Evidence:    "cashflow-data",
			Confidence:  0.95,
		})
	case avg >= 10:
		insights = append(insights, Insight{
			ID:          "savings-good",
			Type:        "tip",
			Category:    "savings",
			Title:       fmt.Sprintf("Good Progress: %.0f%% Savings Rate", avg),
			Description: fmt.Sprintf("Your average savings rate is %.1f%%. Try to reach 20%% for faster wealth building.", avg),
			Impact:      "medium",
			Action:      "Find $200/month to save more",
			Evidence:    "cashflow-data",
			Confidence:  0.9,
		})
	case avg >= 0:
		insights = append(insights, Insight{
			ID:          "savings-low",
			Type:        "warning",
			Category:    "savings",
			Title:       fmt.Sprintf("Low Savings Rate: %.0f%%", avg),
			Description: fmt.Sprintf("Your savings rate of %.1f%% is below target. Consider reviewing expenses.", avg),
			Impact:      "high",
			Action:      "Use the 50/30/20 budget rule",
			Evidence:    "cashflow-data",
			Confidence:  0.9,
		})
	default:
		insights = append(insights, Insight{
			ID:          "savings-negative",
			Type:        "warning",
			Category:    "savings",
			Title:       "Spending Exceeds Income",
			Description: fmt.Sprintf("You're spending %.1f%% more than you earn on average. This is unsustainable.", math.Abs(avg)),
			Impact:      "high",
			Action:      "Create an emergency budget",
			Evidence:    "cashflow-data",
			Confidence:  0.95,
		})
	}

	// Trend across the window: newest rate minus oldest rate.
	if len(rates) > 1 {
		trend := rates[0].Rate - rates[len(rates)-1].Rate
		if trend > 5 {
			insights = append(insights, Insight{
				ID:          "savings-trend-up",
				Type:        "achievement",
				Category:    "savings",
				Title:       "Savings Rate Improving",
				Description: fmt.Sprintf("Your savings rate increased by %.1f%% over the last 6 months. Great progress!", trend),
				Impact:      "medium",
				Evidence:    "cashflow-data",
				Confidence:  0.85,
			})
		} else if trend < -5 {
			insights = append(insights, Insight{
				ID:          "savings-trend-down",
				Type:        "warning",
				Category:    "savings",
				Title:       "Savings Rate Declining",
				Description: fmt.Sprintf("Your savings rate dropped by %.1f%% over 6 months. Review recent expenses.", math.Abs(trend)),
				Impact:      "high",
				Action:      "Identify new expenses to cut",
				Evidence:    "cashflow-data",
				Confidence:  0.85,
			})
		}
	}

	return insights
}
