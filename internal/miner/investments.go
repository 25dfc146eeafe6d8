package miner

import (
	"context"
	"fmt"
	"math"
)

// mineInvestments flags concentration above 30% of total value (strict),
// notable total returns, and thin diversification.
func (e *Engine) mineInvestments(ctx context.Context, userID string) []Insight {
	portfolio := e.Metrics.PortfolioSummary(ctx, userID)
	if len(portfolio.Holdings) == 0 {
		return nil
	}

	var insights []Insight

	for _, h := range portfolio.Holdings {
		if portfolio.TotalValue <= 0 {
			continue
		}
		weight := pct(h.MarketValue, portfolio.TotalValue)
		if weight > 30 {
			symbol := h.Symbol
			if symbol == "" {
				symbol = "Unknown"
			}
			insights = append(insights, Insight{
				ID:          "invest-concentration-" + symbol,
				Type:        "warning",
				Category:    "investments",
				Title:       "High Concentration in " + symbol,
				Description: fmt.Sprintf("%s represents %.0f%% of your portfolio. Consider diversifying.", symbol, weight),
				Impact:      "high",
				Action:      "Rebalance portfolio",
				Evidence:    "portfolio-data",
				Confidence:  0.9,
			})
		}
	}

	totalReturn := portfolio.TotalReturnPct
	if totalReturn > 15 {
		insights = append(insights, Insight{
			ID:          "invest-performance-great",
			Type:        "achievement",
			Category:    "investments",
			Title:       fmt.Sprintf("Strong Portfolio Performance: %.1f%%", totalReturn),
			Description: fmt.Sprintf("Your portfolio is up %.1f%%. Consider rebalancing to lock in gains.", totalReturn),
			Impact:      "medium",
			Evidence:    "portfolio-data",
			Confidence:  0.9,
		})
	} else if totalReturn < -10 {
		insights = append(insights, Insight{
			ID:          "invest-performance-down",
			Type:        "tip",
			Category:    "investments",
			Title:       fmt.Sprintf("Portfolio Down %.1f%%", math.Abs(totalReturn)),
			Description: "Stay the course with long-term investments. Consider adding to positions if you have spare cash.",
			Impact:      "medium",
			Action:      "Review investment timeline",
			Evidence:    "portfolio-data",
			Confidence:  0.85,
		})
	}

	if len(portfolio.Holdings) < 5 {
		insights = append(insights, Insight{
			ID:          "invest-diversify",
			Type:        "tip",
			Category:    "investments",
			Title:       "Consider More Diversification",
			Description: fmt.Sprintf("You have %d holdings. Consider adding index funds or ETFs for broader exposure.", len(portfolio.Holdings)),
			Impact:      "medium",
			Action:      "Research low-cost ETFs",
			Evidence:    "portfolio-data",
			Confidence:  0.8,
		})
	}

	return insights
}
