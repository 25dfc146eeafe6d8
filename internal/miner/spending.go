package miner

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

const spendingPromptTmpl = `Analyze these spending patterns and identify actionable insights:

Top Spending Categories (last 3 months):
%s

Monthly Cashflow Trend:
%s

For each insight, provide:
1. A specific observation about spending
2. Why it matters (impact)
3. One actionable recommendation

Format as JSON array with objects containing: title, description, impact (high/medium/low), action
Return 3-5 insights. Be specific with numbers from the data provided.`

const spendingSystem = `You are a financial analyst. Return ONLY valid JSON array.
Example: [{"title": "High dining spend", "description": "Dining out accounts for 25% of expenses", "impact": "high", "action": "Set a $300/month dining budget"}]`

const spendingFallbackLimit = 500

type spendingItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Action      string `json:"action"`
}

// mineSpending ranks the top spending categories and asks the text service to
// phrase structured insights. When the response does not parse as the required
// JSON array, a single generic insight is built from the raw response at
// reduced confidence.
func (e *Engine) mineSpending(ctx context.Context, userID string) []Insight {
	categorySpend := e.Metrics.CategorySpend(ctx, userID, 3)
	cashflow := e.Metrics.Cashflow(ctx, userID, 6)

	if len(categorySpend.Data) == 0 {
		return nil
	}

	ranked := make([]spendingCategory, 0, len(categorySpend.Data))
	for _, c := range categorySpend.Data {
		ranked = append(ranked, spendingCategory{Name: c.Name, Total: c.Total})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Total > ranked[j].Total })
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}

	prompt := fmt.Sprintf(spendingPromptTmpl, jsonBlock(ranked), jsonBlock(cashflow.Data))
	response := e.Text.Generate(ctx, prompt, spendingSystem)

	var parsed []spendingItem
	if err := json.Unmarshal([]byte(response), &parsed); err == nil && len(parsed) > 0 {
		if len(parsed) > 5 {
			parsed = parsed[:5]
		}
		insights := make([]Insight, 0, len(parsed))
		for i, item := range parsed {
			title := item.Title
			if title == "" {
				title = "Spending Pattern"
			}
			impact := item.Impact
			if impact == "" {
				impact = "medium"
			}
			insights = append(insights, Insight{
				ID:          fmt.Sprintf("spend-%d", i+1),
				Type:        "pattern",
				Category:    "spending",
				Title:       title,
				Description: item.Description,
				Impact:      impact,
				Action:      item.Action,
				Evidence:    "category-spend-data",
				Confidence:  0.85,
			})
		}
		return insights
	}

	description := response
	if len(description) > spendingFallbackLimit {
		description = description[:spendingFallbackLimit]
	}
	if description == "" {
		description = "Review your top spending categories for savings opportunities."
	}
	return []Insight{{
		ID:          "spend-analysis",
		Type:        "tip",
		Category:    "spending",
		Title:       "Spending Analysis",
		Description: description,
		Impact:      "medium",
		Action:      "Review expenses in Ledger",
		Evidence:    "category-spend-data",
		Confidence:  0.7,
	}}
}

type spendingCategory struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

func jsonBlock(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(b)
}
