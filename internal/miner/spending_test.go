package miner

import (
	"context"
	"strings"
	"testing"

	"finsight/internal/analytics"
	"finsight/internal/tester"
	"finsight/internal/textgen"
)

func spendMetrics() *fakeMetrics {
	return &fakeMetrics{
		category: analytics.CategorySpendResult{
			Data: []analytics.CategoryTotal{
				{Name: "Groceries", Total: 600},
				{Name: "Dining", Total: 900},
				{Name: "Rent", Total: 2000},
				{Name: "Transport", Total: 200},
				{Name: "Utilities", Total: 150},
				{Name: "Hobbies", Total: 100},
			},
			EvidenceIDs: []string{"category_spend_2024-05"},
		},
		cashflow: months(analytics.MonthFlow{Month: "2024-05", Income: 5000, Expenses: 3850}),
	}
}

func TestSpendingParsesStructuredInsights(t *testing.T) {
	reply := `[
		{"title": "High dining spend", "description": "Dining is 23% of expenses", "impact": "high", "action": "Set a dining budget"},
		{"title": "", "description": "second", "impact": "", "action": ""},
		{"title": "t3", "description": "d3", "impact": "low"}
	]`
	e := engine(spendMetrics(), reply)

	insights := e.mineSpending(context.Background(), "u1")
	tester.Len(t, insights, 3)
	tester.Eq(t, insights[0].ID, "spend-1")
	tester.Eq(t, insights[0].Type, "pattern")
	tester.Eq(t, insights[0].Impact, "high")
	tester.Eq(t, insights[0].Confidence, 0.85)
	tester.Eq(t, insights[0].Evidence, "category-spend-data")
	// Missing fields fall back to defaults.
	tester.Eq(t, insights[1].Title, "Spending Pattern")
	tester.Eq(t, insights[1].Impact, "medium")
}

func TestSpendingCapsParsedInsightsAtFive(t *testing.T) {
	reply := `[{"title":"1"},{"title":"2"},{"title":"3"},{"title":"4"},{"title":"5"},{"title":"6"},{"title":"7"}]`
	e := engine(spendMetrics(), reply)
	tester.Len(t, e.mineSpending(context.Background(), "u1"), 5)
}

func TestSpendingFallsBackOnUnparseableReply(t *testing.T) {
	e := engine(spendMetrics(), "Sure! Here are some thoughts about your spending: "+strings.Repeat("x", 600))

	insights := e.mineSpending(context.Background(), "u1")
	tester.Len(t, insights, 1)
	tester.Eq(t, insights[0].ID, "spend-analysis")
	tester.Eq(t, insights[0].Type, "tip")
	tester.Eq(t, insights[0].Confidence, 0.7)
	tester.Eq(t, len(insights[0].Description), 500)
}

func TestSpendingPromptRanksTopFiveCategories(t *testing.T) {
	var captured string
	text := &capturingText{reply: "not json"}
	e := &Engine{Metrics: spendMetrics(), Text: text}

	e.mineSpending(context.Background(), "u1")
	captured = text.lastPrompt
	tester.True(t, strings.Contains(captured, "Rent"), "top category present")
	tester.False(t, strings.Contains(captured, "Hobbies"), "sixth category must be cut")
	// Highest total appears before lower ones.
	tester.True(t, strings.Index(captured, "Rent") < strings.Index(captured, "Dining"))
	tester.True(t, strings.Index(captured, "Dining") < strings.Index(captured, "Groceries"))
}

func TestSpendingSkipsWithoutCategoryData(t *testing.T) {
	e := engine(&fakeMetrics{}, "whatever")
	tester.Len(t, e.mineSpending(context.Background(), "u1"), 0)
}

func TestMineAppliesFocusAndOrdering(t *testing.T) {
	metrics := spendMetrics()
	metrics.portfolio = analytics.PortfolioResult{
		Holdings:   []analytics.Holding{{Symbol: "AAPL", MarketValue: 95}, {Symbol: "VTI", MarketValue: 5}},
		TotalValue: 100,
	}
	e := engine(metrics, "not json")

	all := e.Mine(context.Background(), "u1", nil)
	tester.True(t, len(all) > 2, "default focus mines several areas")
	for i := 1; i < len(all); i++ {
		ri, rj := rankOf(all[i-1]), rankOf(all[i])
		tester.True(t, ri < rj || (ri == rj && all[i-1].Confidence >= all[i].Confidence), "sorted by impact then confidence")
	}

	only := e.Mine(context.Background(), "u1", []string{"investments"})
	for _, in := range only {
		tester.Eq(t, in.Category, "investments")
	}
}

func rankOf(in Insight) int {
	r, ok := impactRank[in.Impact]
	if !ok {
		return 2
	}
	return r
}

type capturingText struct {
	reply      string
	lastPrompt string
}

func (c *capturingText) Generate(ctx context.Context, prompt, system string) string {
	c.lastPrompt = prompt
	return c.reply
}

var _ textgen.TextClient = (*capturingText)(nil)
