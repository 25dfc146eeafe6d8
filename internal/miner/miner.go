// Package miner derives discrete, typed insight records directly from
// metrics. All rules are deterministic; only the spending miner optionally
// consults the text service, and it degrades to a generic insight when the
// response is not machine-checkable.
package miner

import (
	"context"
	"fmt"
	"log"
	"sort"

	"finsight/internal/analytics"
	"finsight/internal/textgen"
)

// Insight is one mined finding. Immutable once produced; lives only for the
// duration of a mining response.
type Insight struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`     // opportunity, warning, achievement, tip, pattern, anomaly
	Category    string  `json:"category"` // spending, savings, investments, debt, income
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Impact      string  `json:"impact"` // high, medium, low
	Action      string  `json:"action,omitempty"`
	Evidence    string  `json:"evidence,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// MetricsSource is the slice of the metrics provider the miners consume.
type MetricsSource interface {
	Cashflow(ctx context.Context, userID string, months int) analytics.CashflowResult
	PortfolioSummary(ctx context.Context, userID string) analytics.PortfolioResult
	CategorySpend(ctx context.Context, userID string, months int) analytics.CategorySpendResult
}

type Engine struct {
	Metrics MetricsSource
	Text    textgen.TextClient
}

// DefaultFocus is the set of miners evaluated when the request names none.
var DefaultFocus = []string{"spending", "savings", "investments", "anomalies"}

// Mine evaluates the enabled miners and returns all insights sorted by impact
// rank (high before medium before low), then confidence descending. Each
// miner fails soft: a panic inside one yields zero insights from it.
func (e *Engine) Mine(ctx context.Context, userID string, focusAreas []string) []Insight {
	focus := focusAreas
	if len(focus) == 0 {
		focus = DefaultFocus
	}

	all := []Insight{}
	if hasFocus(focus, "spending") {
		all = append(all, e.safeMine("spending", func() []Insight { return e.mineSpending(ctx, userID) })...)
	}
	if hasFocus(focus, "savings") {
		all = append(all, e.safeMine("savings", func() []Insight { return e.mineSavings(ctx, userID) })...)
	}
	if hasFocus(focus, "investments") {
		all = append(all, e.safeMine("investments", func() []Insight { return e.mineInvestments(ctx, userID) })...)
	}
	if hasFocus(focus, "anomalies") {
		all = append(all, e.safeMine("anomalies", func() []Insight { return e.mineAnomalies(ctx, userID) })...)
	}

	SortInsights(all)
	return all
}

func (e *Engine) safeMine(name string, fn func() []Insight) (out []Insight) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("miner %s: %v", name, r)
			out = nil
		}
	}()
	return fn()
}

func hasFocus(focus []string, area string) bool {
	for _, f := range focus {
		if f == area || f == "all" {
			return true
		}
	}
	return false
}

var impactRank = map[string]int{"high": 0, "medium": 1, "low": 2}

// SortInsights orders by impact rank ascending, then confidence descending.
// This ordering is part of the mining contract.
func SortInsights(insights []Insight) {
	sort.SliceStable(insights, func(i, j int) bool {
		ri, ok := impactRank[insights[i].Impact]
		if !ok {
			ri = 2
		}
		rj, ok := impactRank[insights[j].Impact]
		if !ok {
			rj = 2
		}
		if ri != rj {
			return ri < rj
		}
		return insights[i].Confidence > insights[j].Confidence
	})
}

func pct(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

func money(v float64) string {
	return fmt.Sprintf("$%.0f", v)
}
