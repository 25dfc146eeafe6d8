package agents

import (
	"context"
	"testing"

	"finsight/internal/analytics"
	"finsight/internal/audit"
	"finsight/internal/tester"
	"finsight/internal/textgen"
)

type fakeMetrics struct {
	cashflow  analytics.CashflowResult
	burnRate  analytics.BurnRateResult
	netWorth  analytics.NetWorthResult
	portfolio analytics.PortfolioResult
}

func (f *fakeMetrics) Cashflow(ctx context.Context, userID string, months int) analytics.CashflowResult {
	return f.cashflow
}
func (f *fakeMetrics) BurnRate(ctx context.Context, userID string) analytics.BurnRateResult {
	return f.burnRate
}
func (f *fakeMetrics) NetWorth(ctx context.Context, userID string) analytics.NetWorthResult {
	return f.netWorth
}
func (f *fakeMetrics) PortfolioSummary(ctx context.Context, userID string) analytics.PortfolioResult {
	return f.portfolio
}

func populatedMetrics() *fakeMetrics {
	return &fakeMetrics{
		cashflow: analytics.CashflowResult{
			Data:        []analytics.MonthFlow{{Month: "2024-05", Income: 5000, Expenses: 3000, Net: 2000}},
			EvidenceIDs: []string{"cashflow_q2"},
		},
		burnRate: analytics.BurnRateResult{AvgBurnRate: 3000, MinMonth: 2800, MaxMonth: 3400, EvidenceIDs: []string{"burn_rate_u1"}},
		netWorth: analytics.NetWorthResult{NetWorth: 42000, EvidenceIDs: []string{"net_worth_u1"}},
		portfolio: analytics.PortfolioResult{
			Holdings:    []analytics.Holding{{Symbol: "VTI", MarketValue: 9000}},
			TotalValue:  9000,
			EvidenceIDs: []string{"holding_VTI"},
		},
	}
}

func TestIngestionUnionsAllEvidence(t *testing.T) {
	log := audit.NewLog()
	s := &Ingestion{Metrics: populatedMetrics(), Audit: log}
	out := s.Run(context.Background(), "r1", "u1")
	tester.Eq(t, out.EvidenceIDs, []string{"cashflow_q2", "burn_rate_u1", "net_worth_u1", "holding_VTI"})

	steps := log.Steps("r1")
	tester.Len(t, steps, 1)
	tester.Eq(t, steps[0].Agent, "ingestion")
}

func TestIngestionSucceedsWithNoData(t *testing.T) {
	s := &Ingestion{Metrics: &fakeMetrics{}, Audit: audit.NewLog()}
	out := s.Run(context.Background(), "r1", "u1")
	tester.Len(t, out.EvidenceIDs, 0)
	tester.Len(t, out.Cashflow.Data, 0)
}

func TestLedgerIntelPassesIngestionEvidenceThrough(t *testing.T) {
	s := &LedgerIntel{Text: &textgen.SoftFake{Fake: textgen.Fake{Reply: "spending is steady"}}, Audit: audit.NewLog()}
	metrics := (&Ingestion{Metrics: populatedMetrics(), Audit: audit.NewLog()}).Run(context.Background(), "r1", "u1")

	out := s.Run(context.Background(), "r1", metrics)
	tester.Eq(t, out.Analysis, "spending is steady")
	tester.Eq(t, out.EvidenceIDs, metrics.EvidenceIDs)
	tester.Eq(t, out.AvgBurnRate, 3000.0)
	tester.Eq(t, out.MonthsAnalyzed, 1)
}

func TestPortfolioAnalystUsesOnlyPortfolioEvidence(t *testing.T) {
	s := &PortfolioAnalyst{Text: &textgen.SoftFake{Fake: textgen.Fake{Reply: "concentrated"}}, Audit: audit.NewLog()}
	metrics := (&Ingestion{Metrics: populatedMetrics(), Audit: audit.NewLog()}).Run(context.Background(), "r1", "u1")

	out := s.Run(context.Background(), "r1", metrics)
	tester.Eq(t, out.EvidenceIDs, []string{"holding_VTI"})
	tester.Eq(t, out.NumHoldings, 1)
}

func TestCoachBlocksWithoutGrounding(t *testing.T) {
	text := &textgen.SoftFake{Fake: textgen.Fake{Reply: "should not appear"}}
	log := audit.NewLog()
	s := &Coach{Text: text, Audit: log}

	out := s.Run(context.Background(), "r1", LedgerAnalysis{}, PortfolioAnalysis{}, GroundingVerdict{
		IsGrounded: false,
		Verdict:    "FAIL: ledger_intel: analysis present but no evidence IDs",
	})
	tester.True(t, out.Blocked)
	tester.Eq(t, out.Reason, "NOT GROUNDED: FAIL: ledger_intel: analysis present but no evidence IDs")
	tester.Len(t, out.EvidenceIDs, 0)
	tester.Eq(t, text.Calls(), 0, "blocked coach must not invoke the text service")
	tester.Len(t, log.Steps("r1"), 0)
}

func TestCoachGeneratesWhenGrounded(t *testing.T) {
	text := &textgen.SoftFake{Fake: textgen.Fake{Reply: "- [SAVE]: automate transfers"}}
	s := &Coach{Text: text, Audit: audit.NewLog()}

	out := s.Run(context.Background(), "r1", LedgerAnalysis{Analysis: "ok"}, PortfolioAnalysis{Analysis: "ok"}, GroundingVerdict{
		IsGrounded:  true,
		Verdict:     "PASS",
		EvidenceIDs: []string{"e1"},
	})
	tester.False(t, out.Blocked)
	tester.Eq(t, out.Recommendations, "- [SAVE]: automate transfers")
	tester.Eq(t, out.EvidenceIDs, []string{"e1"})
	tester.Eq(t, text.Calls(), 1)
}

func TestNarratorFallsBackWithoutGrounding(t *testing.T) {
	text := &textgen.SoftFake{Fake: textgen.Fake{Reply: "should not appear"}}
	s := &Narrator{Text: text, Audit: audit.NewLog()}

	out := s.Run(context.Background(), "r1", LedgerAnalysis{}, PortfolioAnalysis{}, CoachOutput{}, GroundingVerdict{
		IsGrounded: false,
		Verdict:    "FAIL: ",
	})
	tester.True(t, len(out.Summary) > 0, "fallback summary must explain the withheld digest")
	tester.Len(t, out.EvidenceIDs, 0)
	tester.Eq(t, text.Calls(), 0, "blocked narrator must not invoke the text service")
}
