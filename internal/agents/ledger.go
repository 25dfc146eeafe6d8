package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"finsight/internal/audit"
	"finsight/internal/textgen"
)

const ledgerPromptTmpl = `Analyze these financial metrics and identify patterns:

Cashflow (last 6 months):
%s

Burn Rate:
- Average: $%.2f/month
- Range: $%.2f - $%.2f

Identify:
1. Any concerning spending patterns
2. Month-over-month trends
3. Categories that might need attention

Keep response brief (3-5 bullet points). Reference the specific numbers provided.`

const ledgerSystem = "You are a financial analyst. Only reference numbers explicitly provided. Never invent statistics."

// LedgerIntel analyzes spending patterns from the ingested cashflow and burn
// rate. Evidence passes through from ingestion unmodified.
type LedgerIntel struct {
	Text  textgen.TextClient
	Audit *audit.Log
}

func (s *LedgerIntel) Run(ctx context.Context, runID string, metrics IngestionOutput) LedgerAnalysis {
	prompt := fmt.Sprintf(ledgerPromptTmpl,
		jsonBlock(metrics.Cashflow.Data),
		metrics.BurnRate.AvgBurnRate,
		metrics.BurnRate.MinMonth,
		metrics.BurnRate.MaxMonth,
	)
	analysis := s.Text.Generate(ctx, prompt, ledgerSystem)

	out := LedgerAnalysis{
		Analysis:       analysis,
		AvgBurnRate:    metrics.BurnRate.AvgBurnRate,
		MonthsAnalyzed: len(metrics.Cashflow.Data),
		EvidenceIDs:    metrics.EvidenceIDs,
	}
	s.Audit.Append(runID, "ledger_intel", "analyze_spending", map[string]any{"metrics": "provided"}, out, out.EvidenceIDs)
	return out
}

func jsonBlock(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(b)
}
