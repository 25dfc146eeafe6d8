package agents

import (
	"context"
	"fmt"

	"finsight/internal/audit"
	"finsight/internal/textgen"
)

const portfolioPromptTmpl = `Analyze this investment portfolio:

Holdings:
%s

Total Value: $%.2f
Total Cost: $%.2f
Total Gain/Loss: $%.2f
Return: %.1f%%

Provide:
1. Assessment of diversification
2. Any concentration risks
3. Performance observations

Keep brief (3-4 bullet points). Only reference the provided holdings.`

const portfolioSystem = "You are a portfolio analyst. Only discuss the specific holdings provided. Never mention securities not in the list."

// PortfolioAnalyst analyzes allocation and performance. It consumes only the
// portfolio summary, so its evidence is exactly the portfolio subset.
type PortfolioAnalyst struct {
	Text  textgen.TextClient
	Audit *audit.Log
}

func (s *PortfolioAnalyst) Run(ctx context.Context, runID string, metrics IngestionOutput) PortfolioAnalysis {
	portfolio := metrics.Portfolio
	prompt := fmt.Sprintf(portfolioPromptTmpl,
		jsonBlock(portfolio.Holdings),
		portfolio.TotalValue,
		portfolio.TotalCost,
		portfolio.TotalGainLoss,
		portfolio.TotalReturnPct,
	)
	analysis := s.Text.Generate(ctx, prompt, portfolioSystem)

	out := PortfolioAnalysis{
		Analysis:       analysis,
		TotalValue:     portfolio.TotalValue,
		TotalReturnPct: portfolio.TotalReturnPct,
		NumHoldings:    len(portfolio.Holdings),
		EvidenceIDs:    portfolio.EvidenceIDs,
	}
	s.Audit.Append(runID, "portfolio_analyst", "analyze_portfolio", map[string]any{"num_holdings": len(portfolio.Holdings)}, out, out.EvidenceIDs)
	return out
}
