package agents

import (
	"context"

	"finsight/internal/analytics"
	"finsight/internal/audit"
)

// MetricsSource is the slice of the metrics provider the pipeline consumes.
type MetricsSource interface {
	Cashflow(ctx context.Context, userID string, months int) analytics.CashflowResult
	BurnRate(ctx context.Context, userID string) analytics.BurnRateResult
	NetWorth(ctx context.Context, userID string) analytics.NetWorthResult
	PortfolioSummary(ctx context.Context, userID string) analytics.PortfolioResult
}

// Ingestion gathers all metrics for a user. It always succeeds: empty
// sub-results are valid and simply carry no evidence.
type Ingestion struct {
	Metrics MetricsSource
	Audit   *audit.Log
}

func (s *Ingestion) Run(ctx context.Context, runID, userID string) IngestionOutput {
	cashflow := s.Metrics.Cashflow(ctx, userID, 6)
	burnRate := s.Metrics.BurnRate(ctx, userID)
	netWorth := s.Metrics.NetWorth(ctx, userID)
	portfolio := s.Metrics.PortfolioSummary(ctx, userID)

	out := IngestionOutput{
		Cashflow:  cashflow,
		BurnRate:  burnRate,
		NetWorth:  netWorth,
		Portfolio: portfolio,
		EvidenceIDs: concatEvidence(
			cashflow.EvidenceIDs,
			burnRate.EvidenceIDs,
			netWorth.EvidenceIDs,
			portfolio.EvidenceIDs,
		),
	}
	s.Audit.Append(runID, "ingestion", "gather_metrics", map[string]any{"user_id": userID}, out, out.EvidenceIDs)
	return out
}
