// Package agents implements the evidence-grounded analysis pipeline: typed
// stage outputs, the grounding gate, and the daily-digest orchestrator.
//
// Evidence discipline: a stage's evidence ids are exactly the identifiers
// attached to the upstream data it consumed. Stages never fabricate evidence
// and never merge in identifiers for data they did not use.
package agents

import (
	"finsight/internal/analytics"
)

// IngestionOutput bundles the raw metrics gathered for a user. Evidence is
// the concatenation of all four provider calls' evidence.
type IngestionOutput struct {
	Cashflow    analytics.CashflowResult  `json:"cashflow"`
	BurnRate    analytics.BurnRateResult  `json:"burn_rate"`
	NetWorth    analytics.NetWorthResult  `json:"net_worth"`
	Portfolio   analytics.PortfolioResult `json:"portfolio"`
	EvidenceIDs []string                  `json:"evidence_ids"`
}

// LedgerAnalysis carries the spending analysis. Evidence is the ingestion
// evidence set unmodified, since the analysis draws on the combined metrics.
type LedgerAnalysis struct {
	Analysis       string   `json:"analysis"`
	AvgBurnRate    float64  `json:"avg_burn_rate"`
	MonthsAnalyzed int      `json:"months_analyzed"`
	EvidenceIDs    []string `json:"evidence_ids"`
}

// PortfolioAnalysis carries the portfolio analysis. Evidence is only the
// portfolio subset: portfolio evidence is independently enumerable per
// holding, so the narrower propagation is deliberate.
type PortfolioAnalysis struct {
	Analysis       string   `json:"analysis"`
	TotalValue     float64  `json:"total_value"`
	TotalReturnPct float64  `json:"total_return_pct"`
	NumHoldings    int      `json:"num_holdings"`
	EvidenceIDs    []string `json:"evidence_ids"`
}

// GroundingVerdict is the gate result. IsGrounded is true iff there are no
// issues and the evidence union is non-empty.
type GroundingVerdict struct {
	IsGrounded         bool     `json:"is_grounded"`
	TotalEvidenceCount int      `json:"total_evidence_count"`
	EvidenceIDs        []string `json:"evidence_ids"`
	Issues             []string `json:"issues"`
	Verdict            string   `json:"verdict"`
}

type CoachOutput struct {
	Recommendations string   `json:"recommendations"`
	Blocked         bool     `json:"blocked"`
	Reason          string   `json:"reason,omitempty"`
	EvidenceIDs     []string `json:"evidence_ids"`
}

type NarratorOutput struct {
	Summary     string   `json:"summary"`
	EvidenceIDs []string `json:"evidence_ids"`
}

// DigestOutput is the user-facing result of a daily-digest run.
type DigestOutput struct {
	Digest          string   `json:"digest"`
	Recommendations string   `json:"recommendations"`
	IsGrounded      bool     `json:"is_grounded"`
	EvidenceCount   int      `json:"evidence_count"`
	EvidenceIDs     []string `json:"evidence_ids"`
}

// StageOutput is the name/payload/evidence view of an upstream stage result,
// as inspected by the grounding validator.
type StageOutput struct {
	Name        string
	Payload     string
	EvidenceIDs []string
}

func concatEvidence(sets ...[]string) []string {
	out := []string{}
	for _, set := range sets {
		out = append(out, set...)
	}
	return out
}
