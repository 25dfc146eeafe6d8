package agents

import (
	"context"
	"fmt"

	"finsight/internal/audit"
	"finsight/internal/textgen"
)

const coachPromptTmpl = `Based on these analyses, suggest 2-3 specific actionable recommendations:

Spending Analysis:
%s

Portfolio Analysis:
%s

Format each recommendation as:
- [ACTION]: Brief description

Be specific and actionable. Reference the analyses provided.`

const coachSystem = "You are a financial coach. Provide practical, actionable advice based only on the analyses provided."

// Coach turns the upstream analyses into actionable recommendations. When the
// grounding verdict fails, it short-circuits without invoking the text
// service: no prose leaves the pipeline without traceable provenance.
type Coach struct {
	Text  textgen.TextClient
	Audit *audit.Log
}

func (s *Coach) Run(ctx context.Context, runID string, ledger LedgerAnalysis, portfolio PortfolioAnalysis, verdict GroundingVerdict) CoachOutput {
	if !verdict.IsGrounded {
		return CoachOutput{
			Recommendations: "",
			Blocked:         true,
			Reason:          "NOT GROUNDED: " + verdict.Verdict,
			EvidenceIDs:     []string{},
		}
	}

	prompt := fmt.Sprintf(coachPromptTmpl, orNotAvailable(ledger.Analysis), orNotAvailable(portfolio.Analysis))
	recommendations := s.Text.Generate(ctx, prompt, coachSystem)

	out := CoachOutput{
		Recommendations: recommendations,
		Blocked:         false,
		EvidenceIDs:     verdict.EvidenceIDs,
	}
	s.Audit.Append(runID, "decision_coach", "generate_recommendations", map[string]any{}, out, out.EvidenceIDs)
	return out
}

func orNotAvailable(s string) string {
	if s == "" {
		return "Not available"
	}
	return s
}
