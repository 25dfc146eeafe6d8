package agents

import (
	"context"
	"fmt"

	"finsight/internal/audit"
	"finsight/internal/textgen"
)

const narratorPromptTmpl = `Create a brief financial digest (3-4 paragraphs) summarizing:

Spending Insights:
%s

Portfolio Status:
%s

Recommendations:
%s

Write in a friendly, conversational tone. Start with a greeting like "Here's your financial snapshot..."
End with an encouraging note.`

const narratorSystem = "You are a friendly financial advisor writing a daily digest. Be warm but professional."

// Narrator produces the final human-readable summary. On a failed grounding
// verdict it returns a verdict-derived warning instead of generating prose.
type Narrator struct {
	Text  textgen.TextClient
	Audit *audit.Log
}

func (s *Narrator) Run(ctx context.Context, runID string, ledger LedgerAnalysis, portfolio PortfolioAnalysis, coach CoachOutput, verdict GroundingVerdict) NarratorOutput {
	if !verdict.IsGrounded {
		return NarratorOutput{
			Summary:     "⚠️ NOT GROUNDED: " + verdict.Verdict,
			EvidenceIDs: []string{},
		}
	}

	prompt := fmt.Sprintf(narratorPromptTmpl,
		orNA(ledger.Analysis),
		orNA(portfolio.Analysis),
		orNA(coach.Recommendations),
	)
	summary := s.Text.Generate(ctx, prompt, narratorSystem)

	out := NarratorOutput{
		Summary:     summary,
		EvidenceIDs: verdict.EvidenceIDs,
	}
	s.Audit.Append(runID, "narrator", "generate_summary", map[string]any{}, out, out.EvidenceIDs)
	return out
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
