package agents

import (
	"strings"
	"testing"

	"finsight/internal/audit"
	"finsight/internal/tester"
)

func TestGroundedWhenAllOutputsCarryEvidence(t *testing.T) {
	g := &Grounding{Audit: audit.NewLog()}
	verdict := g.Run("r1", []StageOutput{
		{Name: "ledger_intel", Payload: "spending looks fine", EvidenceIDs: []string{"e1", "e2"}},
		{Name: "portfolio_analyst", Payload: "well diversified", EvidenceIDs: []string{"e2", "e3"}},
	})
	tester.True(t, verdict.IsGrounded)
	tester.Eq(t, verdict.Verdict, "PASS")
	tester.Len(t, verdict.Issues, 0)
	tester.Eq(t, verdict.EvidenceIDs, []string{"e1", "e2", "e3"})
	tester.Eq(t, verdict.TotalEvidenceCount, 3)
}

func TestPayloadWithoutEvidenceIsAViolation(t *testing.T) {
	g := &Grounding{Audit: audit.NewLog()}
	verdict := g.Run("r1", []StageOutput{
		{Name: "ledger_intel", Payload: "spending looks fine", EvidenceIDs: []string{"e1"}},
		{Name: "portfolio_analyst", Payload: "well diversified", EvidenceIDs: nil},
	})
	tester.False(t, verdict.IsGrounded)
	tester.Len(t, verdict.Issues, 1)
	tester.True(t, strings.Contains(verdict.Issues[0], "portfolio_analyst"), "issue must name the violating stage")
	tester.True(t, strings.HasPrefix(verdict.Verdict, "FAIL: "), "verdict text must carry the failure")
	tester.True(t, strings.Contains(verdict.Verdict, "portfolio_analyst"))
}

func TestEmptyEvidenceUnionIsNeverGrounded(t *testing.T) {
	// All payloads empty: no issues, but also no evidence anywhere.
	g := &Grounding{Audit: audit.NewLog()}
	verdict := g.Run("r1", []StageOutput{
		{Name: "ledger_intel", Payload: "", EvidenceIDs: nil},
		{Name: "portfolio_analyst", Payload: "", EvidenceIDs: nil},
	})
	tester.False(t, verdict.IsGrounded)
	tester.Len(t, verdict.Issues, 0)
	tester.Eq(t, verdict.TotalEvidenceCount, 0)
}

func TestGroundingAppendsAuditStep(t *testing.T) {
	log := audit.NewLog()
	g := &Grounding{Audit: log}
	g.Run("r1", []StageOutput{{Name: "ledger_intel", Payload: "x", EvidenceIDs: []string{"e1"}}})

	steps := log.Steps("r1")
	tester.Len(t, steps, 1)
	tester.Eq(t, steps[0].Agent, "risk_safety")
	tester.Eq(t, steps[0].Action, "validate_grounding")
	tester.Eq(t, steps[0].EvidenceIDs, []string{"e1"})
}
