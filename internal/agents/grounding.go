package agents

import (
	"fmt"
	"sort"
	"strings"

	"finsight/internal/audit"
)

// Grounding is the gate between analysis and user-facing prose. It inspects
// every upstream stage output and decides whether the pipeline may proceed.
//
// An output with a non-empty payload and no evidence is a grounding
// violation. A pipeline whose evidence union is empty is never grounded,
// even with zero explicit issues.
type Grounding struct {
	Audit *audit.Log
}

func (g *Grounding) Run(runID string, outputs []StageOutput) GroundingVerdict {
	union := make(map[string]struct{})
	var issues []string
	for _, out := range outputs {
		for _, id := range out.EvidenceIDs {
			union[id] = struct{}{}
		}
		if out.Payload != "" && len(out.EvidenceIDs) == 0 {
			issues = append(issues, fmt.Sprintf("%s: analysis present but no evidence IDs", out.Name))
		}
	}

	evidence := make([]string, 0, len(union))
	for id := range union {
		evidence = append(evidence, id)
	}
	sort.Strings(evidence)

	grounded := len(issues) == 0 && len(evidence) > 0
	verdict := "PASS"
	if !grounded {
		verdict = "FAIL: " + strings.Join(issues, "; ")
	}

	out := GroundingVerdict{
		IsGrounded:         grounded,
		TotalEvidenceCount: len(evidence),
		EvidenceIDs:        evidence,
		Issues:             issues,
		Verdict:            verdict,
	}
	g.Audit.Append(runID, "risk_safety", "validate_grounding", map[string]any{"num_analyses": len(outputs)}, out, evidence)
	return out
}
