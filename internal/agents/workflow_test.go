package agents

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"finsight/internal/analytics"
	"finsight/internal/audit"
	"finsight/internal/runstore"
	"finsight/internal/tester"
	"finsight/internal/textgen"
)

func newOrchestrator(metrics MetricsSource, text textgen.TextClient) (*Orchestrator, *audit.Log, *runstore.Store) {
	log := audit.NewLog()
	runs := runstore.New()
	return &Orchestrator{Metrics: metrics, Text: text, Audit: log, Runs: runs}, log, runs
}

func TestDailyDigestCompletesWhenGrounded(t *testing.T) {
	text := &textgen.SoftFake{Fake: textgen.Fake{Reply: "generated text"}}
	o, log, runs := newOrchestrator(populatedMetrics(), text)

	rec, err := o.StartRun(context.Background(), "u1", WorkflowDailyDigest, nil)
	tester.NoErr(t, err)
	tester.Eq(t, rec.Status, runstore.StatusCompleted)
	tester.True(t, rec.CompletedAt != nil, "completed_at must be set")

	out, ok := rec.Output.(DigestOutput)
	tester.True(t, ok, "output must be a digest")
	tester.True(t, out.IsGrounded)
	tester.Eq(t, out.Digest, "generated text")
	tester.Eq(t, out.Recommendations, "generated text")
	tester.Eq(t, out.EvidenceCount, 4)

	// Ingestion first, both analyses before the gate, prose stages after.
	steps := log.Steps(rec.ID)
	tester.Len(t, steps, 6)
	tester.Eq(t, steps[0].Agent, "ingestion")
	middle := []string{steps[1].Agent, steps[2].Agent}
	sort.Strings(middle)
	tester.Eq(t, middle, []string{"ledger_intel", "portfolio_analyst"})
	tester.Eq(t, steps[3].Agent, "risk_safety")
	tester.Eq(t, steps[4].Agent, "decision_coach")
	tester.Eq(t, steps[5].Agent, "narrator")

	// Reading the trail twice yields identical content.
	tester.Eq(t, log.Steps(rec.ID), steps)

	// 2 analyses + coach + narrator.
	tester.Eq(t, text.Calls(), 4)

	stored, ok := runs.Get(rec.ID)
	tester.True(t, ok)
	tester.Eq(t, stored.Status, runstore.StatusCompleted)
}

func TestDailyDigestWithholdsProseWhenNoEvidence(t *testing.T) {
	// Provider returns nothing: analyses still produce prose via the
	// fail-soft text client, so grounding must fail on both stages.
	text := &textgen.SoftFake{Fake: textgen.Fake{Reply: "ungrounded prose"}}
	o, log, _ := newOrchestrator(&fakeMetrics{}, text)

	rec, err := o.StartRun(context.Background(), "u1", WorkflowDailyDigest, nil)
	tester.NoErr(t, err)
	tester.Eq(t, rec.Status, runstore.StatusCompleted)

	out, ok := rec.Output.(DigestOutput)
	tester.True(t, ok)
	tester.False(t, out.IsGrounded)
	tester.Eq(t, out.Recommendations, "")
	tester.True(t, strings.Contains(out.Digest, "NOT GROUNDED"), "digest must explain why output was withheld")
	tester.True(t, strings.Contains(out.Digest, "ledger_intel"), "withholding reason names the violating stage")
	tester.Eq(t, out.EvidenceCount, 0)

	// Only the two analyses called the text service; coach and narrator
	// short-circuited.
	tester.Eq(t, text.Calls(), 2)

	// Ingestion, two analyses, grounding. No prose steps.
	tester.Len(t, log.Steps(rec.ID), 4)
}

func TestUnknownWorkflowIsRejectedBeforeStages(t *testing.T) {
	text := &textgen.SoftFake{Fake: textgen.Fake{Reply: "x"}}
	o, log, runs := newOrchestrator(populatedMetrics(), text)

	rec, err := o.StartRun(context.Background(), "u1", "weekly-report", nil)
	tester.Err(t, err)
	tester.True(t, errors.Is(err, ErrUnknownWorkflow))
	tester.Eq(t, rec.Status, runstore.StatusFailed)
	tester.True(t, strings.Contains(rec.Error, "weekly-report"))
	tester.Eq(t, text.Calls(), 0)
	tester.Len(t, log.Steps(rec.ID), 0)

	stored, ok := runs.Get(rec.ID)
	tester.True(t, ok)
	tester.Eq(t, stored.Status, runstore.StatusFailed)
}

// explodingMetrics panics partway through ingestion.
type explodingMetrics struct{ fakeMetrics }

func (e *explodingMetrics) BurnRate(ctx context.Context, userID string) analytics.BurnRateResult {
	panic("metrics store corrupted")
}

func TestStagePanicFailsTheRunAndKeepsPartialAudit(t *testing.T) {
	metrics := &explodingMetrics{}
	text := &textgen.SoftFake{Fake: textgen.Fake{Reply: "x"}}
	o, log, _ := newOrchestrator(metrics, text)

	rec, err := o.StartRun(context.Background(), "u1", WorkflowDailyDigest, nil)
	tester.Err(t, err)
	tester.Eq(t, rec.Status, runstore.StatusFailed)
	tester.True(t, strings.Contains(rec.Error, "metrics store corrupted"), "error description captured verbatim")
	// Ingestion never completed, so no audit entries were written; entries
	// from any stage that did finish would remain.
	tester.Len(t, log.Steps(rec.ID), 0)
}
