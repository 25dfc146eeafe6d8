package agents

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"finsight/internal/audit"
	"finsight/internal/runstore"
	"finsight/internal/textgen"
)

const WorkflowDailyDigest = "daily-digest"

// ErrUnknownWorkflow is returned before any stage executes when the workflow
// name is not recognized.
var ErrUnknownWorkflow = errors.New("unknown workflow")

// TrailArchiver receives the audit trail of a completed run.
type TrailArchiver interface {
	PutRunTrail(ctx context.Context, runID string, steps any) error
}

// Orchestrator composes the analysis stages and the grounding gate into the
// fixed daily-digest pipeline, threading a run id through the audit log and
// the run registry.
type Orchestrator struct {
	Metrics MetricsSource
	Text    textgen.TextClient
	Audit   *audit.Log
	Runs    *runstore.Store
	Archive TrailArchiver // optional
}

// StartRun executes the named workflow to completion or failure. The run
// record transitions exactly once out of running; partial audit entries from
// a failed run remain.
func (o *Orchestrator) StartRun(ctx context.Context, userID, workflow string, params map[string]any) (runstore.Record, error) {
	runID := uuid.NewString()
	rec := runstore.Record{
		ID:        runID,
		UserID:    userID,
		Workflow:  workflow,
		Status:    runstore.StatusRunning,
		StartedAt: time.Now(),
		Input:     params,
	}
	o.Runs.Put(rec)

	if workflow != WorkflowDailyDigest {
		err := fmt.Errorf("%w: %s", ErrUnknownWorkflow, workflow)
		rec, _ = o.Runs.Update(runID, func(r *runstore.Record) {
			r.Status = runstore.StatusFailed
			r.Error = err.Error()
		})
		return rec, err
	}

	output, err := o.dailyDigest(ctx, runID, userID)
	now := time.Now()
	if err != nil {
		rec, _ = o.Runs.Update(runID, func(r *runstore.Record) {
			r.Status = runstore.StatusFailed
			r.CompletedAt = &now
			r.Error = err.Error()
		})
		return rec, err
	}

	rec, _ = o.Runs.Update(runID, func(r *runstore.Record) {
		r.Status = runstore.StatusCompleted
		r.CompletedAt = &now
		r.Output = output
	})

	if o.Archive != nil {
		if err := o.Archive.PutRunTrail(ctx, runID, o.Audit.Steps(runID)); err != nil {
			log.Printf("archive: run %s: %v", runID, err)
		}
	}
	return rec, nil
}

// dailyDigest runs Ingestion, the two independent analyses concurrently, the
// grounding gate, and the two prose stages. Any panic inside a stage is
// converted to the run's failure error.
func (o *Orchestrator) dailyDigest(ctx context.Context, runID, userID string) (out DigestOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("daily-digest: %v", r)
		}
	}()

	ingestion := &Ingestion{Metrics: o.Metrics, Audit: o.Audit}
	metrics := ingestion.Run(ctx, runID, userID)

	// Ledger and portfolio analyses are independent; completion order is
	// unconstrained, but both must finish before grounding.
	var (
		ledger    LedgerAnalysis
		portfolio PortfolioAnalysis
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ledger = (&LedgerIntel{Text: o.Text, Audit: o.Audit}).Run(gctx, runID, metrics)
		return nil
	})
	g.Go(func() error {
		portfolio = (&PortfolioAnalyst{Text: o.Text, Audit: o.Audit}).Run(gctx, runID, metrics)
		return nil
	})
	if err := g.Wait(); err != nil {
		return DigestOutput{}, err
	}

	verdict := (&Grounding{Audit: o.Audit}).Run(runID, []StageOutput{
		{Name: "ledger_intel", Payload: ledger.Analysis, EvidenceIDs: ledger.EvidenceIDs},
		{Name: "portfolio_analyst", Payload: portfolio.Analysis, EvidenceIDs: portfolio.EvidenceIDs},
	})

	coach := (&Coach{Text: o.Text, Audit: o.Audit}).Run(ctx, runID, ledger, portfolio, verdict)
	narrative := (&Narrator{Text: o.Text, Audit: o.Audit}).Run(ctx, runID, ledger, portfolio, coach, verdict)

	return DigestOutput{
		Digest:          narrative.Summary,
		Recommendations: coach.Recommendations,
		IsGrounded:      verdict.IsGrounded,
		EvidenceCount:   verdict.TotalEvidenceCount,
		EvidenceIDs:     verdict.EvidenceIDs,
	}, nil
}
