// Package audit keeps the append-only per-run ledger of pipeline steps.
package audit

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Step records one stage invocation. Immutable once appended.
type Step struct {
	ID          string         `json:"id"`
	RunID       string         `json:"run_id"`
	Agent       string         `json:"agent"`
	Action      string         `json:"action"`
	Input       map[string]any `json:"input"`
	Output      any            `json:"output"`
	EvidenceIDs []string       `json:"evidence_ids"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Log is an in-memory step ledger keyed by run id. Appends from concurrent
// runs are safe; each run's steps are only ever appended by its own stages.
type Log struct {
	mu    sync.Mutex
	byRun map[string][]Step
}

func NewLog() *Log {
	return &Log{byRun: make(map[string][]Step)}
}

func (l *Log) Append(runID, agent, action string, input map[string]any, output any, evidenceIDs []string) Step {
	step := Step{
		ID:          uuid.NewString(),
		RunID:       runID,
		Agent:       agent,
		Action:      action,
		Input:       input,
		Output:      output,
		EvidenceIDs: append([]string(nil), evidenceIDs...),
		CreatedAt:   time.Now(),
	}
	l.mu.Lock()
	l.byRun[runID] = append(l.byRun[runID], step)
	l.mu.Unlock()
	return step
}

// Steps returns the run's steps in insertion order. The returned slice is a
// copy; repeated reads without intervening appends are identical.
func (l *Log) Steps(runID string) []Step {
	l.mu.Lock()
	defer l.mu.Unlock()
	steps := l.byRun[runID]
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}
