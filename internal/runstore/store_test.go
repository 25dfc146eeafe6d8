package runstore

import (
	"testing"
	"time"

	"finsight/internal/tester"
)

func record(id, user string, started time.Time) Record {
	return Record{
		ID:        id,
		UserID:    user,
		Workflow:  "daily-digest",
		Status:    StatusRunning,
		StartedAt: started,
	}
}

func TestGetUnknownRun(t *testing.T) {
	s := New()
	_, ok := s.Get("missing")
	tester.False(t, ok, "missing run must not resolve")
}

func TestUpdateTransitionsRecord(t *testing.T) {
	s := New()
	s.Put(record("r1", "u1", time.Now()))

	done := time.Now()
	rec, ok := s.Update("r1", func(r *Record) {
		r.Status = StatusCompleted
		r.CompletedAt = &done
		r.Output = map[string]any{"digest": "hello"}
	})
	tester.True(t, ok)
	tester.Eq(t, rec.Status, StatusCompleted)
	tester.True(t, rec.CompletedAt != nil, "completed_at must be set")

	got, ok := s.Get("r1")
	tester.True(t, ok)
	tester.Eq(t, got.Status, StatusCompleted)
}

func TestUpdateMissingRun(t *testing.T) {
	s := New()
	_, ok := s.Update("missing", func(r *Record) { r.Status = StatusFailed })
	tester.False(t, ok)
}

func TestListOrdersByStartDescAndTruncates(t *testing.T) {
	s := New()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	s.Put(record("old", "u1", base))
	s.Put(record("mid", "u1", base.Add(time.Hour)))
	s.Put(record("new", "u1", base.Add(2*time.Hour)))
	s.Put(record("other", "u2", base.Add(3*time.Hour)))

	runs := s.List("u1", 2)
	tester.Len(t, runs, 2)
	tester.Eq(t, runs[0].ID, "new")
	tester.Eq(t, runs[1].ID, "mid")

	all := s.List("", 0)
	tester.Len(t, all, 4)
	tester.Eq(t, all[0].ID, "other")
}
