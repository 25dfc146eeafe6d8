package runstore

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"
)

func (s *Store) ensureSchema() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS agent_runs (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL DEFAULT '',
  workflow TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'running',
  started_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  completed_at TIMESTAMP WITH TIME ZONE,
  input JSONB,
  output JSONB,
  error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_agent_runs_user_id ON agent_runs (user_id);
CREATE INDEX IF NOT EXISTS idx_agent_runs_started_at ON agent_runs (started_at DESC);
`)
	})
	return s.schemaErr
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecordDB(row rowScanner) (Record, bool) {
	var (
		rec         Record
		completedAt sql.NullTime
		inputJSON   []byte
		outputJSON  []byte
	)
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Workflow,
		&rec.Status,
		&rec.StartedAt,
		&completedAt,
		&inputJSON,
		&outputJSON,
		&rec.Error,
	)
	if err != nil {
		return Record{}, false
	}
	if completedAt.Valid {
		at := completedAt.Time
		rec.CompletedAt = &at
	}
	if len(inputJSON) > 0 {
		_ = json.Unmarshal(inputJSON, &rec.Input)
	}
	if len(outputJSON) > 0 {
		var out any
		if json.Unmarshal(outputJSON, &out) == nil {
			rec.Output = out
		}
	}
	return rec, true
}

const selectColumns = `id, user_id, workflow, status, started_at, completed_at, input, output, error`

func (s *Store) getDB(id string) (Record, bool) {
	if err := s.ensureSchema(); err != nil {
		return Record{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, false
	}
	row := s.db.QueryRow(`SELECT `+selectColumns+` FROM agent_runs WHERE id = $1`, id)
	return scanRecordDB(row)
}

func (s *Store) putDB(rec Record) {
	if err := s.ensureSchema(); err != nil {
		return
	}
	inputJSON := marshalOrNil(rec.Input)
	outputJSON := marshalOrNil(rec.Output)
	var completedAt *time.Time
	if rec.CompletedAt != nil {
		completedAt = rec.CompletedAt
	}
	_, _ = s.db.Exec(`
INSERT INTO agent_runs (id, user_id, workflow, status, started_at, completed_at, input, output, error)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id)
DO UPDATE SET status=EXCLUDED.status,
  completed_at=EXCLUDED.completed_at,
  output=EXCLUDED.output,
  error=EXCLUDED.error`,
		rec.ID, rec.UserID, rec.Workflow, string(rec.Status), rec.StartedAt, completedAt, inputJSON, outputJSON, rec.Error)
}

func (s *Store) updateDB(id string, fn func(*Record)) (Record, bool) {
	if err := s.ensureSchema(); err != nil {
		return Record{}, false
	}
	tx, err := s.db.Begin()
	if err != nil {
		return Record{}, false
	}
	defer func() { _ = tx.Rollback() }()

	id = strings.TrimSpace(id)
	row := tx.QueryRow(`SELECT `+selectColumns+` FROM agent_runs WHERE id = $1 FOR UPDATE`, id)
	rec, ok := scanRecordDB(row)
	if !ok {
		return Record{}, false
	}
	fn(&rec)
	rec.ID = id
	var completedAt *time.Time
	if rec.CompletedAt != nil {
		completedAt = rec.CompletedAt
	}
	_, err = tx.Exec(`
UPDATE agent_runs
SET status=$2, completed_at=$3, output=$4, error=$5
WHERE id=$1`,
		rec.ID, string(rec.Status), completedAt, marshalOrNil(rec.Output), rec.Error)
	if err != nil {
		return Record{}, false
	}
	if err := tx.Commit(); err != nil {
		return Record{}, false
	}
	return rec, true
}

func (s *Store) listDB(userID string, limit int) []Record {
	if err := s.ensureSchema(); err != nil {
		return nil
	}
	if limit <= 0 {
		limit = 100
	}
	var (
		rows *sql.Rows
		err  error
	)
	uid := strings.TrimSpace(userID)
	if uid == "" {
		rows, err = s.db.Query(`SELECT `+selectColumns+` FROM agent_runs
ORDER BY started_at DESC LIMIT $1`, limit)
	} else {
		rows, err = s.db.Query(`SELECT `+selectColumns+` FROM agent_runs
WHERE user_id = $1 ORDER BY started_at DESC LIMIT $2`, uid, limit)
	}
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		if rec, ok := scanRecordDB(rows); ok {
			out = append(out, rec)
		}
	}
	return out
}

func marshalOrNil(v any) []byte {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
