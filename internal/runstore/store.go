// Package runstore is the process-wide run registry. The default backend is
// an in-memory map; a Postgres backend can be substituted via RUN_STORE_PG_DSN
// without touching pipeline logic.
package runstore

import (
	"database/sql"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Record is one workflow run. It is created running and transitions exactly
// once to completed (with Output) or failed (with Error).
type Record struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Workflow    string         `json:"workflow"`
	Status      Status         `json:"status"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Input       map[string]any `json:"input,omitempty"`
	Output      any            `json:"output,omitempty"`
	Error       string         `json:"error,omitempty"`
}

type Store struct {
	db *sql.DB

	mu   sync.RWMutex
	byID map[string]Record

	schemaOnce sync.Once
	schemaErr  error
}

// New returns an in-memory store.
func New() *Store {
	return &Store{byID: make(map[string]Record)}
}

// NewPostgres returns a store backed by Postgres.
func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewFromEnv picks the Postgres backend when RUN_STORE_PG_DSN is set and
// reachable, falling back to memory.
func NewFromEnv() *Store {
	dsn := strings.TrimSpace(os.Getenv("RUN_STORE_PG_DSN"))
	if dsn == "" {
		return New()
	}
	s, err := NewPostgres(dsn)
	if err != nil {
		log.Printf("runstore: postgres unavailable, using memory: %v", err)
		return New()
	}
	return s
}

func (s *Store) Put(rec Record) {
	if s == nil || rec.ID == "" {
		return
	}
	if s.db != nil {
		s.putDB(rec)
		return
	}
	s.mu.Lock()
	s.byID[rec.ID] = rec
	s.mu.Unlock()
}

func (s *Store) Get(id string) (Record, bool) {
	if s == nil {
		return Record{}, false
	}
	if s.db != nil {
		return s.getDB(id)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	return rec, ok
}

// Update applies fn to the record under the store's lock and reports whether
// the record existed.
func (s *Store) Update(id string, fn func(*Record)) (Record, bool) {
	if s == nil {
		return Record{}, false
	}
	if s.db != nil {
		return s.updateDB(id, fn)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok {
		return Record{}, false
	}
	fn(&rec)
	rec.ID = id
	s.byID[id] = rec
	return rec, true
}

// List returns runs sorted by start time descending, truncated to limit.
// An empty userID matches all runs; limit <= 0 means no truncation.
func (s *Store) List(userID string, limit int) []Record {
	if s == nil {
		return nil
	}
	if s.db != nil {
		return s.listDB(userID, limit)
	}
	s.mu.RLock()
	out := make([]Record, 0, len(s.byID))
	for _, rec := range s.byID {
		if userID != "" && rec.UserID != userID {
			continue
		}
		out = append(out, rec)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
