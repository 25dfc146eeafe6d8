package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"finsight/internal/agents"
	"finsight/internal/analytics"
	"finsight/internal/audit"
	"finsight/internal/miner"
	"finsight/internal/runstore"
	"finsight/internal/textgen"
)

const defaultUser = "default"

type apiServer struct {
	model    string
	metrics  *analytics.Client
	text     textgen.TextClient
	auditLog *audit.Log
	runs     *runstore.Store
	orch     *agents.Orchestrator
	engine   *miner.Engine
}

func buildMux(s *apiServer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /run", s.handleRun)
	mux.HandleFunc("GET /runs", s.handleListRuns)
	mux.HandleFunc("GET /runs/{id}", s.handleGetRun)
	mux.HandleFunc("GET /runs/{id}/steps", s.handleGetSteps)
	mux.HandleFunc("POST /mine-insights", s.handleMineInsights)
	mux.HandleFunc("POST /quick-insight", s.handleQuickInsight)
	mux.HandleFunc("POST /chat", s.handleChat)
	return mux
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "agents",
		"model":   s.model,
	})
}

type runRequest struct {
	UserID   string         `json:"user_id"`
	Workflow string         `json:"workflow"`
	Params   map[string]any `json:"params"`
}

type runResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
	Output any    `json:"output,omitempty"`
}

func (s *apiServer) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		req.UserID = defaultUser
	}

	rec, err := s.orch.StartRun(r.Context(), req.UserID, req.Workflow, req.Params)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, agents.ErrUnknownWorkflow) {
			code = http.StatusBadRequest
		}
		httpError(w, code, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, runResponse{
		RunID:  rec.ID,
		Status: string(rec.Status),
		Output: rec.Output,
	})
}

func (s *apiServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.runs.Get(r.PathValue("id"))
	if !ok {
		httpError(w, http.StatusNotFound, "Run not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *apiServer) handleGetSteps(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.runs.Get(id); !ok {
		httpError(w, http.StatusNotFound, "Run not found")
		return
	}
	steps := s.auditLog.Steps(id)
	if steps == nil {
		steps = []audit.Step{}
	}
	writeJSON(w, http.StatusOK, steps)
}

func (s *apiServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	runs := s.runs.List(r.URL.Query().Get("user_id"), limit)
	if runs == nil {
		runs = []runstore.Record{}
	}
	writeJSON(w, http.StatusOK, runs)
}

type mineRequest struct {
	UserID     string   `json:"user_id"`
	FocusAreas []string `json:"focus_areas"`
}

func (s *apiServer) handleMineInsights(w http.ResponseWriter, r *http.Request) {
	var req mineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		req.UserID = defaultUser
	}
	focus := req.FocusAreas
	if len(focus) == 0 {
		focus = miner.DefaultFocus
	}

	runID := uuid.NewString()
	insights := s.engine.Mine(r.Context(), req.UserID, focus)
	if insights == nil {
		insights = []miner.Insight{}
	}

	now := time.Now()
	s.runs.Put(runstore.Record{
		ID:          runID,
		UserID:      req.UserID,
		Workflow:    "insight-miner",
		Status:      runstore.StatusCompleted,
		StartedAt:   now,
		CompletedAt: &now,
		Output: map[string]any{
			"insights":    insights,
			"total_count": len(insights),
			"focus_areas": focus,
		},
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":       runID,
		"insights":     insights,
		"total_count":  len(insights),
		"focus_areas":  focus,
		"generated_at": now.Format(time.RFC3339),
	})
}

func (s *apiServer) handleQuickInsight(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = defaultUser
	}
	writeJSON(w, http.StatusOK, s.engine.Quick(r.Context(), userID))
}

type chatRequest struct {
	Message string         `json:"message"`
	UserID  string         `json:"user_id"`
	Context map[string]any `json:"context"`
}

type chatResponse struct {
	Response    string   `json:"response"`
	EvidenceIDs []string `json:"evidence_ids,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

const chatSystemTmpl = `You are a helpful personal finance advisor. You provide practical, actionable advice.

User's Financial Context:%s

Guidelines:
- Be concise and friendly
- Give specific, actionable advice
- If you don't have enough data, suggest what they should add
- Never make up numbers - only reference the context provided
- Keep responses under 150 words`

func (s *apiServer) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		httpError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.UserID == "" {
		req.UserID = defaultUser
	}

	summary, evidenceIDs := s.chatContext(r.Context(), req.UserID)
	if summary == "" {
		summary = " No data available yet - encourage them to add accounts and transactions."
	}

	reply := s.text.Generate(r.Context(), req.Message, fmt.Sprintf(chatSystemTmpl, summary))

	writeJSON(w, http.StatusOK, chatResponse{
		Response:    reply,
		EvidenceIDs: evidenceIDs,
		Suggestions: chatSuggestions(req.Message),
	})
}

// chatContext summarizes the user's recent numbers so the advisor answers
// against real data instead of hallucinating figures.
func (s *apiServer) chatContext(ctx context.Context, userID string) (string, []string) {
	var summary strings.Builder
	var evidenceIDs []string

	cashflow := s.metrics.Cashflow(ctx, userID, 3)
	if len(cashflow.Data) > 0 {
		latest := cashflow.Data[0]
		fmt.Fprintf(&summary, "\nRecent monthly income: $%.0f", latest.Income)
		fmt.Fprintf(&summary, "\nRecent monthly expenses: $%.0f", latest.Expenses)
		evidenceIDs = append(evidenceIDs, "cashflow-data")
	}

	netWorth := s.metrics.NetWorth(ctx, userID)
	if netWorth.NetWorth != 0 {
		fmt.Fprintf(&summary, "\nNet worth: $%.0f", netWorth.NetWorth)
		evidenceIDs = append(evidenceIDs, "net-worth-data")
	}

	return summary.String(), evidenceIDs
}

func chatSuggestions(message string) []string {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "budget"):
		return []string{"How should I allocate my income?", "What's the 50/30/20 rule?", "Help me cut expenses"}
	case strings.Contains(msg, "invest"):
		return []string{"Am I diversified enough?", "What's a good savings rate?", "Index funds vs individual stocks?"}
	case strings.Contains(msg, "save"):
		return []string{"How much should I save monthly?", "Emergency fund tips", "Automate my savings"}
	default:
		return []string{"Analyze my spending", "Create a budget", "Investment advice"}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func httpError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
