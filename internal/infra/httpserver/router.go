package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalysis "github.com/bryanwahyu/automaton-forensics/internal/application/analysis"
	applogs "github.com/bryanwahyu/automaton-forensics/internal/application/logs"
	apptriage "github.com/bryanwahyu/automaton-forensics/internal/application/triage"
	"github.com/bryanwahyu/automaton-forensics/internal/domain/ai"
	domain "github.com/bryanwahyu/automaton-forensics/internal/domain/analysis"
	"github.com/bryanwahyu/automaton-forensics/internal/middleware"
)

type Router struct {
	analysisSvc *appanalysis.Service
	triageSvc   *apptriage.Service
	logStream   *applogs.Stream
}

func NewRouter(analysisSvc *appanalysis.Service, triageSvc *apptriage.Service, logStream *applogs.Stream) http.Handler {
	r := &Router{analysisSvc: analysisSvc, triageSvc: triageSvc, logStream: logStream}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/cases/{case}/analyses", r.wrap(r.handleStartAnalysis))
		rt.Get("/analyses", r.wrap(r.handleListAnalyses))
		rt.Get("/analyses/latest", r.wrap(r.handleLatest))
		rt.Get("/analyses/{id}", r.wrap(r.handleGet))
		rt.Get("/analyses/{id}/status", r.wrap(r.handleStatus))
		rt.Get("/analyses/{id}/logs", r.wrap(r.handleLogs))
		rt.Get("/analyses/{id}/decision", r.wrap(r.handleGetDecision))
		rt.Post("/analyses/{id}/decision", r.wrap(r.handleSubmitDecision))
		rt.Post("/analyses/{id}/cancel", r.wrap(r.handleCancel))
		rt.Get("/summary", r.wrap(r.handleSummary))
		rt.Get("/analyses/{id}/triage", r.wrap(r.handleTriageLatest))
		rt.Post("/analyses/{id}/triage", r.wrap(r.handleTriage))
		rt.Get("/triage", r.wrap(r.handleTriageList))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				http.Error(w, "not found", http.StatusNotFound)
			case errors.Is(err, domain.ErrInvalidScope):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, domain.ErrInvalidAnswer):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, domain.ErrNoPendingDecision):
				http.Error(w, err.Error(), http.StatusNotFound)
			case errors.Is(err, domain.ErrDecisionPending):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, domain.ErrNotRunning):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, ai.ErrQuotaExceeded):
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

// POST /v1/{tenant}/cases/{case}/analyses
// Body: {"scope": ["sparrow","hawk"], "target": {...}, "options": {...}}
func (r *Router) handleStartAnalysis(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	caseID := chi.URLParam(req, "case")

	if err := middleware.ValidateTenantID(tenant); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidScope, err)
	}
	if err := middleware.ValidateCaseID(caseID); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidScope, err)
	}

	var body struct {
		Scope   []string       `json:"scope"`
		Target  domain.Target  `json:"target"`
		Options domain.Options `json:"options"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidScope, err)
	}
	if err := middleware.ValidateTenantDomain(body.Target.TenantDomain); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidScope, err)
	}

	run, err := r.analysisSvc.Start(req.Context(), appanalysis.StartCommand{
		TenantID: tenant,
		CaseID:   caseID,
		Scope:    body.Scope,
		Target:   body.Target,
		Options:  body.Options,
	})
	if err != nil {
		return err
	}

	middleware.IncrementAnalyses()
	middleware.IncrementAnalysesRunning()
	go func() {
		<-run.Done()
		middleware.DecrementAnalysesRunning()
		st, err := r.analysisSvc.Status(context.Background(), tenant, run.ID)
		if err == nil && st.Status == domain.StatusFailed {
			middleware.IncrementAnalysesFailed()
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	return json.NewEncoder(w).Encode(map[string]any{
		"status":      "queued",
		"analysis_id": run.ID,
		"tenant":      tenant,
		"case_id":     caseID,
		"message":     "analysis started in background",
	})
}

// GET /v1/{tenant}/analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	a, err := r.analysisSvc.Get(req.Context(), tenant, domain.AnalysisID(id))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(a)
}

// GET /v1/{tenant}/analyses/{id}/status
func (r *Router) handleStatus(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	st, err := r.analysisSvc.Status(req.Context(), tenant, domain.AnalysisID(id))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(st)
}

// GET /v1/{tenant}/analyses/{id}/logs?since=42
func (r *Router) handleLogs(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	since, _ := strconv.ParseInt(req.URL.Query().Get("since"), 10, 64)

	entries, err := r.logStream.Since(req.Context(), id, since)
	if err != nil {
		return err
	}

	cursor := since
	if n := len(entries); n > 0 {
		cursor = entries[n-1].Seq
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{
		"entries": entries,
		"cursor":  cursor,
	})
}

// GET /v1/{tenant}/analyses/{id}/decision
func (r *Router) handleGetDecision(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")

	pending, ok := r.analysisSvc.PendingDecision(domain.AnalysisID(id))
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(pending)
}

// POST /v1/{tenant}/analyses/{id}/decision
// Body: {"decision_id": "<id>", "answer": "yes"}
func (r *Router) handleSubmitDecision(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")

	var body struct {
		DecisionID string `json:"decision_id"`
		Answer     string `json:"answer"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidAnswer, err)
	}

	if err := r.analysisSvc.SubmitDecision(domain.AnalysisID(id), body.DecisionID, body.Answer); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{"status": "accepted"})
}

// POST /v1/{tenant}/analyses/{id}/cancel
func (r *Router) handleCancel(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")

	if err := r.analysisSvc.Cancel(domain.AnalysisID(id)); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{"status": "cancelling"})
}

// GET /v1/{tenant}/analyses?page=&page_size=&status=&case_id=&case_prefix=&tool=
func (r *Router) handleListAnalyses(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	q := req.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))

	filters := map[string]interface{}{}
	if v := q.Get("status"); v != "" {
		filters["status"] = v
	}
	if v := q.Get("case_id"); v != "" {
		filters["case_id"] = v
	}
	if v := q.Get("case_prefix"); v != "" {
		filters["case_prefix"] = v
	}
	if v := q.Get("tool"); v != "" {
		if err := middleware.ValidateTool(v); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidScope, err)
		}
		filters["tool"] = strings.ToLower(v)
	}

	res, err := r.analysisSvc.List(req.Context(), tenant, page, middleware.ValidateLimit(size), filters)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(res)
}

// GET /v1/{tenant}/analyses/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.analysisSvc.Latest(req.Context(), tenant, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))

	summary, err := r.analysisSvc.Summary(req.Context(), tenant, middleware.ValidateDays(days))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(summary)
}

// POST /v1/{tenant}/analyses/{id}/triage
func (r *Router) handleTriage(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	t, err := r.triageSvc.TriageAndStore(req.Context(), tenant, domain.AnalysisID(id))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(t)
}

// GET /v1/{tenant}/analyses/{id}/triage — latest stored report for one run
func (r *Router) handleTriageLatest(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	t, err := r.triageSvc.LatestFor(req.Context(), tenant, id)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(t)
}

// GET /v1/{tenant}/triage?page=&page_size=
func (r *Router) handleTriageList(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.triageSvc.List(req.Context(), tenant, page, size)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}
