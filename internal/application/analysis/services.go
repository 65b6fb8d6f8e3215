package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/automaton-forensics/internal/application"
	applogs "github.com/bryanwahyu/automaton-forensics/internal/application/logs"
	domain "github.com/bryanwahyu/automaton-forensics/internal/domain/analysis"
)

const (
	defaultToolTimeout     = 5 * time.Minute
	defaultDecisionTimeout = 300 * time.Second
	defaultRunTimeout      = time.Hour
)

// Service implements use-cases untuk ForensicAnalysis
// One orchestration task per analysis id; tools run strictly in scope
// order, one at a time. Many analyses may run concurrently.
type Service struct {
	Repo     domain.Repository
	Runner   domain.Runner
	Evidence domain.EvidenceRegistry
	Logs     *applogs.Stream
	Gate     *Gate
	Clock    application.Clock

	ToolTimeout     time.Duration
	DecisionTimeout time.Duration
	RunTimeout      time.Duration

	mu   sync.Mutex
	runs map[domain.AnalysisID]*Run
}

// Run is the observable handle of one in-flight orchestration task.
type Run struct {
	ID        domain.AnalysisID
	cancel    context.CancelFunc
	done      chan struct{}
	cancelled atomic.Bool
}

// Done is closed when the run reaches a terminal status.
func (r *Run) Done() <-chan struct{} { return r.done }

// Command untuk start analysis
type StartCommand struct {
	TenantID string
	CaseID   string
	Scope    []string
	Target   domain.Target
	Options  domain.Options
}

// Start validates the scope, persists the queued record, and launches the
// orchestration task. It returns immediately; callers poll status and logs.
func (s *Service) Start(ctx context.Context, cmd StartCommand) (*Run, error) {
	if len(cmd.Scope) == 0 {
		return nil, fmt.Errorf("%w: scope is empty", domain.ErrInvalidScope)
	}
	scope := make([]domain.Tool, 0, len(cmd.Scope))
	for _, name := range cmd.Scope {
		spec, ok := domain.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown tool %q", domain.ErrInvalidScope, name)
		}
		scope = append(scope, spec.Name)
	}

	now := s.Clock.Now()
	opts := cmd.Options.Clone()
	a := &domain.Analysis{
		ID:        domain.AnalysisID(uuid.New().String()),
		TenantID:  cmd.TenantID,
		CaseID:    cmd.CaseID,
		Scope:     scope,
		Target:    cmd.Target,
		Status:    domain.StatusQueued,
		Options:   opts,
		Findings:  make(map[domain.Tool][]domain.Finding),
		StartedAt: now,
	}
	if err := s.Repo.Save(ctx, a); err != nil {
		return nil, err
	}

	// detached context: the run must survive the HTTP request that
	// triggered it
	rctx, cancel := context.WithTimeout(context.Background(), s.runTimeout())
	run := &Run{ID: a.ID, cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	if s.runs == nil {
		s.runs = make(map[domain.AnalysisID]*Run)
	}
	s.runs[a.ID] = run
	s.mu.Unlock()

	go s.execute(rctx, run, a)
	return run, nil
}

// execute drives the whole run. It exclusively owns the record; nothing
// else writes to it.
func (s *Service) execute(ctx context.Context, run *Run, a *domain.Analysis) {
	defer func() {
		run.cancel()
		s.mu.Lock()
		delete(s.runs, a.ID)
		s.mu.Unlock()
		close(run.done)
	}()

	a.Status = domain.StatusRunning
	if err := s.Repo.Save(ctx, a); err != nil {
		s.fail(ctx, a, err)
		return
	}
	_ = s.Logs.Info(ctx, string(a.ID), "starting analysis, %d tools, case %s", len(a.Scope), a.CaseID)

	succeeded, failed := 0, 0
	for _, tool := range a.Scope {
		if ctx.Err() != nil || run.cancelled.Load() {
			s.abort(ctx, run, a)
			return
		}

		_ = s.Logs.Info(ctx, string(a.ID), "executing: %s", tool)

		spec := domain.Catalog[tool]
		if spec.NeedsDecision(a.Options) {
			if err := s.askDecision(ctx, a, spec); err != nil {
				if ctx.Err() != nil || run.cancelled.Load() {
					s.abort(ctx, run, a)
					return
				}
				s.fail(ctx, a, err)
				return
			}
			// the decision wait is still a tool boundary
			if ctx.Err() != nil || run.cancelled.Load() {
				s.abort(ctx, run, a)
				return
			}
		}

		res, err := s.runTool(ctx, a, tool)
		if err != nil {
			// one tool's failure never aborts the run
			a.Findings[tool] = []domain.Finding{}
			failed++
			_ = s.Logs.Error(ctx, string(a.ID), "❌ %s failed: %v", tool, err)
		} else {
			findings := res.Findings
			if findings == nil {
				findings = []domain.Finding{}
			}
			a.Findings[tool] = findings
			succeeded++
			s.registerEvidence(ctx, a, tool, res.ArtifactPaths)
			_ = s.Logs.Success(ctx, string(a.ID), "✅ %s completed — %d findings", tool, len(findings))
		}

		if err := s.Repo.Save(ctx, a); err != nil {
			// a dead run context also kills this save; report the stop,
			// not the secondary ctx error
			if ctx.Err() != nil || run.cancelled.Load() {
				s.abort(ctx, run, a)
			} else {
				s.fail(ctx, a, err)
			}
			return
		}
	}

	status := domain.StatusCompleted
	switch {
	case succeeded == 0:
		status = domain.StatusFailed
	case failed > 0:
		status = domain.StatusPartial
	}
	a.Finalize(status, s.Clock.Now())
	if err := s.Repo.Save(ctx, a); err != nil {
		_ = s.Logs.Error(ctx, string(a.ID), "failed to persist final state: %v", err)
		return
	}
	_ = s.Logs.Info(ctx, string(a.ID), "analysis finished: status=%s duration=%dms evidence=%d",
		a.Status, a.DurationMS, len(a.EvidenceRefs))
}

// askDecision suspends the run on the gate and applies the answer. A
// timeout resolves to the tool's conservative default and a warning, never
// a run failure by itself.
func (s *Service) askDecision(ctx context.Context, a *domain.Analysis, spec domain.ToolSpec) error {
	d := spec.Decision

	a.Status = domain.StatusWaitingDecision
	if err := s.Repo.Save(ctx, a); err != nil {
		return err
	}
	_ = s.Logs.Prompt(ctx, string(a.ID), "%s", d.Question)

	answer, err := s.Gate.Request(ctx, a.ID, spec.Name, d.Question, d.Answers, s.Clock.Now(), s.decisionTimeout())
	switch {
	case errors.Is(err, domain.ErrDecisionTimeout):
		answer = d.Default
		_ = s.Logs.Warning(ctx, string(a.ID), "no decision after %s, defaulting to %q", s.decisionTimeout(), answer)
	case err != nil:
		return err
	default:
		_ = s.Logs.Info(ctx, string(a.ID), "decision recorded for %s: %q", spec.Name, answer)
	}

	a.Decisions = append(a.Decisions, domain.Decision{
		Tool:      spec.Name,
		Question:  d.Question,
		Answer:    answer,
		DecidedAt: s.Clock.Now(),
	})
	if d.OptionKey != "" {
		a.Options[d.OptionKey] = domain.OptionValue(answer)
	}
	a.Status = domain.StatusRunning
	return s.Repo.Save(ctx, a)
}

func (s *Service) runTool(ctx context.Context, a *domain.Analysis, tool domain.Tool) (domain.RunResult, error) {
	tctx, cancel := context.WithTimeout(ctx, s.toolTimeout())
	defer cancel()
	return s.Runner.Run(tctx, domain.RunRequest{
		Tool:    tool,
		CaseID:  a.CaseID,
		Target:  a.Target,
		Options: a.Options,
	})
}

// registerEvidence hands tool artifacts to case management. Registration
// failures downgrade to warnings; the findings are already in hand.
func (s *Service) registerEvidence(ctx context.Context, a *domain.Analysis, tool domain.Tool, paths []string) {
	for _, p := range paths {
		ref, err := s.Evidence.Register(ctx, a.TenantID, a.CaseID, tool, p, map[string]string{
			"analysis_id": string(a.ID),
		})
		if err != nil {
			_ = s.Logs.Warning(ctx, string(a.ID), "evidence registration failed for %s: %v", tool, err)
			continue
		}
		a.EvidenceRefs = append(a.EvidenceRefs, ref)
	}
}

// abort finalizes a run stopped at a tool boundary, either by operator
// cancel or by the run-level deadline.
func (s *Service) abort(ctx context.Context, run *Run, a *domain.Analysis) {
	msg := "run timeout exceeded"
	if run.cancelled.Load() {
		msg = "cancelled by operator"
	}
	a.ErrorMessage = msg
	a.Finalize(domain.StatusFailed, s.Clock.Now())
	// the run context is already dead; persist with a fresh one
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = s.Repo.Save(sctx, a)
	_ = s.Logs.Error(sctx, string(a.ID), "analysis stopped: %s", msg)
}

// fail terminates a run on an orchestrator-level error.
func (s *Service) fail(ctx context.Context, a *domain.Analysis, cause error) {
	a.ErrorMessage = cause.Error()
	a.Finalize(domain.StatusFailed, s.Clock.Now())
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = s.Repo.Save(sctx, a)
	_ = s.Logs.Error(sctx, string(a.ID), "analysis failed: %v", cause)
}

// Cancel requests cooperative cancellation. Only the flag is set here; the
// run context stays alive so the in-flight tool finishes undisturbed and
// the flag is observed at the next tool boundary.
func (s *Service) Cancel(id domain.AnalysisID) error {
	s.mu.Lock()
	run, ok := s.runs[id]
	s.mu.Unlock()
	if !ok {
		return domain.ErrNotRunning
	}
	run.cancelled.Store(true)
	return nil
}

// Lookup returns the live run handle, if the analysis is still executing.
func (s *Service) Lookup(id domain.AnalysisID) (*Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	return run, ok
}

// Get ambil 1 analysis by id
func (s *Service) Get(ctx context.Context, tenant string, id domain.AnalysisID) (*domain.Analysis, error) {
	return s.Repo.Get(ctx, tenant, id)
}

// StatusSummary is the polling view of one run.
type StatusSummary struct {
	ID           domain.AnalysisID `json:"id"`
	Status       domain.Status     `json:"status"`
	ToolsTotal   int               `json:"tools_total"`
	ToolsDone    int               `json:"tools_done"`
	Evidence     int               `json:"evidence"`
	ErrorMessage string            `json:"error_message,omitempty"`
}

// Status returns the current status plus a short progress summary.
func (s *Service) Status(ctx context.Context, tenant string, id domain.AnalysisID) (StatusSummary, error) {
	a, err := s.Repo.Get(ctx, tenant, id)
	if err != nil {
		return StatusSummary{}, err
	}
	return StatusSummary{
		ID:           a.ID,
		Status:       a.Status,
		ToolsTotal:   len(a.Scope),
		ToolsDone:    a.ToolsDone(),
		Evidence:     len(a.EvidenceRefs),
		ErrorMessage: a.ErrorMessage,
	}, nil
}

// PendingDecision exposes the outstanding question for pollers.
func (s *Service) PendingDecision(id domain.AnalysisID) (domain.PendingDecision, bool) {
	return s.Gate.Pending(id)
}

// SubmitDecision delivers an operator answer to the waiting run.
func (s *Service) SubmitDecision(id domain.AnalysisID, decisionID, answer string) error {
	return s.Gate.Submit(id, decisionID, answer)
}

// Latest ambil N analysis terakhir
func (s *Service) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Analysis, error) {
	return s.Repo.Latest(ctx, tenant, limit)
}

// List halaman analyses, filter by status/case/tool
func (s *Service) List(ctx context.Context, tenant string, page, pageSize int, filters map[string]interface{}) (domain.PaginatedResult, error) {
	return s.Repo.Paginate(ctx, tenant, page, pageSize, filters)
}

// Summary rekap hasil analysis N hari terakhir
func (s *Service) Summary(ctx context.Context, tenant string, sinceDays int) (map[string]any, error) {
	total, completed, partial, failed, err := s.Repo.Summary(ctx, tenant, sinceDays)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"total_analyses": total,
		"completed":      completed,
		"partial":        partial,
		"failed":         failed,
	}, nil
}

func (s *Service) toolTimeout() time.Duration {
	if s.ToolTimeout > 0 {
		return s.ToolTimeout
	}
	return defaultToolTimeout
}

func (s *Service) decisionTimeout() time.Duration {
	if s.DecisionTimeout > 0 {
		return s.DecisionTimeout
	}
	return defaultDecisionTimeout
}

func (s *Service) runTimeout() time.Duration {
	if s.RunTimeout > 0 {
		return s.RunTimeout
	}
	return defaultRunTimeout
}
