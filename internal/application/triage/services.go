package triage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/bryanwahyu/automaton-forensics/internal/application"
	aidomain "github.com/bryanwahyu/automaton-forensics/internal/domain/ai"
	analysisdomain "github.com/bryanwahyu/automaton-forensics/internal/domain/analysis"
	domain "github.com/bryanwahyu/automaton-forensics/internal/domain/triage"
)

// Service runs AI triage over a finished analysis and stores the report.
type Service struct {
	Client   aidomain.Client
	Repo     domain.Repository
	Analyses analysisdomain.Repository
	Clock    application.Clock
}

func NewService(client aidomain.Client, repo domain.Repository, analyses analysisdomain.Repository, clock application.Clock) *Service {
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Service{Client: client, Repo: repo, Analyses: analyses, Clock: clock}
}

// TriageAndStore loads the analysis, feeds its aggregated findings to the
// AI client, and persists the report.
func (s *Service) TriageAndStore(ctx context.Context, tenant string, analysisID analysisdomain.AnalysisID) (*domain.Triage, error) {
	a, err := s.Analyses.Get(ctx, tenant, analysisID)
	if err != nil {
		return nil, err
	}
	if !a.Status.Terminal() {
		return nil, fmt.Errorf("analysis %s is still %s", analysisID, a.Status)
	}

	payload, err := json.Marshal(map[string]any{
		"case_id":  a.CaseID,
		"status":   a.Status,
		"findings": a.Findings,
	})
	if err != nil {
		return nil, err
	}

	result, err := s.Client.Triage(ctx, string(payload))
	if err != nil {
		return nil, err
	}

	t := &domain.Triage{
		ID:         domain.TriageID(uuid.New().String()),
		TenantID:   tenant,
		AnalysisID: string(analysisID),
		CaseID:     a.CaseID,
		Result:     result,
		CreatedAt:  s.Clock.Now(),
	}
	if err := s.Repo.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns stored triage reports for a tenant, newest first.
func (s *Service) List(ctx context.Context, tenant string, page, pageSize int) ([]*domain.Triage, error) {
	return s.Repo.Paginate(ctx, tenant, page, pageSize)
}

// LatestFor returns the most recent report for one analysis.
func (s *Service) LatestFor(ctx context.Context, tenant string, analysisID string) (*domain.Triage, error) {
	return s.Repo.LatestByAnalysis(ctx, tenant, analysisID)
}
