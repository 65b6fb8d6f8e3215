package triage

import (
	"context"
)

// Repository port for persisting and querying triage reports
type Repository interface {
	Save(ctx context.Context, t *Triage) error
	Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*Triage, error)
	LatestByAnalysis(ctx context.Context, tenant string, analysisID string) (*Triage, error)
}
