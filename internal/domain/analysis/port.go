package analysis

import "context"

// Repository port (interface untuk persistence)
// Save/Get are assumed atomic per analysis id.
type Repository interface {
	Save(ctx context.Context, a *Analysis) error
	Get(ctx context.Context, tenant string, id AnalysisID) (*Analysis, error)
	Latest(ctx context.Context, tenant string, limit int) ([]*Analysis, error)
	Summary(ctx context.Context, tenant string, sinceDays int) (int, int, int, int, error)
	Paginate(ctx context.Context, tenant string, page, pageSize int, filters map[string]interface{}) (PaginatedResult, error)
}

// Runner port (interface untuk eksekusi forensic tool)
type Runner interface {
	Run(ctx context.Context, req RunRequest) (RunResult, error)
}

// EvidenceRegistry port: artifacts produced by a tool run are registered as
// case evidence (owned by the case-management side; this is our boundary).
type EvidenceRegistry interface {
	Register(ctx context.Context, tenant, caseID string, tool Tool, localPath string, meta map[string]string) (EvidenceRef, error)
}
