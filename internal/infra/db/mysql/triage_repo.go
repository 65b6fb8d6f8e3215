package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/bryanwahyu/automaton-forensics/internal/domain/triage"
)

type TriageRepository struct {
	db *sql.DB
}

func NewTriageRepository(db *sql.DB) *TriageRepository {
	return &TriageRepository{db: db}
}

// Save inserts a triage report
func (r *TriageRepository) Save(ctx context.Context, t *domain.Triage) error {
	const q = `
INSERT INTO forensic_triage
  (id, tenant_id, analysis_id, case_id, result_json, created_at)
VALUES (?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  tenant_id=VALUES(tenant_id), analysis_id=VALUES(analysis_id), case_id=VALUES(case_id), result_json=VALUES(result_json);
`
	tenant := stringOrDash(t.TenantID)
	result := t.Result
	if strings.TrimSpace(result) == "" {
		// result_json column requires valid JSON; use empty object
		result = "{}"
	}
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q, t.ID, tenant, t.AnalysisID, t.CaseID, result, createdAt)
	return err
}

// Paginate returns a page of triage reports ordered by created_at desc
func (r *TriageRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.Triage, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, tenant_id, analysis_id, case_id, result_json, created_at
FROM forensic_triage
WHERE tenant_id=?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Triage
	for rows.Next() {
		var t domain.Triage
		var created time.Time
		if err := rows.Scan(&t.ID, &t.TenantID, &t.AnalysisID, &t.CaseID, &t.Result, &created); err != nil {
			return nil, err
		}
		t.CreatedAt = created
		out = append(out, &t)
	}
	return out, rows.Err()
}

// LatestByAnalysis returns the most recent report for one analysis
func (r *TriageRepository) LatestByAnalysis(ctx context.Context, tenant string, analysisID string) (*domain.Triage, error) {
	const q = `
SELECT id, tenant_id, analysis_id, case_id, result_json, created_at
FROM forensic_triage
WHERE tenant_id=? AND analysis_id=?
ORDER BY created_at DESC, id DESC
LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, tenant, analysisID)
	var t domain.Triage
	var created time.Time
	if err := row.Scan(&t.ID, &t.TenantID, &t.AnalysisID, &t.CaseID, &t.Result, &created); err != nil {
		return nil, err
	}
	t.CreatedAt = created
	return &t, nil
}
