package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	_ "github.com/lib/pq"

	domain "github.com/bryanwahyu/automaton-forensics/internal/domain/analysis"
)

type AnalysisRepository struct{ db *sql.DB }

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository { return &AnalysisRepository{db: db} }

const analysisColumns = `id, tenant_id, case_id, status,
       scope_json, target_json, options_json, findings_json, evidence_json, decisions_json,
       error_message, started_at, completed_at, duration_ms`

// Save insert/update Analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO forensic_analyses
(id, tenant_id, case_id, status,
 scope_json, target_json, options_json, findings_json, evidence_json, decisions_json,
 error_message, started_at, completed_at, duration_ms)
VALUES ($1,$2,$3,$4,
        $5,$6,$7,$8,$9,$10,
        $11,$12,$13,$14)
ON CONFLICT (id) DO UPDATE SET
 status = EXCLUDED.status,
 options_json = EXCLUDED.options_json,
 findings_json = EXCLUDED.findings_json,
 evidence_json = EXCLUDED.evidence_json,
 decisions_json = EXCLUDED.decisions_json,
 error_message = EXCLUDED.error_message,
 completed_at = EXCLUDED.completed_at,
 duration_ms = EXCLUDED.duration_ms;`

	tenant := stringOrDash(a.TenantID)
	caseID := stringOrDash(a.CaseID)
	status := stringOrDash(string(a.Status))
	started := a.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	var completed sql.NullTime
	if a.CompletedAt != nil {
		completed = sql.NullTime{Time: *a.CompletedAt, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, q,
		a.ID, tenant, caseID, status,
		marshalOr(a.Scope, "[]"), marshalOr(a.Target, "{}"), marshalOr(a.Options, "{}"),
		marshalOr(a.Findings, "{}"), marshalOr(a.EvidenceRefs, "[]"), marshalOr(a.Decisions, "[]"),
		a.ErrorMessage, started, completed, a.DurationMS,
	)
	return err
}

// Get by ID + Tenant
func (r *AnalysisRepository) Get(ctx context.Context, tenant string, id domain.AnalysisID) (*domain.Analysis, error) {
	q := `SELECT ` + analysisColumns + `
FROM forensic_analyses
WHERE tenant_id=$1 AND id=$2 LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, tenant, id)
	return scanAnalysis(row.Scan)
}

// Latest analyses per tenant
func (r *AnalysisRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT ` + analysisColumns + `
FROM forensic_analyses
WHERE tenant_id=$1 ORDER BY started_at DESC LIMIT $2;`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Summary counts runs by terminal status since N days
func (r *AnalysisRepository) Summary(ctx context.Context, tenant string, sinceDays int) (int, int, int, int, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	cut := time.Now().AddDate(0, 0, -sinceDays)

	const q = `
SELECT COUNT(*),
       COALESCE(SUM(CASE WHEN status='completed' THEN 1 ELSE 0 END),0),
       COALESCE(SUM(CASE WHEN status='partial' THEN 1 ELSE 0 END),0),
       COALESCE(SUM(CASE WHEN status='failed' THEN 1 ELSE 0 END),0)
FROM forensic_analyses
WHERE tenant_id=$1 AND started_at >= $2;`
	var t, c, p, f int
	if err := r.db.QueryRowContext(ctx, q, tenant, cut).Scan(&t, &c, &p, &f); err != nil {
		return 0, 0, 0, 0, err
	}
	return t, c, p, f, nil
}

// Paginate with offset + limit
func (r *AnalysisRepository) Paginate(ctx context.Context, tenant string, page, pageSize int, filters map[string]interface{}) (domain.PaginatedResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := `SELECT ` + analysisColumns + `
FROM forensic_analyses
WHERE tenant_id=$1`
	args := []interface{}{tenant}
	query, args = applyFilters(query, args, filters)

	query += fmt.Sprintf("\nORDER BY started_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	var list []*domain.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows.Scan)
		if err != nil {
			return domain.PaginatedResult{}, fmt.Errorf("scanning row: %w", err)
		}
		list = append(list, a)
	}
	if err = rows.Err(); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("iterating rows: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM forensic_analyses WHERE tenant_id=$1"
	countArgs := []interface{}{tenant}
	countQuery, countArgs = applyFilters(countQuery, countArgs, filters)
	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("getting total count: %w", err)
	}

	return domain.PaginatedResult{
		Data:       list,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

func applyFilters(query string, args []interface{}, filters map[string]interface{}) (string, []interface{}) {
	for key, value := range filters {
		switch key {
		case "status":
			query += fmt.Sprintf(" AND status = $%d", len(args)+1)
			args = append(args, value)
		case "case_id":
			query += fmt.Sprintf(" AND case_id = $%d", len(args)+1)
			args = append(args, value)
		case "case_prefix":
			if s, ok := value.(string); ok {
				query += fmt.Sprintf(" AND case_id LIKE $%d", len(args)+1)
				args = append(args, escapeLikePattern(s)+"%")
			}
		case "tool":
			query += fmt.Sprintf(" AND scope_json::jsonb ? $%d", len(args)+1)
			args = append(args, value)
		}
	}
	return query, args
}

func scanAnalysis(scan func(dest ...any) error) (*domain.Analysis, error) {
	var a domain.Analysis
	var scopeJSON, targetJSON, optionsJSON, findingsJSON, evidenceJSON, decisionsJSON string
	var completed sql.NullTime
	if err := scan(
		&a.ID, &a.TenantID, &a.CaseID, &a.Status,
		&scopeJSON, &targetJSON, &optionsJSON, &findingsJSON, &evidenceJSON, &decisionsJSON,
		&a.ErrorMessage, &a.StartedAt, &completed, &a.DurationMS,
	); err != nil {
		return nil, err
	}
	if completed.Valid {
		t := completed.Time
		a.CompletedAt = &t
	}
	for _, dec := range []struct {
		src string
		dst any
	}{
		{scopeJSON, &a.Scope},
		{targetJSON, &a.Target},
		{optionsJSON, &a.Options},
		{findingsJSON, &a.Findings},
		{evidenceJSON, &a.EvidenceRefs},
		{decisionsJSON, &a.Decisions},
	} {
		if err := json.Unmarshal([]byte(dec.src), dec.dst); err != nil {
			return nil, fmt.Errorf("decoding analysis row: %w", err)
		}
	}
	if a.Findings == nil {
		a.Findings = make(map[domain.Tool][]domain.Finding)
	}
	return &a, nil
}

func marshalOr(v any, def string) string {
	if v == nil {
		return def
	}
	b, err := json.Marshal(v)
	if err != nil {
		return def
	}
	return string(b)
}

func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// escapeLikePattern escapes LIKE wildcards so user input matches literally
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
