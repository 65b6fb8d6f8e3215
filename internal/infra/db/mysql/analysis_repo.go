package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	domain "github.com/bryanwahyu/automaton-forensics/internal/domain/analysis"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

const analysisColumns = `id, tenant_id, case_id, status,
       scope_json, target_json, options_json, findings_json, evidence_json, decisions_json,
       error_message, started_at, completed_at, duration_ms`

// Save insert/update Analysis record (upsert keyed by id)
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO forensic_analyses
(id, tenant_id, case_id, status,
 scope_json, target_json, options_json, findings_json, evidence_json, decisions_json,
 error_message, started_at, completed_at, duration_ms)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status),
 options_json=VALUES(options_json), findings_json=VALUES(findings_json),
 evidence_json=VALUES(evidence_json), decisions_json=VALUES(decisions_json),
 error_message=VALUES(error_message),
 completed_at=VALUES(completed_at), duration_ms=VALUES(duration_ms);
`
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
		jsonOrDefault(a.Scope, "[]"),
		jsonOrDefault(a.Target, "{}"),
		jsonOrDefault(a.Options, "{}"),
		jsonOrDefault(a.Findings, "{}"),
		jsonOrDefault(a.EvidenceRefs, "[]"),
		jsonOrDefault(a.Decisions, "[]"),
		a.ErrorMessage, started, completed, a.DurationMS,
	)
	return err
}

// Get by ID + Tenant
func (r *AnalysisRepository) Get(ctx context.Context, tenant string, id domain.AnalysisID) (*domain.Analysis, error) {
	q := `SELECT ` + analysisColumns + `
FROM forensic_analyses
WHERE tenant_id=? AND id=? LIMIT 1;`
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
WHERE tenant_id=? ORDER BY started_at DESC LIMIT ?;`
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
SELECT COUNT(*) AS total,
       COALESCE(SUM(status='completed'),0) AS completed,
       COALESCE(SUM(status='partial'),0)   AS partial,
       COALESCE(SUM(status='failed'),0)    AS failed
FROM forensic_analyses
WHERE tenant_id=? AND started_at >= ?;
`
	var t, c, p, f int
	if err := r.db.QueryRowContext(ctx, q, tenant, cut).Scan(&t, &c, &p, &f); err != nil {
		return 0, 0, 0, 0, err
	}
	return t, c, p, f, nil
}

// Paginate with offset + limit (classic pagination)
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
WHERE tenant_id=?`
	args := []interface{}{tenant}
	query, args = applyFilters(query, args, filters)

	query += "\nORDER BY started_at DESC, id DESC LIMIT ? OFFSET ?"
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

	total, err := r.count(ctx, tenant, filters)
	if err != nil {
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

func (r *AnalysisRepository) count(ctx context.Context, tenant string, filters map[string]interface{}) (int64, error) {
	query := "SELECT COUNT(*) FROM forensic_analyses WHERE tenant_id = ?"
	args := []interface{}{tenant}
	query, args = applyFilters(query, args, filters)

	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func applyFilters(query string, args []interface{}, filters map[string]interface{}) (string, []interface{}) {
	for key, value := range filters {
		switch key {
		case "status":
			query += " AND status = ?"
			args = append(args, value)
		case "case_id":
			query += " AND case_id = ?"
			args = append(args, value)
		case "case_prefix":
			if s, ok := value.(string); ok {
				query += " AND case_id LIKE ?"
				args = append(args, escapeLikePattern(s)+"%")
			}
		case "tool":
			// scope is stored as a JSON array of tool names
			query += " AND JSON_CONTAINS(scope_json, JSON_QUOTE(?))"
			args = append(args, value)
		}
	}
	return query, args
}

// scanAnalysis decodes one row regardless of whether it came from QueryRow
// or Rows.
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
	if err := json.Unmarshal([]byte(scopeJSON), &a.Scope); err != nil {
		return nil, fmt.Errorf("decoding scope: %w", err)
	}
	if err := json.Unmarshal([]byte(targetJSON), &a.Target); err != nil {
		return nil, fmt.Errorf("decoding target: %w", err)
	}
	if err := json.Unmarshal([]byte(optionsJSON), &a.Options); err != nil {
		return nil, fmt.Errorf("decoding options: %w", err)
	}
	if err := json.Unmarshal([]byte(findingsJSON), &a.Findings); err != nil {
		return nil, fmt.Errorf("decoding findings: %w", err)
	}
	if err := json.Unmarshal([]byte(evidenceJSON), &a.EvidenceRefs); err != nil {
		return nil, fmt.Errorf("decoding evidence refs: %w", err)
	}
	if err := json.Unmarshal([]byte(decisionsJSON), &a.Decisions); err != nil {
		return nil, fmt.Errorf("decoding decisions: %w", err)
	}
	if a.Findings == nil {
		a.Findings = make(map[domain.Tool][]domain.Finding)
	}
	return &a, nil
}
