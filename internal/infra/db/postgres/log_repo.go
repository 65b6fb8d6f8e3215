package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/automaton-forensics/internal/domain/logs"
)

// LogRepository is the Postgres variant of the run-log store; the bigserial
// primary key is the sequence number.
type LogRepository struct{ db *sql.DB }

func NewLogRepository(db *sql.DB) *LogRepository { return &LogRepository{db: db} }

func (r *LogRepository) Append(ctx context.Context, e *domain.Entry) (int64, error) {
	const q = `
INSERT INTO forensic_analysis_logs (analysis_id, level, message, created_at)
VALUES ($1,$2,$3,$4)
RETURNING seq;`
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	var seq int64
	if err := r.db.QueryRowContext(ctx, q, stringOrDash(e.AnalysisID), string(e.Level), e.Message, at).Scan(&seq); err != nil {
		return 0, err
	}
	e.Seq = seq
	return seq, nil
}

func (r *LogRepository) Since(ctx context.Context, analysisID string, afterSeq int64) ([]domain.Entry, error) {
	const q = `
SELECT seq, analysis_id, level, message, created_at
FROM forensic_analysis_logs
WHERE analysis_id = $1 AND seq > $2
ORDER BY seq ASC;`
	rows, err := r.db.QueryContext(ctx, q, analysisID, afterSeq)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Entry
	for rows.Next() {
		var e domain.Entry
		var level string
		if err := rows.Scan(&e.Seq, &e.AnalysisID, &level, &e.Message, &e.At); err != nil {
			return nil, err
		}
		e.Level = domain.Level(level)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *LogRepository) Clear(ctx context.Context, analysisID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM forensic_analysis_logs WHERE analysis_id = $1;`, analysisID)
	return err
}
