package logs

import "context"

// Repository port for the append-only run log. Append assigns and returns
// the entry's sequence number; Since returns entries after the cursor in
// order. Clear purges a log, only used when a brand-new run reuses an id.
type Repository interface {
	Append(ctx context.Context, e *Entry) (int64, error)
	Since(ctx context.Context, analysisID string, afterSeq int64) ([]Entry, error)
	Clear(ctx context.Context, analysisID string) error
}
