package logs

import (
	"context"
	"fmt"

	"github.com/bryanwahyu/automaton-forensics/internal/application"
	domain "github.com/bryanwahyu/automaton-forensics/internal/domain/logs"
)

// Stream is the injected run-log service: an append-only, per-analysis
// ordered buffer. Ordering comes from the repository's sequence numbers,
// so multiple processes can share one backing store.
type Stream struct {
	Repo  domain.Repository
	Clock application.Clock
}

func NewStream(repo domain.Repository, clock application.Clock) *Stream {
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Stream{Repo: repo, Clock: clock}
}

// Append stores one timestamped entry and returns its sequence number.
func (s *Stream) Append(ctx context.Context, analysisID string, level domain.Level, format string, args ...any) (int64, error) {
	e := &domain.Entry{
		AnalysisID: analysisID,
		Level:      level,
		Message:    fmt.Sprintf(format, args...),
		At:         s.Clock.Now(),
	}
	return s.Repo.Append(ctx, e)
}

func (s *Stream) Info(ctx context.Context, id, format string, args ...any) error {
	_, err := s.Append(ctx, id, domain.LevelInfo, format, args...)
	return err
}

func (s *Stream) Success(ctx context.Context, id, format string, args ...any) error {
	_, err := s.Append(ctx, id, domain.LevelSuccess, format, args...)
	return err
}

func (s *Stream) Warning(ctx context.Context, id, format string, args ...any) error {
	_, err := s.Append(ctx, id, domain.LevelWarning, format, args...)
	return err
}

func (s *Stream) Error(ctx context.Context, id, format string, args ...any) error {
	_, err := s.Append(ctx, id, domain.LevelError, format, args...)
	return err
}

func (s *Stream) Prompt(ctx context.Context, id, format string, args ...any) error {
	_, err := s.Append(ctx, id, domain.LevelPrompt, format, args...)
	return err
}

// Since returns all entries after the cursor, in order. Cursor 0 returns
// the full history. Repeated calls without new appends return the same
// result.
func (s *Stream) Since(ctx context.Context, analysisID string, afterSeq int64) ([]domain.Entry, error) {
	return s.Repo.Since(ctx, analysisID, afterSeq)
}

// Clear purges a run log. Only valid before a new run starts, never mid-run.
func (s *Stream) Clear(ctx context.Context, analysisID string) error {
	return s.Repo.Clear(ctx, analysisID)
}
