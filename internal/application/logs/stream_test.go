package logs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bryanwahyu/automaton-forensics/internal/application"
	domain "github.com/bryanwahyu/automaton-forensics/internal/domain/logs"
)

type fakeRepo struct {
	mu      sync.Mutex
	entries map[string][]domain.Entry
	seq     map[string]int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{entries: make(map[string][]domain.Entry), seq: make(map[string]int64)}
}

func (r *fakeRepo) Append(ctx context.Context, e *domain.Entry) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq[e.AnalysisID]++
	e.Seq = r.seq[e.AnalysisID]
	r.entries[e.AnalysisID] = append(r.entries[e.AnalysisID], *e)
	return e.Seq, nil
}

func (r *fakeRepo) Since(ctx context.Context, analysisID string, afterSeq int64) ([]domain.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Entry
	for _, e := range r.entries[analysisID] {
		if e.Seq > afterSeq {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeRepo) Clear(ctx context.Context, analysisID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, analysisID)
	return nil
}

type frozenClock struct{ t time.Time }

func (c frozenClock) Now() time.Time { return c.t }

var _ application.Clock = frozenClock{}

func TestStreamAppendAndSince(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewStream(newFakeRepo(), frozenClock{now})
	ctx := context.Background()

	if err := s.Info(ctx, "a-1", "starting analysis, %d tools", 2); err != nil {
		t.Fatalf("info: %v", err)
	}
	_ = s.Prompt(ctx, "a-1", "include archived mailboxes?")
	_ = s.Success(ctx, "a-1", "✅ sparrow completed")
	_ = s.Info(ctx, "a-2", "starting analysis, %d tools", 1)

	entries, err := s.Since(ctx, "a-1", 0)
	if err != nil {
		t.Fatalf("since: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3 (streams must not mix)", len(entries))
	}
	for i, e := range entries {
		if e.Seq != int64(i+1) {
			t.Fatalf("seq[%d] = %d", i, e.Seq)
		}
		if !e.At.Equal(now) {
			t.Fatalf("entry timestamp = %v, want clock time", e.At)
		}
	}
	if entries[0].Level != domain.LevelInfo || entries[1].Level != domain.LevelPrompt || entries[2].Level != domain.LevelSuccess {
		t.Fatalf("levels = %s/%s/%s", entries[0].Level, entries[1].Level, entries[2].Level)
	}
	if entries[0].Message != "starting analysis, 2 tools" {
		t.Fatalf("message = %q", entries[0].Message)
	}

	tail, _ := s.Since(ctx, "a-1", 1)
	if len(tail) != 2 || tail[0].Seq != 2 {
		t.Fatalf("since cursor 1 = %+v", tail)
	}

	again, _ := s.Since(ctx, "a-1", 1)
	if len(again) != len(tail) {
		t.Fatalf("repeated read differs")
	}
}

func TestStreamClear(t *testing.T) {
	s := NewStream(newFakeRepo(), frozenClock{time.Now()})
	ctx := context.Background()

	_ = s.Warning(ctx, "a-1", "stale entry")
	if err := s.Clear(ctx, "a-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, _ := s.Since(ctx, "a-1", 0)
	if len(entries) != 0 {
		t.Fatalf("entries after clear = %d", len(entries))
	}
}
