package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/bryanwahyu/automaton-forensics/internal/domain/analysis"
	"github.com/bryanwahyu/automaton-forensics/internal/middleware"
)

// Gate is the blocking, resumable human checkpoint. At most one decision
// may be pending per analysis. Request suspends only the calling run's
// goroutine; other analyses keep going.
type Gate struct {
	mu      sync.Mutex
	pending map[domain.AnalysisID]*pendingDecision
}

type pendingDecision struct {
	view   domain.PendingDecision
	answer chan string
}

func NewGate() *Gate {
	return &Gate{pending: make(map[domain.AnalysisID]*pendingDecision)}
}

// Request registers a pending decision and blocks until an answer is
// submitted, the timeout elapses, or ctx is cancelled. On timeout the
// pending decision is destroyed and ErrDecisionTimeout returned; the caller
// picks the default.
func (g *Gate) Request(ctx context.Context, id domain.AnalysisID, tool domain.Tool, question string, answers []string, createdAt time.Time, timeout time.Duration) (string, error) {
	g.mu.Lock()
	if _, exists := g.pending[id]; exists {
		g.mu.Unlock()
		return "", domain.ErrDecisionPending
	}
	p := &pendingDecision{
		view: domain.PendingDecision{
			ID:        uuid.New().String(),
			Tool:      tool,
			Question:  question,
			Answers:   answers,
			CreatedAt: createdAt,
		},
		// buffered so Submit never blocks on a racing timeout
		answer: make(chan string, 1),
	}
	g.pending[id] = p
	g.mu.Unlock()
	middleware.IncrementDecisionsPending()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ans := <-p.answer:
		g.remove(id, p)
		return ans, nil
	case <-timer.C:
		g.remove(id, p)
		return "", domain.ErrDecisionTimeout
	case <-ctx.Done():
		g.remove(id, p)
		return "", ctx.Err()
	}
}

// Pending returns the outstanding decision for an analysis, if any.
func (g *Gate) Pending(id domain.AnalysisID) (domain.PendingDecision, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.pending[id]
	if !ok {
		return domain.PendingDecision{}, false
	}
	return p.view, true
}

// Submit delivers an external answer and unblocks the waiting run. A value
// outside the allowed answers is rejected and the gate stays blocked.
func (g *Gate) Submit(id domain.AnalysisID, decisionID, answer string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.pending[id]
	if !ok || (decisionID != "" && decisionID != p.view.ID) {
		return domain.ErrNoPendingDecision
	}
	allowed := false
	for _, a := range p.view.Answers {
		if a == answer {
			allowed = true
			break
		}
	}
	if !allowed {
		return domain.ErrInvalidAnswer
	}

	select {
	case p.answer <- answer:
	default:
		// already answered; second submit loses
		return domain.ErrNoPendingDecision
	}
	delete(g.pending, id)
	middleware.DecrementDecisionsPending()
	return nil
}

func (g *Gate) remove(id domain.AnalysisID, p *pendingDecision) {
	g.mu.Lock()
	if cur, ok := g.pending[id]; ok && cur == p {
		delete(g.pending, id)
		g.mu.Unlock()
		middleware.DecrementDecisionsPending()
		return
	}
	g.mu.Unlock()
}
