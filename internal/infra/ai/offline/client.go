package offline

import (
	"context"

	"github.com/bryanwahyu/automaton-forensics/internal/infra/ai/prompt"
)

// Client is the no-provider fallback: deterministic heuristic triage over
// the findings payload. Used when no OpenAI key is configured.
type Client struct{}

func NewClient() *Client { return &Client{} }

func (c *Client) Triage(ctx context.Context, findingsJSON string) (string, error) {
	return prompt.TriageFindings(findingsJSON), nil
}
