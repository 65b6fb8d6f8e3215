package ai

import "context"

type Client interface {
	Triage(ctx context.Context, findingsJSON string) (string, error)
}
