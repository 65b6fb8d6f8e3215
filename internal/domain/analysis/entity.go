package analysis

import (
	"time"
)

// ID tipe untuk Analysis
type AnalysisID string

// Tool enum
type Tool string

const (
	ToolSparrow    Tool = "sparrow"
	ToolHawk       Tool = "hawk"
	ToolAzureHound Tool = "azurehound"
	ToolLoki       Tool = "loki"
	ToolO365       Tool = "o365-extractor"
)

// Status enum
type Status string

const (
	StatusQueued          Status = "queued"
	StatusRunning         Status = "running"
	StatusWaitingDecision Status = "waiting_decision"
	StatusCompleted       Status = "completed"
	StatusPartial         Status = "partial"
	StatusFailed          Status = "failed"
)

// Terminal reports whether the status is final and immutable.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusPartial || s == StatusFailed
}

// Options adalah extraction flags per run (boolean/string values as strings)
type Options map[string]string

// Bool interprets an option value as a boolean flag.
func (o Options) Bool(key string) bool {
	switch o[key] {
	case "true", "yes", "1":
		return true
	}
	return false
}

// Clone returns a copy so the run owns its options exclusively.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Target metadata untuk tool execution (tenant being investigated)
type Target struct {
	TenantDomain   string `json:"tenant_domain,omitempty"`
	SubscriptionID string `json:"subscription_id,omitempty"`
	Hostname       string `json:"hostname,omitempty"`
}

// Finding is one structured result item attributed to a tool.
type Finding struct {
	Title       string `json:"title"`
	Severity    string `json:"severity"`
	Description string `json:"description,omitempty"`
	Resource    string `json:"resource,omitempty"`
}

// Decision is the record of one answered human-in-the-loop checkpoint.
type Decision struct {
	Tool      Tool      `json:"tool"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	DecidedAt time.Time `json:"decided_at"`
}

// PendingDecision exists only while an analysis is waiting_decision.
type PendingDecision struct {
	ID        string    `json:"id"`
	Tool      Tool      `json:"tool"`
	Question  string    `json:"question"`
	Answers   []string  `json:"answers"`
	CreatedAt time.Time `json:"created_at"`
}

// EvidenceRef points to a stored artifact registered with case management.
type EvidenceRef struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}

// Aggregate Root: Analysis
// Exclusively owned and mutated by the orchestrator task that runs it;
// everyone else only reads.
type Analysis struct {
	ID           AnalysisID         `json:"id"`
	TenantID     string             `json:"tenant_id"`
	CaseID       string             `json:"case_id"`
	Scope        []Tool             `json:"scope"`
	Target       Target             `json:"target"`
	Status       Status             `json:"status"`
	Options      Options            `json:"options"`
	Findings     map[Tool][]Finding `json:"findings"`
	EvidenceRefs []EvidenceRef      `json:"evidence_refs"`
	Decisions    []Decision         `json:"decisions"`
	ErrorMessage string             `json:"error_message,omitempty"`
	StartedAt    time.Time          `json:"started_at"`
	CompletedAt  *time.Time         `json:"completed_at,omitempty"`
	DurationMS   int64              `json:"duration_ms"`
}

// ToolsDone counts tools with a recorded outcome (success or failure).
func (a *Analysis) ToolsDone() int {
	n := 0
	for _, t := range a.Scope {
		if _, ok := a.Findings[t]; ok {
			n++
		}
	}
	return n
}

// Finalize sets the terminal status exactly once.
func (a *Analysis) Finalize(status Status, at time.Time) {
	if a.CompletedAt != nil {
		return
	}
	a.Status = status
	a.CompletedAt = &at
	a.DurationMS = at.Sub(a.StartedAt).Milliseconds()
}
