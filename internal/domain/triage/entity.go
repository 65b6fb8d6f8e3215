package triage

import "time"

// TriageID identifier type
type TriageID string

// Triage represents an AI triage report over a finished analysis run,
// stored for auditing and retrieval
type Triage struct {
	ID         TriageID  `json:"id"`
	TenantID   string    `json:"tenant_id"`
	AnalysisID string    `json:"analysis_id"`
	CaseID     string    `json:"case_id,omitempty"`
	Result     string    `json:"result"` // JSON string from AI
	CreatedAt  time.Time `json:"created_at"`
}
