package logs

import "time"

// Level enum
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelPrompt  Level = "prompt"
)

// Entry is one immutable line of an analysis run log. Seq is assigned by
// storage and strictly increases within one analysis.
type Entry struct {
	Seq        int64     `json:"seq"`
	AnalysisID string    `json:"analysis_id"`
	Level      Level     `json:"level"`
	Message    string    `json:"message"`
	At         time.Time `json:"at"`
}
