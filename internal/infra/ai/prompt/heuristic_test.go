package prompt

import (
	"encoding/json"
	"testing"
)

type triageOutput struct {
	OverallSeverity string `json:"overall_severity"`
	Summary         string `json:"summary"`
	KeyFindings     []struct {
		Title    string `json:"title"`
		Severity string `json:"severity"`
		Tool     string `json:"tool"`
	} `json:"key_findings"`
	IOCs      []string `json:"iocs"`
	NextSteps []string `json:"next_steps"`
}

func runTriage(t *testing.T, payload string) triageOutput {
	t.Helper()
	var out triageOutput
	if err := json.Unmarshal([]byte(TriageFindings(payload)), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	return out
}

func TestTriageFindingsSeverityRollup(t *testing.T) {
	out := runTriage(t, `{
		"case_id": "case-1",
		"status": "completed",
		"findings": {
			"loki": [{"title":"yara match","severity":"critical","resource":"C:\\mz.exe"}],
			"sparrow": [{"title":"forward rule","severity":"medium","resource":"alice@acme.com"}]
		}
	}`)

	if out.OverallSeverity != "critical" {
		t.Fatalf("overall = %s, want critical", out.OverallSeverity)
	}
	if len(out.KeyFindings) != 2 {
		t.Fatalf("key findings = %d, want 2", len(out.KeyFindings))
	}
	if len(out.IOCs) != 2 {
		t.Fatalf("iocs = %v", out.IOCs)
	}
	if len(out.NextSteps) == 0 {
		t.Fatalf("high severity rollup must propose next steps")
	}
}

func TestTriageFindingsEmpty(t *testing.T) {
	out := runTriage(t, `{"case_id":"c","status":"failed","findings":{}}`)
	if out.OverallSeverity != "info" || len(out.KeyFindings) != 0 {
		t.Fatalf("empty rollup = %+v", out)
	}
}

func TestTriageFindingsGarbagePayload(t *testing.T) {
	out := runTriage(t, `]][[`)
	if out.Summary == "" {
		t.Fatalf("garbage payload must still produce a readable summary")
	}
}

func TestTriageFindingsUnknownSeverity(t *testing.T) {
	out := runTriage(t, `{"findings":{"hawk":[{"title":"odd rule","severity":"purple"}]}}`)
	if out.OverallSeverity != "medium" {
		t.Fatalf("unknown severity should rank as medium, got %s", out.OverallSeverity)
	}
}
