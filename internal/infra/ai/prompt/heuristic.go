package prompt

import (
	"encoding/json"
	"sort"
	"strings"
)

// TriageFindings builds a triage report from the aggregated findings without
// calling a model. It is the fallback when no AI provider is configured and
// returns a JSON string matching the schema of the system prompt.
func TriageFindings(findingsJSON string) string {
	type KeyFinding struct {
		Title          string `json:"title"`
		Severity       string `json:"severity"`
		Tool           string `json:"tool"`
		Summary        string `json:"summary"`
		Recommendation string `json:"recommendation"`
	}
	type Output struct {
		OverallSeverity string       `json:"overall_severity"`
		Summary         string       `json:"summary"`
		KeyFindings     []KeyFinding `json:"key_findings"`
		IOCs            []string     `json:"iocs"`
		NextSteps       []string     `json:"next_steps"`
	}

	var payload struct {
		CaseID   string `json:"case_id"`
		Status   string `json:"status"`
		Findings map[string][]struct {
			Title       string `json:"title"`
			Severity    string `json:"severity"`
			Description string `json:"description"`
			Resource    string `json:"resource"`
		} `json:"findings"`
	}

	out := Output{OverallSeverity: "info", IOCs: []string{}, NextSteps: []string{}}
	if err := json.Unmarshal([]byte(findingsJSON), &payload); err != nil {
		out.Summary = "Findings payload could not be parsed; manual review required."
		b, _ := json.Marshal(out)
		return string(b)
	}

	rank := map[string]int{"critical": 4, "high": 3, "medium": 2, "low": 1, "info": 0}
	best := 0
	iocs := map[string]bool{}
	total := 0

	tools := make([]string, 0, len(payload.Findings))
	for tool := range payload.Findings {
		tools = append(tools, tool)
	}
	sort.Strings(tools)

	for _, tool := range tools {
		for _, f := range payload.Findings[tool] {
			total++
			sev := strings.ToLower(f.Severity)
			if _, ok := rank[sev]; !ok {
				sev = "medium"
			}
			if rank[sev] > best {
				best = rank[sev]
			}
			if f.Resource != "" {
				iocs[f.Resource] = true
			}
			// only surface the noisy middle and above
			if rank[sev] >= 2 {
				out.KeyFindings = append(out.KeyFindings, KeyFinding{
					Title:          f.Title,
					Severity:       sev,
					Tool:           tool,
					Summary:        trim(f.Description, 200),
					Recommendation: "Review the underlying tool artifact and confirm scope of compromise.",
				})
			}
		}
	}

	for sev, n := range rank {
		if n == best {
			out.OverallSeverity = sev
		}
	}
	for ioc := range iocs {
		out.IOCs = append(out.IOCs, ioc)
	}
	sort.Strings(out.IOCs)

	switch {
	case total == 0:
		out.Summary = "No findings were produced by the scoped tools."
	case best >= 3:
		out.Summary = "High-severity indicators present; treat the tenant as compromised until contained."
		out.NextSteps = append(out.NextSteps, "Revoke refresh tokens for implicated accounts", "Rotate credentials of privileged identities")
	default:
		out.Summary = "Findings are low to medium severity; validate against known-good configuration."
		out.NextSteps = append(out.NextSteps, "Baseline review of listed resources")
	}

	b, err := json.Marshal(out)
	if err != nil {
		return `{"overall_severity":"info","summary":"triage serialization failed","key_findings":[],"iocs":[],"next_steps":[]}`
	}
	return string(b)
}

func trim(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
