package analysis

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
)

// ParseFindings reads the artifact a tool wrote and turns it into findings.
// Parsers are best-effort: unrecognized records are skipped, not fatal.
func ParseFindings(tool Tool, artifactPath string) ([]Finding, error) {
	switch tool {
	case ToolLoki:
		return parseLokiJSONL(artifactPath)
	case ToolSparrow:
		return parseSparrowJSON(artifactPath)
	case ToolHawk:
		return parseHawkJSON(artifactPath)
	case ToolAzureHound:
		return parseAzureHoundJSON(artifactPath)
	case ToolO365:
		return parseO365JSON(artifactPath)
	default:
		return nil, nil
	}
}

// Loki emits one JSON object per line with a level and a matched object.
func parseLokiJSONL(path string) ([]Finding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Finding
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		var obj struct {
			Level   string `json:"level"`
			Message string `json:"message"`
			Module  string `json:"module"`
			File    string `json:"file"`
		}
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			continue
		}
		var sev string
		switch strings.ToLower(obj.Level) {
		case "alert":
			sev = "critical"
		case "warning":
			sev = "high"
		case "notice":
			sev = "medium"
		default:
			// info/result lines are noise, not findings
			continue
		}
		title := obj.Module
		if title == "" {
			title = "loki match"
		}
		out = append(out, Finding{
			Title:       title,
			Severity:    sev,
			Description: obj.Message,
			Resource:    obj.File,
		})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Sparrow writes a JSON array of suspicious tenant operations.
func parseSparrowJSON(path string) ([]Finding, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var arr []struct {
		Operation string `json:"operation"`
		Severity  string `json:"severity"`
		Detail    string `json:"detail"`
		UserID    string `json:"user_id"`
	}
	if err := json.Unmarshal(b, &arr); err != nil {
		return nil, err
	}
	var out []Finding
	for _, rec := range arr {
		sev := strings.ToLower(rec.Severity)
		if sev == "" {
			sev = "medium"
		}
		out = append(out, Finding{
			Title:       rec.Operation,
			Severity:    sev,
			Description: rec.Detail,
			Resource:    rec.UserID,
		})
	}
	return out, nil
}

// Hawk writes a JSON array of investigation entries.
func parseHawkJSON(path string) ([]Finding, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var arr []struct {
		Investigation string `json:"investigation"`
		Severity      string `json:"severity"`
		Description   string `json:"description"`
		Mailbox       string `json:"mailbox"`
	}
	if err := json.Unmarshal(b, &arr); err != nil {
		return nil, err
	}
	var out []Finding
	for _, rec := range arr {
		sev := strings.ToLower(rec.Severity)
		if sev == "" {
			sev = "medium"
		}
		out = append(out, Finding{
			Title:       rec.Investigation,
			Severity:    sev,
			Description: rec.Description,
			Resource:    rec.Mailbox,
		})
	}
	return out, nil
}

// AzureHound writes {"data": [...], "meta": {...}}; only kinds that map to
// attack-path exposure are surfaced as findings.
func parseAzureHoundJSON(path string) ([]Finding, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Data []struct {
			Kind string         `json:"kind"`
			Data map[string]any `json:"data"`
		} `json:"data"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	var out []Finding
	for _, item := range doc.Data {
		kind := strings.ToLower(item.Kind)
		var sev string
		switch {
		case strings.Contains(kind, "roleassignment"), strings.Contains(kind, "owner"):
			sev = "high"
		case strings.Contains(kind, "serviceprincipal"), strings.Contains(kind, "app"):
			sev = "medium"
		default:
			continue
		}
		resource := ""
		if v, ok := item.Data["displayName"].(string); ok {
			resource = v
		} else if v, ok := item.Data["objectId"].(string); ok {
			resource = v
		}
		out = append(out, Finding{
			Title:    item.Kind,
			Severity: sev,
			Resource: resource,
		})
	}
	return out, nil
}

// The O365 extractor writes {"events": [...]} of flagged audit events.
func parseO365JSON(path string) ([]Finding, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Events []struct {
			Operation string `json:"operation"`
			Severity  string `json:"severity"`
			Actor     string `json:"actor"`
			Detail    string `json:"detail"`
		} `json:"events"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	var out []Finding
	for _, ev := range doc.Events {
		sev := strings.ToLower(ev.Severity)
		if sev == "" {
			sev = "low"
		}
		out = append(out, Finding{
			Title:       ev.Operation,
			Severity:    sev,
			Description: ev.Detail,
			Resource:    ev.Actor,
		})
	}
	return out, nil
}
