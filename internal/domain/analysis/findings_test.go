package analysis

import (
	"os"
	"path/filepath"
	"testing"
)

func writeArtifact(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return p
}

func TestParseLokiJSONL(t *testing.T) {
	p := writeArtifact(t, "loki.jsonl", `
{"level":"ALERT","message":"yara match Mimikatz","module":"FileScan","file":"C:\\tmp\\mz.exe"}
{"level":"INFO","message":"scanning"}
{"level":"Warning","message":"suspicious filename","module":"FileScan","file":"C:\\dump.dmp"}
not-json
{"level":"notice","message":"odd timestamp","module":"Timestomp"}
`)
	got, err := ParseFindings(ToolLoki, p)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("findings = %d, want 3", len(got))
	}
	if got[0].Severity != "critical" || got[0].Resource != `C:\tmp\mz.exe` {
		t.Fatalf("alert line = %+v", got[0])
	}
	if got[1].Severity != "high" || got[2].Severity != "medium" {
		t.Fatalf("severity mapping = %s/%s", got[1].Severity, got[2].Severity)
	}
}

func TestParseSparrowJSON(t *testing.T) {
	p := writeArtifact(t, "sparrow.json", `[
  {"operation":"Set-Mailbox forwarding","severity":"High","detail":"external forward added","user_id":"alice@acme.com"},
  {"operation":"New-InboxRule","detail":"hidden rule"}
]`)
	got, err := ParseFindings(ToolSparrow, p)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("findings = %d, want 2", len(got))
	}
	if got[0].Severity != "high" {
		t.Fatalf("severity not lowercased: %s", got[0].Severity)
	}
	if got[1].Severity != "medium" {
		t.Fatalf("missing severity should default to medium, got %s", got[1].Severity)
	}
}

func TestParseAzureHoundJSON(t *testing.T) {
	p := writeArtifact(t, "azurehound.json", `{"data":[
  {"kind":"AZRoleAssignment","data":{"displayName":"Global Admin grant"}},
  {"kind":"AZServicePrincipal","data":{"objectId":"sp-123"}},
  {"kind":"AZUser","data":{"displayName":"plain user"}}
]}`)
	got, err := ParseFindings(ToolAzureHound, p)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("findings = %d, want 2 (plain users are not findings)", len(got))
	}
	if got[0].Severity != "high" || got[0].Resource != "Global Admin grant" {
		t.Fatalf("role assignment = %+v", got[0])
	}
	if got[1].Severity != "medium" || got[1].Resource != "sp-123" {
		t.Fatalf("service principal = %+v", got[1])
	}
}

func TestParseO365JSON(t *testing.T) {
	p := writeArtifact(t, "o365.json", `{"events":[
  {"operation":"Add-MailboxPermission","severity":"high","actor":"mallory@acme.com","detail":"full access granted"}
]}`)
	got, err := ParseFindings(ToolO365, p)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 1 || got[0].Resource != "mallory@acme.com" {
		t.Fatalf("findings = %+v", got)
	}
}

func TestParseFindingsMissingFile(t *testing.T) {
	if _, err := ParseFindings(ToolSparrow, filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected error for missing artifact")
	}
}
