package middleware

import "testing"

func TestValidateTool(t *testing.T) {
	for _, tool := range []string{"sparrow", "Hawk", "azurehound", "loki", "o365-extractor"} {
		if err := ValidateTool(tool); err != nil {
			t.Fatalf("ValidateTool(%q) = %v", tool, err)
		}
	}
	for _, tool := range []string{"", "volatility", "sparrow; rm -rf /"} {
		if err := ValidateTool(tool); err == nil {
			t.Fatalf("ValidateTool(%q) should fail", tool)
		}
	}
}

func TestValidateTenantAndCaseID(t *testing.T) {
	for _, id := range []string{"acme", "acme-corp_01", "X"} {
		if err := ValidateTenantID(id); err != nil {
			t.Fatalf("ValidateTenantID(%q) = %v", id, err)
		}
		if err := ValidateCaseID(id); err != nil {
			t.Fatalf("ValidateCaseID(%q) = %v", id, err)
		}
	}
	for _, id := range []string{"", "has space", "semi;colon", string(make([]byte, 70))} {
		if err := ValidateTenantID(id); err == nil {
			t.Fatalf("ValidateTenantID(%q) should fail", id)
		}
	}
}

func TestValidateAnalysisID(t *testing.T) {
	if err := ValidateAnalysisID("A3F2B1C0-1111-2222-3333-444455556666"); err != nil {
		t.Fatalf("uppercase UUID rejected: %v", err)
	}
	for _, id := range []string{"", "not-a-uuid", "a3f2b1c0111122223333444455556666"} {
		if err := ValidateAnalysisID(id); err == nil {
			t.Fatalf("ValidateAnalysisID(%q) should fail", id)
		}
	}
}

func TestValidateTenantDomain(t *testing.T) {
	for _, d := range []string{"", "acme.com", "sub.acme-corp.io"} {
		if err := ValidateTenantDomain(d); err != nil {
			t.Fatalf("ValidateTenantDomain(%q) = %v", d, err)
		}
	}
	for _, d := range []string{"no-tld", "acme.com;id", "$(whoami).com", "acme.com&"} {
		if err := ValidateTenantDomain(d); err == nil {
			t.Fatalf("ValidateTenantDomain(%q) should fail", d)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00world\x07  "); got != "helloworld" {
		t.Fatalf("SanitizeString = %q", got)
	}
	if got := SanitizeString("line1\nline2\ttab"); got != "line1\nline2\ttab" {
		t.Fatalf("tab/newline should survive, got %q", got)
	}
}

func TestValidateLimitAndDays(t *testing.T) {
	if ValidateLimit(0) != 20 || ValidateLimit(-5) != 20 || ValidateLimit(500) != 100 || ValidateLimit(42) != 42 {
		t.Fatalf("limit clamping broken")
	}
	if ValidateDays(0) != 7 || ValidateDays(1000) != 365 || ValidateDays(30) != 30 {
		t.Fatalf("days clamping broken")
	}
}
