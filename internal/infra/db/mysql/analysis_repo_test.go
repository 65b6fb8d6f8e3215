package mysql

import (
	"strings"
	"testing"
)

func TestApplyFilters(t *testing.T) {
	base := "SELECT * FROM forensic_analyses WHERE tenant_id=?"

	q, args := applyFilters(base, []interface{}{"acme"}, map[string]interface{}{"status": "completed"})
	if !strings.Contains(q, "AND status = ?") || len(args) != 2 || args[1] != "completed" {
		t.Fatalf("status filter: q=%q args=%v", q, args)
	}

	q, args = applyFilters(base, []interface{}{"acme"}, map[string]interface{}{"case_id": "case-7"})
	if !strings.Contains(q, "AND case_id = ?") || args[1] != "case-7" {
		t.Fatalf("case_id filter: q=%q args=%v", q, args)
	}

	q, args = applyFilters(base, []interface{}{"acme"}, map[string]interface{}{"tool": "loki"})
	if !strings.Contains(q, "JSON_CONTAINS(scope_json, JSON_QUOTE(?))") || args[1] != "loki" {
		t.Fatalf("tool filter: q=%q args=%v", q, args)
	}

	q, args = applyFilters(base, []interface{}{"acme"}, map[string]interface{}{"unknown": "x"})
	if q != base || len(args) != 1 {
		t.Fatalf("unknown filter must be ignored: q=%q args=%v", q, args)
	}
}

func TestApplyFiltersCasePrefixEscapesWildcards(t *testing.T) {
	base := "SELECT 1 WHERE tenant_id=?"
	q, args := applyFilters(base, []interface{}{"acme"}, map[string]interface{}{"case_prefix": "inc_100%"})
	if !strings.Contains(q, "AND case_id LIKE ?") {
		t.Fatalf("q=%q", q)
	}
	if args[1] != `inc\_100\%%` {
		t.Fatalf("pattern = %q, want wildcards escaped plus trailing %%", args[1])
	}

	// non-string value must not inject a clause with no argument
	q, args = applyFilters(base, []interface{}{"acme"}, map[string]interface{}{"case_prefix": 42})
	if strings.Contains(q, "LIKE") || len(args) != 1 {
		t.Fatalf("non-string prefix handled: q=%q args=%v", q, args)
	}
}

func TestEscapeLikePattern(t *testing.T) {
	cases := map[string]string{
		`plain`:   `plain`,
		`a_b`:     `a\_b`,
		`100%`:    `100\%`,
		`back\sl`: `back\\sl`,
	}
	for in, want := range cases {
		if got := escapeLikePattern(in); got != want {
			t.Fatalf("escapeLikePattern(%q) = %q, want %q", in, got, want)
		}
	}
}
