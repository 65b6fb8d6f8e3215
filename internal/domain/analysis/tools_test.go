package analysis

import "testing"

func TestLookup(t *testing.T) {
	cases := []struct {
		in   string
		want Tool
		ok   bool
	}{
		{"sparrow", ToolSparrow, true},
		{"Hawk", ToolHawk, true},
		{"  LOKI  ", ToolLoki, true},
		{"o365-extractor", ToolO365, true},
		{"volatility", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		spec, ok := Lookup(c.in)
		if ok != c.ok {
			t.Fatalf("Lookup(%q) ok = %v, want %v", c.in, ok, c.ok)
		}
		if ok && spec.Name != c.want {
			t.Fatalf("Lookup(%q) = %s, want %s", c.in, spec.Name, c.want)
		}
	}
}

func TestNeedsDecision(t *testing.T) {
	cases := []struct {
		tool Tool
		opts Options
		want bool
	}{
		{ToolSparrow, nil, false},
		{ToolAzureHound, nil, false},
		{ToolHawk, nil, true},
		{ToolHawk, Options{"include_inactive": "true"}, false},
		{ToolLoki, nil, false},
		{ToolLoki, Options{"deep_scan": "true"}, true},
		{ToolO365, nil, true},
		{ToolO365, Options{"include_archived": "yes"}, false},
	}
	for _, c := range cases {
		if got := Catalog[c.tool].NeedsDecision(c.opts); got != c.want {
			t.Fatalf("%s with %v: NeedsDecision = %v, want %v", c.tool, c.opts, got, c.want)
		}
	}
}

func TestOptionValue(t *testing.T) {
	if OptionValue("yes") != "true" || OptionValue("no") != "false" {
		t.Fatalf("yes/no not mapped to boolean flags")
	}
	if OptionValue("30d") != "30d" {
		t.Fatalf("free-form answer not stored verbatim")
	}
}

func TestCatalogDefaultsAreAllowedAnswers(t *testing.T) {
	for tool, spec := range Catalog {
		if spec.Decision == nil {
			continue
		}
		found := false
		for _, a := range spec.Decision.Answers {
			if a == spec.Decision.Default {
				found = true
			}
		}
		if !found {
			t.Fatalf("%s default %q not among allowed answers", tool, spec.Decision.Default)
		}
	}
}
