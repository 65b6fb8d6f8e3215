package analysis

import "strings"

// DecisionSpec declares the human checkpoint a tool may require before it
// runs. When is evaluated against the run's current options; the answer is
// written back to OptionKey. Default is the conservative answer used when
// nobody responds in time.
type DecisionSpec struct {
	Question  string
	Answers   []string
	OptionKey string
	Default   string
	When      func(Options) bool
}

// ToolSpec is one entry of the tool catalog. New tools and their
// confirmation conditions are data here, not branches in the orchestrator.
type ToolSpec struct {
	Name     Tool
	Decision *DecisionSpec
}

// Catalog of supported forensic tools.
var Catalog = map[Tool]ToolSpec{
	ToolSparrow: {Name: ToolSparrow},
	ToolHawk: {
		Name: ToolHawk,
		Decision: &DecisionSpec{
			Question:  "Include inactive user accounts in the Hawk investigation? This can be slow on large tenants.",
			Answers:   []string{"yes", "no"},
			OptionKey: "include_inactive",
			Default:   "no",
			When:      func(o Options) bool { return !o.Bool("include_inactive") },
		},
	},
	ToolAzureHound: {Name: ToolAzureHound},
	ToolLoki: {
		Name: ToolLoki,
		Decision: &DecisionSpec{
			Question:  "Run a deep filesystem scan with Loki? A full scan can take several hours on the target host.",
			Answers:   []string{"yes", "no"},
			OptionKey: "deep_scan",
			Default:   "no",
			When:      func(o Options) bool { return o.Bool("deep_scan") },
		},
	},
	ToolO365: {
		Name: ToolO365,
		Decision: &DecisionSpec{
			Question:  "Include archived mailboxes in the O365 extraction?",
			Answers:   []string{"yes", "no"},
			OptionKey: "include_archived",
			Default:   "no",
			When:      func(o Options) bool { return !o.Bool("include_archived") },
		},
	},
}

// Lookup resolves a tool name (case-insensitive) against the catalog.
func Lookup(name string) (ToolSpec, bool) {
	spec, ok := Catalog[Tool(strings.ToLower(strings.TrimSpace(name)))]
	return spec, ok
}

// NeedsDecision evaluates the tool's confirmation predicate for the given
// options.
func (s ToolSpec) NeedsDecision(o Options) bool {
	return s.Decision != nil && s.Decision.When(o)
}

// OptionValue maps a decision answer onto an option value. Yes/no answers
// become boolean flags; anything else is stored verbatim.
func OptionValue(answer string) string {
	switch answer {
	case "yes":
		return "true"
	case "no":
		return "false"
	}
	return answer
}
