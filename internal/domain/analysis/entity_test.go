package analysis

import (
	"testing"
	"time"
)

func TestStatusTerminal(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusPartial, StatusFailed} {
		if !s.Terminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	for _, s := range []Status{StatusQueued, StatusRunning, StatusWaitingDecision} {
		if s.Terminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}

func TestFinalizeOnce(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	a := &Analysis{StartedAt: start}

	a.Finalize(StatusPartial, start.Add(90*time.Second))
	if a.Status != StatusPartial || a.DurationMS != 90000 {
		t.Fatalf("finalize = %s/%dms", a.Status, a.DurationMS)
	}

	a.Finalize(StatusFailed, start.Add(5*time.Minute))
	if a.Status != StatusPartial || a.DurationMS != 90000 {
		t.Fatalf("second finalize mutated the record: %s/%dms", a.Status, a.DurationMS)
	}
}

func TestToolsDone(t *testing.T) {
	a := &Analysis{
		Scope: []Tool{ToolSparrow, ToolHawk, ToolLoki},
		Findings: map[Tool][]Finding{
			ToolSparrow: {{Title: "x"}},
			ToolHawk:    {}, // failed tool, still done
		},
	}
	if got := a.ToolsDone(); got != 2 {
		t.Fatalf("ToolsDone = %d, want 2", got)
	}
}

func TestOptionsBoolAndClone(t *testing.T) {
	o := Options{"a": "true", "b": "yes", "c": "1", "d": "false", "e": "whatever"}
	for _, k := range []string{"a", "b", "c"} {
		if !o.Bool(k) {
			t.Fatalf("%s should read true", k)
		}
	}
	if o.Bool("d") || o.Bool("e") || o.Bool("missing") {
		t.Fatalf("non-truthy values read as true")
	}

	cp := o.Clone()
	cp["a"] = "false"
	if !o.Bool("a") {
		t.Fatalf("clone shares storage with original")
	}
}
