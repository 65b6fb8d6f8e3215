package middleware

import "testing"

func counter(t *testing.T, key string) uint64 {
	t.Helper()
	v, ok := GetMetrics()[key].(uint64)
	if !ok {
		t.Fatalf("metric %s missing", key)
	}
	return v
}

func TestAnalysisCounters(t *testing.T) {
	total := counter(t, "analyses_total")
	running := counter(t, "analyses_running")
	failed := counter(t, "analyses_failed")

	IncrementAnalyses()
	IncrementAnalysesRunning()
	if counter(t, "analyses_total") != total+1 || counter(t, "analyses_running") != running+1 {
		t.Fatalf("start counters did not move")
	}

	DecrementAnalysesRunning()
	IncrementAnalysesFailed()
	if counter(t, "analyses_running") != running || counter(t, "analyses_failed") != failed+1 {
		t.Fatalf("finish counters did not move")
	}
}

func TestDecisionsPendingGauge(t *testing.T) {
	base := counter(t, "decisions_pending")
	IncrementDecisionsPending()
	if counter(t, "decisions_pending") != base+1 {
		t.Fatalf("gauge did not increment")
	}
	DecrementDecisionsPending()
	if counter(t, "decisions_pending") != base {
		t.Fatalf("gauge did not decrement")
	}
}
