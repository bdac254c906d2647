package pipeline

import (
	"testing"
	"time"
)

func TestStats_Counters(t *testing.T) {
	s := NewStats(time.Hour)
	s.Record(100*time.Millisecond, 12, false)
	s.Record(200*time.Millisecond, 5, false)
	s.Record(50*time.Millisecond, 0, true)

	snap := s.Snapshot()
	if snap.Documents != 3 {
		t.Errorf("documents = %d, want 3", snap.Documents)
	}
	if snap.Failures != 1 {
		t.Errorf("failures = %d, want 1", snap.Failures)
	}
	if snap.Headings != 17 {
		t.Errorf("headings = %d, want 17", snap.Headings)
	}
	if snap.WindowCount != 3 {
		t.Errorf("window count = %d, want 3", snap.WindowCount)
	}
	if snap.MinMs != 50 || snap.MaxMs != 200 {
		t.Errorf("min/max = %d/%d, want 50/200", snap.MinMs, snap.MaxMs)
	}
	wantAvg := (100.0 + 200.0 + 50.0) / 3.0
	if snap.AvgMs < wantAvg-0.01 || snap.AvgMs > wantAvg+0.01 {
		t.Errorf("avg = %v, want %v", snap.AvgMs, wantAvg)
	}
	if snap.P50Ms != 100 {
		t.Errorf("p50 = %v, want 100", snap.P50Ms)
	}
}

func TestStats_EmptySnapshot(t *testing.T) {
	s := NewStats(time.Hour)
	snap := s.Snapshot()
	if snap.Documents != 0 || snap.WindowCount != 0 {
		t.Errorf("snapshot = %+v, want zeros", snap)
	}
}

func TestStats_WindowPrunesLatencies(t *testing.T) {
	s := NewStats(20 * time.Millisecond)
	s.Record(100*time.Millisecond, 3, false)
	time.Sleep(40 * time.Millisecond)

	snap := s.Snapshot()
	if snap.WindowCount != 0 {
		t.Errorf("window count = %d, want 0 after expiry", snap.WindowCount)
	}
	// Cumulative counters survive the window.
	if snap.Documents != 1 || snap.Headings != 3 {
		t.Errorf("counters = %d docs / %d headings, want 1/3", snap.Documents, snap.Headings)
	}
}

func TestStats_NegativeDurationClamped(t *testing.T) {
	s := NewStats(time.Hour)
	s.Record(-5*time.Second, 1, false)
	snap := s.Snapshot()
	if snap.MinMs != 0 {
		t.Errorf("min = %d, want 0", snap.MinMs)
	}
}

func TestPercentile(t *testing.T) {
	values := []int64{10, 20, 30, 40, 50}
	tests := []struct {
		pct  float64
		want float64
	}{
		{0, 10},
		{50, 30},
		{100, 50},
	}
	for _, tt := range tests {
		if got := percentile(values, tt.pct); got != tt.want {
			t.Errorf("percentile(%v) = %v, want %v", tt.pct, got, tt.want)
		}
	}
	if got := percentile(nil, 50); got != 0 {
		t.Errorf("percentile(nil) = %v, want 0", got)
	}
}
