package elo

import "testing"

func TestRollingAverage_FirstScore(t *testing.T) {
	got := rollingAverage(nil, 0, 7.5)
	if got != 7.5 {
		t.Errorf("first score should become the average outright, got %v", got)
	}
}

func TestRollingAverage_IncrementalMean(t *testing.T) {
	old := 6.0
	// times_judged=3 so far, new observation becomes the 4th.
	got := rollingAverage(&old, 3, 10.0)
	want := 6.0 + (10.0-6.0)/4.0
	if got != want {
		t.Errorf("rollingAverage = %v, want %v", got, want)
	}
}
