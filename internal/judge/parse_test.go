package judge

import "testing"

func TestParseJudgment_CategoryBreakdownSumsToTotal(t *testing.T) {
	p := judgmentPayload{
		ProScores: &categoryPayload{LogicalConsistency: 20, Evidence: 18, Persuasiveness: 22, Engagement: 15},
		ConScores: &categoryPayload{LogicalConsistency: 15, Evidence: 10, Persuasiveness: 12, Engagement: 13},
		Winner:    "pro",
	}
	result, err := parseJudgment(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ProScore != 75 || result.ConScore != 50 {
		t.Errorf("expected totals 75/50, got %d/%d", result.ProScore, result.ConScore)
	}
	if !result.WinnerIsPro {
		t.Error("expected pro to win")
	}
	if result.DegradedParse {
		t.Error("full rubric payload should not be flagged degraded")
	}
}

func TestParseJudgment_LegacyFlatScoreFallbackFlaggedDegraded(t *testing.T) {
	proScore, conScore := 70, 55
	p := judgmentPayload{ProScore: &proScore, ConScore: &conScore, Winner: "pro"}
	result, err := parseJudgment(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.DegradedParse {
		t.Error("legacy flat-score payload should be flagged as a degraded parse")
	}
	if result.ProScore != 70 || result.ConScore != 55 {
		t.Errorf("expected legacy totals to pass through unchanged, got %d/%d", result.ProScore, result.ConScore)
	}
}

func TestParseJudgment_InfersWinnerWhenAbsent(t *testing.T) {
	proScore, conScore := 60, 80
	p := judgmentPayload{ProScore: &proScore, ConScore: &conScore}
	result, err := parseJudgment(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.WinnerIsPro {
		t.Error("con has the higher score so con should be inferred as winner")
	}
}

func TestParseJudgment_RejectsOutOfRangeScore(t *testing.T) {
	proScore, conScore := 150, 40
	p := judgmentPayload{ProScore: &proScore, ConScore: &conScore, Winner: "pro"}
	if _, err := parseJudgment(p); err == nil {
		t.Error("expected an error for a pro_score outside [0,100]")
	}
}

func TestParseAudit_ComputesMeanWhenOverallMissing(t *testing.T) {
	p := auditPayload{Accuracy: 8, Fairness: 6, Thoroughness: 10, ReasoningQuality: 8}
	result, err := parseAudit(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Overall != 8.0 {
		t.Errorf("expected computed mean 8.0, got %v", result.Overall)
	}
}

func TestParseAudit_RejectsOutOfRangeProvidedOverall(t *testing.T) {
	p := auditPayload{Accuracy: 5, Fairness: 5, Thoroughness: 5, ReasoningQuality: 5, OverallScore: floatPtr(50)}
	if _, err := parseAudit(p); err == nil {
		t.Error("expected an error for an overall_score outside [0,10]")
	}
}

func TestParseAudit_UsesProvidedOverall(t *testing.T) {
	p := auditPayload{Accuracy: 5, Fairness: 5, Thoroughness: 5, ReasoningQuality: 5, OverallScore: floatPtr(9.5)}
	result, err := parseAudit(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Overall != 9.5 {
		t.Errorf("expected provided overall 9.5, got %v", result.Overall)
	}
}

func floatPtr(f float64) *float64 { return &f }
