package judge

import (
	"fmt"

	"github.com/debatelab/engine/internal/store"
)

// parseJudgment validates a decoded judgmentPayload and resolves it into
// the category breakdown shape this module persists. The legacy flat
// pro_score/con_score fallback is kept (a model occasionally ignores the
// rubric instruction) but flagged as DegradedParse rather than silently
// dropping the sub-category breakdown.
func parseJudgment(p judgmentPayload) (JudgmentResult, error) {
	var result JudgmentResult

	if p.ProScores != nil && p.ConScores != nil {
		result.ProCategoryScores = toCategoryScores(*p.ProScores)
		result.ConCategoryScores = toCategoryScores(*p.ConScores)
		result.ProScore = result.ProCategoryScores.Sum()
		result.ConScore = result.ConCategoryScores.Sum()
	} else if p.ProScore != nil && p.ConScore != nil {
		result.ProScore = *p.ProScore
		result.ConScore = *p.ConScore
		result.DegradedParse = true
	} else {
		return result, fmt.Errorf("missing required score fields in judgment")
	}

	if result.ProScore < 0 || result.ProScore > 100 {
		return result, fmt.Errorf("pro_score must be 0-100, got %d", result.ProScore)
	}
	if result.ConScore < 0 || result.ConScore > 100 {
		return result, fmt.Errorf("con_score must be 0-100, got %d", result.ConScore)
	}

	switch p.Winner {
	case "pro":
		result.WinnerIsPro = true
	case "con":
		result.WinnerIsPro = false
	case "":
		result.WinnerIsPro = result.ProScore > result.ConScore
	default:
		return result, fmt.Errorf("winner must be \"pro\" or \"con\", got %q", p.Winner)
	}

	result.Reasoning = p.Reasoning
	return result, nil
}

func toCategoryScores(c categoryPayload) store.CategoryScores {
	return store.CategoryScores{
		LogicalConsistency: c.LogicalConsistency,
		Evidence:            c.Evidence,
		Persuasiveness:      c.Persuasiveness,
		Engagement:          c.Engagement,
	}
}

// parseAudit validates a decoded auditPayload and computes the overall
// score as the mean of the four sub-scores when the model omits it.
func parseAudit(p auditPayload) (AuditResult, error) {
	scores := store.AuditScores{
		Accuracy:         p.Accuracy,
		Fairness:         p.Fairness,
		Thoroughness:     p.Thoroughness,
		ReasoningQuality: p.ReasoningQuality,
	}

	checks := []struct {
		name  string
		value int
	}{
		{"accuracy", scores.Accuracy},
		{"fairness", scores.Fairness},
		{"thoroughness", scores.Thoroughness},
		{"reasoning_quality", scores.ReasoningQuality},
	}
	for _, c := range checks {
		if c.value < 0 || c.value > 10 {
			return AuditResult{}, fmt.Errorf("%s must be 0-10, got %d", c.name, c.value)
		}
	}

	overall := scores.Mean()
	if p.OverallScore != nil {
		if *p.OverallScore < 0 || *p.OverallScore > 10 {
			return AuditResult{}, fmt.Errorf("overall_score must be 0-10, got %v", *p.OverallScore)
		}
		overall = *p.OverallScore
	}

	return AuditResult{Scores: scores, Overall: overall, Notes: p.Notes}, nil
}
