package judge

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// categoryPayload is the nested sub-category block shared by pro_scores and
// con_scores in the judge's JSON.
type categoryPayload struct {
	LogicalConsistency int `json:"logical_consistency"`
	Evidence            int `json:"evidence"`
	Persuasiveness      int `json:"persuasiveness"`
	Engagement          int `json:"engagement"`
}

// judgmentPayload is the judge's JSON response shape. ProScore/ConScore are
// the legacy flat fields a model occasionally emits instead of the rubric
// breakdown; when present without pro_scores/con_scores, parseJudgment
// falls back to them and records a degraded-parse note.
type judgmentPayload struct {
	ProScores *categoryPayload `json:"pro_scores"`
	ConScores *categoryPayload `json:"con_scores"`
	ProScore  *int             `json:"pro_score"`
	ConScore  *int             `json:"con_score"`
	Winner    string           `json:"winner"`
	Reasoning string           `json:"reasoning"`
}

// auditPayload is the auditor's JSON response shape.
type auditPayload struct {
	Accuracy         int      `json:"accuracy"`
	Fairness         int      `json:"fairness"`
	Thoroughness     int      `json:"thoroughness"`
	ReasoningQuality int      `json:"reasoning_quality"`
	OverallScore     *float64 `json:"overall_score"`
	Notes            string   `json:"notes"`
}

// extractJSON tries, in order: direct unmarshal, json-repair followed by
// unmarshal, and Hjson's lenient parser followed by unmarshal, decoding
// into the judge/audit payload shape passed as out.
func extractJSON(text string, out interface{}) error {
	if err := json.Unmarshal([]byte(text), out); err == nil {
		return nil
	}

	if repaired, err := jsonrepair.RepairJSON(text); err == nil {
		if err := json.Unmarshal([]byte(repaired), out); err == nil {
			return nil
		}
	}

	var generic interface{}
	if err := hjson.Unmarshal([]byte(text), &generic); err == nil {
		normalized, err := json.Marshal(generic)
		if err == nil {
			if err := json.Unmarshal(normalized, out); err == nil {
				return nil
			}
		}
	}

	return fmt.Errorf("no valid JSON found in response")
}
