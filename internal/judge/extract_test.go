package judge

import "testing"

func TestExtractJSON_DirectParse(t *testing.T) {
	var p auditPayload
	err := extractJSON(`{"accuracy":8,"fairness":9,"thoroughness":7,"reasoning_quality":8,"overall_score":8.0,"notes":"fine"}`, &p)
	if err != nil {
		t.Fatalf("direct parse failed: %v", err)
	}
	if p.Accuracy != 8 {
		t.Errorf("expected accuracy 8, got %d", p.Accuracy)
	}
}

func TestExtractJSON_RepairsTrailingComma(t *testing.T) {
	var p auditPayload
	malformed := `{"accuracy":8,"fairness":9,"thoroughness":7,"reasoning_quality":8,}`
	if err := extractJSON(malformed, &p); err != nil {
		t.Fatalf("expected repair to recover trailing-comma JSON: %v", err)
	}
}

func TestExtractJSON_ParsesMarkdownFencedJSON(t *testing.T) {
	var p judgmentPayload
	fenced := "```json\n{\"winner\":\"pro\",\"reasoning\":\"clear win\",\"pro_score\":80,\"con_score\":40}\n```"
	if err := extractJSON(fenced, &p); err != nil {
		t.Fatalf("expected fenced JSON to be recovered, got: %v", err)
	}
	if p.Winner != "pro" {
		t.Errorf("expected winner pro, got %q", p.Winner)
	}
}

func TestExtractJSON_FailsOnPlainProse(t *testing.T) {
	var p auditPayload
	if err := extractJSON("I cannot produce JSON for this request.", &p); err == nil {
		t.Error("expected an error for non-JSON input")
	}
}
