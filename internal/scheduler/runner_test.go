package scheduler

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/debatelab/engine/internal/provider"
)

func TestIsRestartable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"content filter", &provider.ContentFilterError{Provider: "openai", ModelName: "gpt-4o", Message: "flagged"}, true},
		{"timeout", &provider.TimeoutError{Provider: "google", ModelName: "gemini-3-pro", Seconds: 120}, true},
		{"no replacement", &provider.NoReplacementError{Role: "judge"}, true},
		{"wrapped content filter", errWrap(&provider.ContentFilterError{Provider: "mistral"}), true},
		{"fatal", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isRestartable(tc.err); got != tc.want {
				t.Errorf("isRestartable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func errWrap(err error) error {
	return &wrapped{err}
}

type wrapped struct{ err error }

func (w *wrapped) Error() string { return "wrapped: " + w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }

func TestExcuseRecordJSONShape(t *testing.T) {
	rec := excuseRecord{
		ModelID:      "11111111-1111-1111-1111-111111111111",
		ModelName:    "gpt-4o",
		Role:         "debater_con",
		Provider:     "openai",
		Phase:        "opening",
		ErrorMessage: "content filter triggered",
		Attempt:      2,
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal excuse record: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, field := range []string{"model_id", "model_name", "role", "provider", "phase", "error_message", "attempt"} {
		if _, ok := decoded[field]; !ok {
			t.Errorf("expected field %q in the serialized excuse record", field)
		}
	}
	if _, ok := decoded["reason"]; ok {
		t.Errorf("empty reason should be omitted, got %v", decoded["reason"])
	}
}
