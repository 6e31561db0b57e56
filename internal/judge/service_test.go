package judge

import (
	"context"
	"testing"
	"time"

	"github.com/debatelab/engine/internal/provider"
	"github.com/debatelab/engine/internal/store"
)

// fakeProvider returns a scripted sequence of responses, one per call.
type fakeProvider struct {
	responses []string
	calls     int
}

func (f *fakeProvider) Complete(ctx context.Context, systemPrompt string, conversation []provider.Turn, maxOutputTokens int) (provider.Result, error) {
	idx := f.calls
	f.calls++
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return provider.Result{Text: f.responses[idx]}, nil
}

func (f *fakeProvider) Name() string { return "fake" }

func TestCallWithJSONRetry_NudgesOnceOnMalformedJSON(t *testing.T) {
	prov := &fakeProvider{responses: []string{
		"Sorry, here are my thoughts without JSON.",
		`{"accuracy":8,"fairness":7,"thoroughness":9,"reasoning_quality":8,"overall_score":8.0,"notes":"ok"}`,
	}}
	s := &Service{Timeout: time.Second}
	model := &store.Model{Provider: "fake", Name: "fake-model"}

	response, err := s.callWithJSONRetry(context.Background(), prov, "system", "evaluate this", 500, model, &auditPayload{})
	if err != nil {
		t.Fatalf("expected the nudge retry to recover valid JSON, got error: %v", err)
	}
	if prov.calls != 2 {
		t.Errorf("expected exactly one retry call (2 total), got %d calls", prov.calls)
	}

	var payload auditPayload
	if err := extractJSON(response, &payload); err != nil {
		t.Fatalf("final response should be valid JSON: %v", err)
	}
	if payload.Accuracy != 8 {
		t.Errorf("expected accuracy 8 from the recovered payload, got %d", payload.Accuracy)
	}
}

func TestCallWithJSONRetry_SucceedsImmediatelyOnValidJSON(t *testing.T) {
	prov := &fakeProvider{responses: []string{
		`{"accuracy":9,"fairness":9,"thoroughness":9,"reasoning_quality":9}`,
	}}
	s := &Service{Timeout: time.Second}
	model := &store.Model{Provider: "fake", Name: "fake-model"}

	_, err := s.callWithJSONRetry(context.Background(), prov, "system", "evaluate this", 500, model, &auditPayload{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prov.calls != 1 {
		t.Errorf("valid JSON on the first call should not trigger a retry, got %d calls", prov.calls)
	}
}
