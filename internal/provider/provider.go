// Package provider is the uniform contract over N remote LLM endpoints:
// prompt in, {text, tokens, latency, cost} out, with shared error
// classification and retry semantics.
package provider

import "context"

// Role is a conversation turn's speaker, mirroring the provider-agnostic
// chat schema every supported vendor accepts in one form or another.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of the ordered conversation handed to complete.
type Turn struct {
	Role    Role
	Content string
}

// Result is the successful outcome of one completion call.
type Result struct {
	Text         string
	InputTokens  int
	OutputTokens int
	LatencyMs    int
	CostUSD      float64
}

// Provider is the capability interface every vendor adapter satisfies.
// complete_with_usage from the source material is folded into the single
// Complete call since every adapter in this repo always needs usage.
type Provider interface {
	// Complete sends systemPrompt plus the ordered conversation and returns
	// the model's reply with usage telemetry. maxOutputTokens is a soft
	// ceiling; a zero value means "do not forward a cap", except in the
	// Anthropic adapter, which sends 1024 instead. The Google adapter never
	// forwards a cap whatever the value (see google.go).
	Complete(ctx context.Context, systemPrompt string, conversation []Turn, maxOutputTokens int) (Result, error)

	// Name identifies the provider tag stored on Model rows (e.g. "openai").
	Name() string
}
