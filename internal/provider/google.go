package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// googleSafetyThresholds lowers the two categories irrelevant to
// adversarial debate content (harassment, hate speech) to BLOCK_NONE and
// leaves the remaining categories at BLOCK_ONLY_HIGH, matching the
// original provider's DEBATE_SAFETY_SETTINGS table verbatim.
var googleSafetyThresholds = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
}

// googleProvider backs Gemini. It intentionally never forwards
// max_output_tokens: the original provider's own comment documents a
// Google SDK bug where setting a token cap spuriously produces
// finish_reason=SAFETY on completely benign content, so that parameter is
// dropped regardless of what the caller asks for.
type googleProvider struct {
	apiKey     string
	apiModelID string
}

func NewGoogle(apiKey, apiModelID string) Provider {
	return &googleProvider{apiKey: apiKey, apiModelID: apiModelID}
}

func (p *googleProvider) Name() string { return "google" }

func (p *googleProvider) Complete(ctx context.Context, systemPrompt string, conversation []Turn, _ int) (Result, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return Result{}, &FatalError{Provider: "google", Cause: fmt.Errorf("create client: %w", err)}
	}

	contents := make([]*genai.Content, 0, len(conversation))
	for _, t := range conversation {
		role := "user"
		if t.Role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: t.Content}},
		})
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.7)),
		SafetySettings:   googleSafetyThresholds,
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
	}

	start := time.Now()
	result, err := withRetry(ctx, func(attempt int) (Result, int, error) {
		resp, err := client.Models.GenerateContent(ctx, p.apiModelID, contents, config)
		if err != nil {
			return Result{}, 0, &FatalError{Provider: "google", Cause: err}
		}

		if len(resp.Candidates) == 0 {
			return Result{}, 0, &FatalError{Provider: "google", Cause: errors.New("no candidates returned")}
		}

		cand := resp.Candidates[0]
		// finish_reason 2 is SAFETY in the Gemini API; the SDK surfaces it
		// as the typed FinishReasonSafety sentinel.
		if cand.FinishReason == genai.FinishReasonSafety {
			return Result{}, 0, &ContentFilterError{
				Provider:  "google",
				ModelName: p.apiModelID,
				Message:   "finish_reason=SAFETY",
			}
		}

		text := resp.Text()
		if strings.TrimSpace(text) == "" && cand.FinishReason != genai.FinishReasonStop {
			return Result{}, 0, &FatalError{Provider: "google", Cause: fmt.Errorf("empty response, finish_reason=%v", cand.FinishReason)}
		}

		var inputTokens, outputTokens int
		if resp.UsageMetadata != nil {
			inputTokens = int(resp.UsageMetadata.PromptTokenCount)
			outputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		}

		return Result{
			Text:         text,
			InputTokens:  inputTokens,
			OutputTokens: outputTokens,
			LatencyMs:    int(time.Since(start).Milliseconds()),
			CostUSD:      Cost(p.apiModelID, inputTokens, outputTokens),
		}, 0, nil
	})
	return result, err
}
