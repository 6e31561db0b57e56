package provider

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// contentFilterMarkers are substrings the original implementation matches
// against an OpenAI-compatible API error message to distinguish a content
// policy rejection from any other API error.
var contentFilterMarkers = []string{"content_policy", "content filter", "moderation"}

func looksLikeContentFilter(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range contentFilterMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// openAICompatible backs OpenAI, xAI, and DeepSeek: all three expose the
// same chat-completions schema, differing only in base URL and API key, as
// spec.md §6 calls out explicitly. One client implementation serves all
// three instead of three hand-rolled HTTP clients.
type openAICompatible struct {
	name       string
	apiModelID string
	client     *openai.Client
}

func newOpenAICompatible(name, apiModelID, apiKey, baseURL string) *openAICompatible {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &openAICompatible{
		name:       name,
		apiModelID: apiModelID,
		client:     openai.NewClientWithConfig(cfg),
	}
}

func (p *openAICompatible) Name() string { return p.name }

func (p *openAICompatible) Complete(ctx context.Context, systemPrompt string, conversation []Turn, maxOutputTokens int) (Result, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(conversation)+1)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	for _, t := range conversation {
		role := openai.ChatMessageRoleUser
		if t.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Content})
	}

	req := openai.ChatCompletionRequest{
		Model:    p.apiModelID,
		Messages: messages,
	}
	if maxOutputTokens > 0 {
		req.MaxTokens = maxOutputTokens
	}

	start := time.Now()
	return withRetry(ctx, func(attempt int) (Result, int, error) {
		resp, err := p.client.CreateChatCompletion(ctx, req)
		if err != nil {
			statusCode := 0
			var apiErr *openai.APIError
			if errors.As(err, &apiErr) {
				statusCode = apiErr.HTTPStatusCode
				if looksLikeContentFilter(apiErr.Message) {
					return Result{}, statusCode, &ContentFilterError{
						Provider:  p.name,
						ModelName: p.apiModelID,
						Message:   apiErr.Message,
					}
				}
			}
			return Result{}, statusCode, &FatalError{Provider: p.name, Cause: err}
		}

		if len(resp.Choices) == 0 {
			return Result{}, 0, &FatalError{Provider: p.name, Cause: errors.New("no choices returned")}
		}

		text := resp.Choices[0].Message.Content
		if resp.Choices[0].FinishReason == "content_filter" {
			return Result{}, 0, &ContentFilterError{
				Provider:  p.name,
				ModelName: p.apiModelID,
				Message:   "finish_reason=content_filter",
			}
		}

		latencyMs := int(time.Since(start).Milliseconds())
		return Result{
			Text:         text,
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			LatencyMs:    latencyMs,
			CostUSD:      Cost(p.apiModelID, resp.Usage.PromptTokens, resp.Usage.CompletionTokens),
		}, 0, nil
	})
}
