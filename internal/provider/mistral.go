package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const mistralEndpoint = "https://api.mistral.ai/v1/chat/completions"

// mistralProvider speaks Mistral's native chat-completions endpoint.
// Mistral's own wire schema is close to OpenAI's but no Go client for it
// was retrieved in the example pack, so this follows the same hand-rolled
// HTTP idiom as anthropic.go / the teacher's deepseek.go.
type mistralProvider struct {
	apiKey     string
	apiModelID string
	httpClient *http.Client
}

func NewMistral(apiKey, apiModelID string) Provider {
	return &mistralProvider{apiKey: apiKey, apiModelID: apiModelID, httpClient: &http.Client{}}
}

func (p *mistralProvider) Name() string { return "mistral" }

type mistralRequest struct {
	Model     string            `json:"model"`
	Messages  []mistralMessage  `json:"messages"`
	MaxTokens int               `json:"max_tokens,omitempty"`
}

type mistralMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mistralResponse struct {
	Choices []struct {
		Message      mistralMessage `json:"message"`
		FinishReason string         `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Message string `json:"message"`
}

func (p *mistralProvider) Complete(ctx context.Context, systemPrompt string, conversation []Turn, maxOutputTokens int) (Result, error) {
	messages := make([]mistralMessage, 0, len(conversation)+1)
	messages = append(messages, mistralMessage{Role: "system", Content: systemPrompt})
	for _, t := range conversation {
		role := "user"
		if t.Role == RoleAssistant {
			role = "assistant"
		}
		messages = append(messages, mistralMessage{Role: role, Content: t.Content})
	}

	reqBody := mistralRequest{Model: p.apiModelID, Messages: messages, MaxTokens: maxOutputTokens}

	start := time.Now()
	return withRetry(ctx, func(attempt int) (Result, int, error) {
		payload, err := json.Marshal(reqBody)
		if err != nil {
			return Result{}, 0, &FatalError{Provider: "mistral", Cause: err}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, mistralEndpoint, bytes.NewReader(payload))
		if err != nil {
			return Result{}, 0, &FatalError{Provider: "mistral", Cause: err}
		}
		req.Header.Set("content-type", "application/json")
		req.Header.Set("Authorization", "Bearer "+p.apiKey)

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return Result{}, 0, &FatalError{Provider: "mistral", Cause: err}
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return Result{}, resp.StatusCode, &FatalError{Provider: "mistral", Cause: err}
		}

		var parsed mistralResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return Result{}, resp.StatusCode, &FatalError{Provider: "mistral", Cause: fmt.Errorf("decode response: %w", err)}
		}

		if resp.StatusCode != http.StatusOK {
			if looksLikeContentFilter(parsed.Message) {
				return Result{}, resp.StatusCode, &ContentFilterError{
					Provider:  "mistral",
					ModelName: p.apiModelID,
					Message:   parsed.Message,
				}
			}
			return Result{}, resp.StatusCode, &FatalError{Provider: "mistral", Cause: fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))}
		}

		if len(parsed.Choices) == 0 {
			return Result{}, resp.StatusCode, &FatalError{Provider: "mistral", Cause: fmt.Errorf("no choices in response: %s", string(body))}
		}

		choice := parsed.Choices[0]
		if choice.FinishReason == "content_filter" || choice.FinishReason == "moderation" {
			return Result{}, resp.StatusCode, &ContentFilterError{
				Provider:  "mistral",
				ModelName: p.apiModelID,
				Message:   "finish_reason=" + choice.FinishReason,
			}
		}

		return Result{
			Text:         choice.Message.Content,
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
			LatencyMs:    int(time.Since(start).Milliseconds()),
			CostUSD:      Cost(p.apiModelID, parsed.Usage.PromptTokens, parsed.Usage.CompletionTokens),
		}, resp.StatusCode, nil
	})
}
