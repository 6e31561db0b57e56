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

const anthropicEndpoint = "https://api.anthropic.com/v1/messages"

// anthropicProvider speaks Anthropic's native messages endpoint directly.
// No Go client for Anthropic was retrieved anywhere in the example pack,
// so this follows the teacher's own hand-rolled HTTP chat client idiom
// (pkg/core/llm/deepseek.go): request struct, json.Marshal, http.Client,
// decode response struct.
type anthropicProvider struct {
	apiKey     string
	apiModelID string
	httpClient *http.Client
}

func NewAnthropic(apiKey, apiModelID string) Provider {
	return &anthropicProvider{apiKey: apiKey, apiModelID: apiModelID, httpClient: &http.Client{}}
}

func (p *anthropicProvider) Name() string { return "anthropic" }

type anthropicRequest struct {
	Model     string             `json:"model"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
	MaxTokens int                `json:"max_tokens"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *anthropicProvider) Complete(ctx context.Context, systemPrompt string, conversation []Turn, maxOutputTokens int) (Result, error) {
	messages := make([]anthropicMessage, 0, len(conversation))
	for _, t := range conversation {
		role := "user"
		if t.Role == RoleAssistant {
			role = "assistant"
		}
		messages = append(messages, anthropicMessage{Role: role, Content: t.Content})
	}

	if maxOutputTokens <= 0 {
		maxOutputTokens = 1024
	}

	reqBody := anthropicRequest{
		Model:     p.apiModelID,
		System:    systemPrompt,
		Messages:  messages,
		MaxTokens: maxOutputTokens,
	}

	start := time.Now()
	return withRetry(ctx, func(attempt int) (Result, int, error) {
		payload, err := json.Marshal(reqBody)
		if err != nil {
			return Result{}, 0, &FatalError{Provider: "anthropic", Cause: err}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicEndpoint, bytes.NewReader(payload))
		if err != nil {
			return Result{}, 0, &FatalError{Provider: "anthropic", Cause: err}
		}
		req.Header.Set("content-type", "application/json")
		req.Header.Set("x-api-key", p.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return Result{}, 0, &FatalError{Provider: "anthropic", Cause: err}
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return Result{}, resp.StatusCode, &FatalError{Provider: "anthropic", Cause: err}
		}

		var parsed anthropicResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return Result{}, resp.StatusCode, &FatalError{Provider: "anthropic", Cause: fmt.Errorf("decode response: %w", err)}
		}

		if parsed.Error != nil {
			if looksLikeContentFilter(parsed.Error.Message) || parsed.Error.Type == "content_policy_violation" {
				return Result{}, resp.StatusCode, &ContentFilterError{
					Provider:  "anthropic",
					ModelName: p.apiModelID,
					Message:   parsed.Error.Message,
				}
			}
			return Result{}, resp.StatusCode, &FatalError{Provider: "anthropic", Cause: fmt.Errorf("%s: %s", parsed.Error.Type, parsed.Error.Message)}
		}

		if len(parsed.Content) == 0 {
			return Result{}, resp.StatusCode, &FatalError{Provider: "anthropic", Cause: fmt.Errorf("no content in response: %s", string(body))}
		}

		text := parsed.Content[0].Text
		return Result{
			Text:         text,
			InputTokens:  parsed.Usage.InputTokens,
			OutputTokens: parsed.Usage.OutputTokens,
			LatencyMs:    int(time.Since(start).Milliseconds()),
			CostUSD:      Cost(p.apiModelID, parsed.Usage.InputTokens, parsed.Usage.OutputTokens),
		}, resp.StatusCode, nil
	})
}
