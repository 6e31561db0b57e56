package provider

const deepseekBaseURL = "https://api.deepseek.com/v1"

// NewDeepSeek builds the DeepSeek adapter. DeepSeek's chat-completions
// endpoint is OpenAI-compatible, so it reuses openAICompatible with a
// different base URL, replacing the teacher's hand-rolled net/http client
// (pkg/core/llm/deepseek.go) with the pack's go-openai client.
func NewDeepSeek(apiKey, apiModelID string) Provider {
	return newOpenAICompatible("deepseek", apiModelID, apiKey, deepseekBaseURL)
}
