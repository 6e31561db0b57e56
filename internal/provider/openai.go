package provider

// NewOpenAI builds the OpenAI chat-completions adapter.
func NewOpenAI(apiKey, apiModelID string) Provider {
	return newOpenAICompatible("openai", apiModelID, apiKey, "")
}
