package provider

const xaiBaseURL = "https://api.x.ai/v1"

// NewXAI builds the xAI adapter. xAI's API follows the OpenAI-compatible
// chat schema, so it reuses openAICompatible with a different base URL.
func NewXAI(apiKey, apiModelID string) Provider {
	return newOpenAICompatible("xai", apiModelID, apiKey, xaiBaseURL)
}
