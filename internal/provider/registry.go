package provider

import "fmt"

// Factory constructs a Provider for one (apiKey, apiModelID) pair.
type Factory func(apiKey, apiModelID string) Provider

// factories maps a Model.Provider tag to its adapter constructor.
var factories = map[string]Factory{
	"openai":    NewOpenAI,
	"anthropic": NewAnthropic,
	"google":    NewGoogle,
	"mistral":   NewMistral,
	"xai":       NewXAI,
	"deepseek":  NewDeepSeek,
}

// New builds a Provider for a Model row's provider tag and remote model id.
func New(providerTag, apiKey, apiModelID string) (Provider, error) {
	factory, ok := factories[providerTag]
	if !ok {
		return nil, fmt.Errorf("unknown provider tag %q", providerTag)
	}
	return factory(apiKey, apiModelID), nil
}
