package provider

// PriceTier is a model's per-1M-token input/output price in USD. Kept as
// data, separate from adapter code, so adding a model is an edit to
// PriceTable below, not to any adapter.
type PriceTier struct {
	InputPricePer1M  float64
	OutputPricePer1M float64
}

// PriceTable is model-indexed by the remote API model identifier, not by
// display name, mirroring the price tables in the original providers.
var PriceTable = map[string]PriceTier{
	// OpenAI. From the original provider's literal price table.
	"gpt-4o":      {InputPricePer1M: 2.50, OutputPricePer1M: 10.00},
	"gpt-4o-mini": {InputPricePer1M: 0.15, OutputPricePer1M: 0.60},

	// Google. From the original provider's literal price table.
	"gemini-2.0-flash":      {InputPricePer1M: 0.10, OutputPricePer1M: 0.40},
	"gemini-2.5-flash":      {InputPricePer1M: 0.15, OutputPricePer1M: 0.60},
	"gemini-2.5-pro":        {InputPricePer1M: 1.25, OutputPricePer1M: 10.00},
	"gemini-3-pro-preview":  {InputPricePer1M: 2.00, OutputPricePer1M: 12.00},

	// Anthropic, Mistral, xAI, DeepSeek: no price table was present in the
	// retrieved original source for these providers. These are
	// configuration placeholders an operator should correct; they are data,
	// not behavior.
	"claude-3-5-sonnet-latest": {InputPricePer1M: 3.00, OutputPricePer1M: 15.00},
	"claude-3-5-haiku-latest":  {InputPricePer1M: 0.80, OutputPricePer1M: 4.00},
	"mistral-large-latest":     {InputPricePer1M: 2.00, OutputPricePer1M: 6.00},
	"mistral-small-latest":     {InputPricePer1M: 0.20, OutputPricePer1M: 0.60},
	"grok-2-latest":            {InputPricePer1M: 2.00, OutputPricePer1M: 10.00},
	"deepseek-chat":            {InputPricePer1M: 0.27, OutputPricePer1M: 1.10},
}

// Cost computes the USD cost of a completion: (input*inPrice + output*outPrice) / 1e6.
func Cost(apiModelID string, inputTokens, outputTokens int) float64 {
	tier, ok := PriceTable[apiModelID]
	if !ok {
		return 0
	}
	return (float64(inputTokens)*tier.InputPricePer1M + float64(outputTokens)*tier.OutputPricePer1M) / 1e6
}
