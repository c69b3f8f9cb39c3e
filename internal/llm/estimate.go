package llm

// EstimateTokens gives a rough token count for text (4 chars per token).
func EstimateTokens(text string) int {
	return len(text) / 4
}

// pricing is USD per 1K tokens: input, output.
var pricing = map[string][2]float64{
	"gpt-4o":        {0.0025, 0.01},
	"gpt-4o-mini":   {0.00015, 0.0006},
	"gpt-4-turbo":   {0.01, 0.03},
	"gpt-3.5-turbo": {0.0005, 0.0015},
}

// EstimateCost estimates the USD cost of a call. The second return is false
// when the model has no known pricing.
func EstimateCost(model string, promptTokens, completionTokens int) (float64, bool) {
	prices, ok := pricing[model]
	if !ok {
		return 0, false
	}
	cost := float64(promptTokens)/1000*prices[0] + float64(completionTokens)/1000*prices[1]
	return cost, true
}
