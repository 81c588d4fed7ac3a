package domain

import (
	"fmt"
	"unicode"
)

// TokensPerWord is the approximation ratio (1 word ≈ 1.3 tokens).
const TokensPerWord = 1.3

// Pricing is the list price of a model in USD per million tokens.
type Pricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

var modelPricing = map[ChatModel]Pricing{
	ModelGPT35Turbo: {InputPerMillion: 0.50, OutputPerMillion: 1.50},
	ModelGPT4:       {InputPerMillion: 30, OutputPerMillion: 60},
	ModelGPT4_32k:   {InputPerMillion: 60, OutputPerMillion: 120},
	ModelGPT4Turbo:  {InputPerMillion: 10, OutputPerMillion: 30},
}

// PriceFor returns the pricing of model, or the zero Pricing when unknown.
func PriceFor(model ChatModel) Pricing {
	return modelPricing[model]
}

// Cost returns the USD cost of usage.
func (p Pricing) Cost(usage Usage) float64 {
	input := (float64(usage.PromptTokens) / 1_000_000) * p.InputPerMillion
	output := (float64(usage.CompletionTokens) / 1_000_000) * p.OutputPerMillion
	return input + output
}

// EstimateTokens estimates the number of tokens in text with a word count.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	wordCount := 0
	inWord := false
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if !inWord {
				wordCount++
				inWord = true
			}
		} else {
			inWord = false
		}
	}

	tokens := int(float64(wordCount) * TokensPerWord)
	if tokens == 0 && wordCount > 0 {
		tokens = 1
	}
	return tokens
}

// FormatCost formats a USD amount with enough precision to be non-zero.
func FormatCost(amount float64) string {
	switch {
	case amount < 0.0001:
		return fmt.Sprintf("$%.6f", amount)
	case amount < 0.01:
		return fmt.Sprintf("$%.4f", amount)
	default:
		return fmt.Sprintf("$%.2f", amount)
	}
}
