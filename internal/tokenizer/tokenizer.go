// Package tokenizer estimates prompt sizes for chat models.
//
// The estimate is a heuristic, not a real BPE count. It only feeds the
// oversize warning logged before a review request.
package tokenizer

import (
	"strings"
	"unicode/utf8"
)

// Context window sizes (approximate).
const (
	GPT4oMaxTokens      = 128000
	GPT4TurboMaxTokens  = 128000
	GPT4MaxTokens       = 8192
	GPT35TurboMaxTokens = 16384

	// DefaultMaxTokens is assumed for unknown models.
	DefaultMaxTokens = 8192

	// DefaultResponseReserve is left for the reply.
	DefaultResponseReserve = 1024
)

const charsPerToken = 4.0

// EstimateTokens estimates the token count of text. Diffs are punctuation
// heavy and tokenize denser than prose, so code-like text is scaled up.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	chars := utf8.RuneCountInString(text)
	estimate := float64(chars) / charsPerToken

	if isCodeLike(text) {
		estimate *= 1.3
	}
	if whitespaceRatio(text, chars) > 0.3 {
		estimate *= 0.9
	}

	n := int(estimate)
	if n == 0 {
		n = 1
	}
	return n
}

func isCodeLike(text string) bool {
	indicators := []string{
		"diff --git", "@@", "func ", "def ", "class ", "return ",
		"import ", "{", "}", "(", ")", "=>", "//",
	}
	hits := 0
	for _, ind := range indicators {
		if strings.Contains(text, ind) {
			hits++
		}
	}
	return hits >= 3
}

func whitespaceRatio(text string, chars int) float64 {
	count := 0
	for _, r := range text {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			count++
		}
	}
	return float64(count) / float64(chars)
}

// ContextWindow returns the context window of an OpenAI chat model.
func ContextWindow(model string) int {
	model = strings.ToLower(model)
	switch {
	case strings.Contains(model, "gpt-4o"), strings.HasPrefix(model, "o1"), strings.HasPrefix(model, "o3"):
		return GPT4oMaxTokens
	case strings.Contains(model, "gpt-4-turbo"), strings.Contains(model, "gpt-4-1106"), strings.Contains(model, "gpt-4-0125"):
		return GPT4TurboMaxTokens
	case strings.Contains(model, "gpt-4"):
		return GPT4MaxTokens
	case strings.Contains(model, "gpt-3.5"):
		return GPT35TurboMaxTokens
	default:
		return DefaultMaxTokens
	}
}

// Budget describes how a prompt compares to a model's window.
type Budget struct {
	Model     string
	Estimated int
	Limit     int
}

// Check estimates prompt against the model's window minus the reply
// reserve.
func Check(model, prompt string) Budget {
	limit := ContextWindow(model) - DefaultResponseReserve
	return Budget{Model: model, Estimated: EstimateTokens(prompt), Limit: limit}
}

// Fits reports whether the estimate is within the limit.
func (b Budget) Fits() bool {
	return b.Estimated <= b.Limit
}
