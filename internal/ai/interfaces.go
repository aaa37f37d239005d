package ai

import (
	"context"
)

// Operation types. Each operation gets its own provider instance, schema,
// prompts and circuit breaker.
const (
	OpFitAnalysis = "fit_analysis"
	OpSuggestions = "suggestions"
)

// TextGenerator is the single outbound model capability: a rendered prompt
// pair in, the model's raw text out. The report pipeline never sees anything
// richer than this, which keeps it testable with canned strings.
type TextGenerator interface {
	Invoke(ctx context.Context, systemPrompt, userPrompt string) (string, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}
