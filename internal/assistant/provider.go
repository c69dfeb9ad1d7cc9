// Package assistant runs the product-scoped conversational assistant: a
// transcript per product, grounded prompts, and delegation to an external
// answer provider.
package assistant

import "context"

// AnswerProvider generates a natural-language answer for a grounding
// prompt. Availability is decided once at startup: a session holds either a
// configured provider or nil. There is no per-call capability check.
type AnswerProvider interface {
	Answer(ctx context.Context, prompt string) (string, error)
}

// AnswerFunc adapts a function to AnswerProvider.
type AnswerFunc func(ctx context.Context, prompt string) (string, error)

func (f AnswerFunc) Answer(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Fixed transcript texts. The assistant always answers; failures surface as
// these turns, never as errors to the caller.
const (
	// UnconfiguredText is appended when no provider was bound at startup.
	UnconfiguredText = "AI service is not configured (API Key missing)."
	// FallbackText is appended when the provider fails or returns nothing.
	FallbackText = "Sorry, I'm having trouble connecting to the product knowledge base right now."
)
