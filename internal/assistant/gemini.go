package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// geminiTimeout bounds a single answer generation.
const geminiTimeout = 60 * time.Second

// GeminiProvider answers questions through the Google Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

var _ AnswerProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini-backed AnswerProvider. The API key is
// required; callers model a missing key as an absent provider, not as an
// erroring one.
func NewGeminiProvider(ctx context.Context, apiKey, model string, logger *slog.Logger) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: model, logger: logger}, nil
}

func (g *GeminiProvider) Answer(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, geminiTimeout)
	defer cancel()

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := resp.Text()
	g.logger.Debug("gemini answer generated",
		slog.String("model", g.model),
		slog.Int("prompt_tokens_estimate", EstimateTokens(prompt)),
		slog.Duration("duration", time.Since(start)))
	return text, nil
}
