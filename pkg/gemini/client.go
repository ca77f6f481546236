// Package gemini wraps the Google Gemini API for schema-constrained JSON
// generation.
package gemini

import (
	"context"

	"github.com/google/generative-ai-go/genai"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// Client defines the Gemini operations used by the extraction service.
type Client interface {
	// GenerateJSON sends the prompt constrained to produce a single JSON
	// document matching schema, and returns the raw response text.
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
	Close() error
}

// ClientOption configures the Gemini client.
type ClientOption func(*geminiClient)

// WithRateLimit sets a per-second rate limit for API calls.
func WithRateLimit(rps float64) ClientOption {
	return func(c *geminiClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

type geminiClient struct {
	inner   *genai.Client
	model   string
	limiter *rate.Limiter
}

// NewClient creates a new Gemini client for the given model.
func NewClient(ctx context.Context, apiKey, model string, opts ...ClientOption) (Client, error) {
	inner, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, eris.Wrap(err, "gemini: new client")
	}
	c := &geminiClient{inner: inner, model: model}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *geminiClient) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "gemini: rate limit")
		}
	}

	m := c.inner.GenerativeModel(c.model)
	m.GenerationConfig.ResponseMIMEType = "application/json"
	m.GenerationConfig.ResponseSchema = schema

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", eris.Wrap(err, "gemini: generate content")
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", eris.New("gemini: no response candidates")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt), nil
		}
	}
	return "", eris.New("gemini: no text part in response")
}

func (c *geminiClient) Close() error {
	return c.inner.Close()
}
