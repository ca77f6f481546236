package extract

import (
	"context"

	"github.com/google/generative-ai-go/genai"

	"github.com/sells-group/inbox-crm/pkg/anthropic"
	"github.com/sells-group/inbox-crm/pkg/gemini"
)

const systemPrompt = "You are a CRM assistant that extracts structured sales-opportunity data from emails. Respond with valid JSON only."

// AnthropicCompleter adapts an Anthropic client to the Completer interface.
type AnthropicCompleter struct {
	Client    anthropic.Client
	Model     string
	MaxTokens int64
}

func (a AnthropicCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := a.Client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     a.Model,
		MaxTokens: a.MaxTokens,
		System:    systemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// dealSchema constrains Gemini responses to the ExtractedDealData shape.
var dealSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"dealTitle": {
			Type:        genai.TypeString,
			Description: "A concise title for the potential deal",
		},
		"estimatedValue": {
			Type:        genai.TypeNumber,
			Description: "Estimated value in USD",
		},
		"summary": {
			Type:        genai.TypeString,
			Description: "Brief summary of the email intent",
		},
		"confidenceScore": {
			Type:        genai.TypeNumber,
			Description: "Confidence score between 0 and 100",
		},
		"suggestedNextSteps": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "List of actionable next steps",
		},
	},
	Required: []string{"dealTitle", "estimatedValue", "summary", "confidenceScore", "suggestedNextSteps"},
}

// GeminiCompleter adapts a Gemini client to the Completer interface,
// enforcing the deal schema at the provider level.
type GeminiCompleter struct {
	Client gemini.Client
}

func (g GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return g.Client.GenerateJSON(ctx, prompt, dealSchema)
}
