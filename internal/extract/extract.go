// Package extract turns free-text email content into structured deal
// candidates via an external AI completion call.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/inbox-crm/internal/model"
)

// ErrNotConfigured is returned when no AI provider credential is
// configured. Unlike every other analysis failure, this one is fatal and
// must be surfaced to the user instead of degrading to the fallback.
var ErrNotConfigured = eris.New("extract: ai provider not configured")

// FallbackSummary is the summary text of the deterministic fallback
// suggestion substituted for any failed analysis.
const FallbackSummary = "Could not analyze with AI. Please review manually."

const analysisPrompt = `Analyze the following email to extract potential CRM deal information.
Sender: %s
Subject: %s
Body: %q

Extract the potential deal title, estimated value in USD (if mentioned, otherwise estimate based on context or put 0), a short summary of the email intent, a confidence score (0-100) that this is a sales opportunity, and 2-3 suggested next steps.

Respond with a single JSON object with exactly these fields, all required:
{"dealTitle": "<string>", "estimatedValue": <number>, "summary": "<string>", "confidenceScore": <number 0-100>, "suggestedNextSteps": ["<string>", ...]}`

// Completer abstracts an LLM provider that can answer a prompt with a
// JSON document.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Service is the deal extraction service. A nil completer means no
// credential was configured; Analyze then fails with ErrNotConfigured
// before attempting any network call.
type Service struct {
	completer Completer
}

// NewService creates an extraction service backed by the given provider.
// Pass nil when no credential is configured.
func NewService(c Completer) *Service {
	return &Service{completer: c}
}

// Configured reports whether an AI provider is available.
func (s *Service) Configured() bool {
	return s != nil && s.completer != nil
}

// Analyze runs AI analysis of one email and returns a structured deal
// candidate. Provider and parse failures are not propagated: the caller
// receives the deterministic fallback payload instead, indistinguishable
// in shape from a genuine result (confidence 0 is the only soft signal).
// The sole fatal condition is a missing credential.
func (s *Service) Analyze(ctx context.Context, body, sender, subject string) (*model.ExtractedDealData, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}

	prompt := fmt.Sprintf(analysisPrompt, sender, subject, body)

	text, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		zap.L().Warn("extract: provider call failed, using fallback",
			zap.String("sender", sender),
			zap.Error(err),
		)
		return Fallback(sender), nil
	}

	data, err := parseSuggestion(text)
	if err != nil {
		zap.L().Warn("extract: nonconforming provider response, using fallback",
			zap.String("sender", sender),
			zap.Error(err),
		)
		return Fallback(sender), nil
	}

	return data, nil
}

// Fallback returns the fixed substitute suggestion for a failed analysis.
func Fallback(sender string) *model.ExtractedDealData {
	return &model.ExtractedDealData{
		DealTitle:          "New Opportunity from " + sender,
		EstimatedValue:     0,
		Summary:            FallbackSummary,
		ConfidenceScore:    0,
		SuggestedNextSteps: []string{"Reply to email", "Schedule call"},
	}
}

// parseSuggestion validates the provider response against the expected
// schema: a single JSON object with exactly the five required fields of
// the right types. Any mismatch is an error (which callers degrade to
// the fallback).
func parseSuggestion(text string) (*model.ExtractedDealData, error) {
	cleaned := cleanJSON(text)
	if cleaned == "" {
		return nil, eris.New("extract: empty response")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, eris.Wrap(err, "extract: parse response JSON")
	}

	title, ok := raw["dealTitle"].(string)
	if !ok {
		return nil, eris.New("extract: missing or non-string dealTitle")
	}
	value, ok := toFloat64(raw["estimatedValue"])
	if !ok {
		return nil, eris.New("extract: missing or non-numeric estimatedValue")
	}
	summary, ok := raw["summary"].(string)
	if !ok {
		return nil, eris.New("extract: missing or non-string summary")
	}
	confidence, ok := toFloat64(raw["confidenceScore"])
	if !ok {
		return nil, eris.New("extract: missing or non-numeric confidenceScore")
	}
	rawSteps, ok := raw["suggestedNextSteps"].([]any)
	if !ok {
		return nil, eris.New("extract: missing or non-array suggestedNextSteps")
	}
	steps := make([]string, 0, len(rawSteps))
	for _, s := range rawSteps {
		step, ok := s.(string)
		if !ok {
			return nil, eris.New("extract: non-string entry in suggestedNextSteps")
		}
		steps = append(steps, step)
	}

	return &model.ExtractedDealData{
		DealTitle:          title,
		EstimatedValue:     max(value, 0),
		Summary:            summary,
		ConfidenceScore:    min(max(confidence, 0), 100),
		SuggestedNextSteps: steps,
	}, nil
}

// cleanJSON strips markdown fences and extracts the JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
