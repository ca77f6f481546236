// Package model defines the CRM domain entities shared across the application.
package model

import "time"

// PipelineStage is the closed set of states a deal passes through.
// Won and Lost are conventionally terminal, but no transition rules are
// enforced: any stage may be set from any other.
type PipelineStage string

const (
	StageLead        PipelineStage = "Lead"
	StageQualified   PipelineStage = "Qualified"
	StageProposal    PipelineStage = "Proposal"
	StageNegotiation PipelineStage = "Negotiation"
	StageWon         PipelineStage = "Won"
	StageLost        PipelineStage = "Lost"
)

// Stages returns all pipeline stages in display order.
func Stages() []PipelineStage {
	return []PipelineStage{
		StageLead,
		StageQualified,
		StageProposal,
		StageNegotiation,
		StageWon,
		StageLost,
	}
}

// ParseStage maps a string to a PipelineStage. The second return is false
// for strings outside the closed set.
func ParseStage(s string) (PipelineStage, bool) {
	for _, st := range Stages() {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Terminal reports whether the stage closes a deal (Won or Lost).
func (s PipelineStage) Terminal() bool {
	return s == StageWon || s == StageLost
}

// Contact is a person record linked to deals by id. Email is the join key
// to Email.SenderEmail; uniqueness is expected but not enforced, and
// lookups return the first match.
type Contact struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Email   string   `json:"email" yaml:"email"`
	Company string   `json:"company" yaml:"company"`
	Tags    []string `json:"tags" yaml:"tags"`
	Avatar  string   `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Phone   string   `json:"phone,omitempty" yaml:"phone,omitempty"`
}

// Deal is a tracked sales opportunity. Stage is the only field mutated
// after creation, via the pipeline move operation.
type Deal struct {
	ID                string        `json:"id" yaml:"id"`
	Title             string        `json:"title" yaml:"title"`
	Value             float64       `json:"value" yaml:"value"`
	Stage             PipelineStage `json:"stage" yaml:"stage"`
	ContactID         string        `json:"contact_id" yaml:"contact_id"`
	CreatedAt         time.Time     `json:"created_at" yaml:"created_at"`
	Notes             string        `json:"notes" yaml:"notes"`
	ExpectedCloseDate string        `json:"expected_close_date,omitempty" yaml:"expected_close_date,omitempty"`
}

// Email is a message in the inbox. Timestamp is a display string, not
// necessarily sortable. IsRead is set on selection and never reverts.
type Email struct {
	ID          string `json:"id" yaml:"id"`
	Sender      string `json:"sender" yaml:"sender"`
	SenderEmail string `json:"sender_email" yaml:"sender_email"`
	Subject     string `json:"subject" yaml:"subject"`
	Body        string `json:"body" yaml:"body"`
	Timestamp   string `json:"timestamp" yaml:"timestamp"`
	IsRead      bool   `json:"is_read" yaml:"is_read"`
}

// ExtractedDealData is the structured result of AI analysis of a single
// email. It is transient: consumed at most once to produce a Contact/Deal
// pair, or discarded when the open email changes. The JSON tags match the
// provider's response schema.
type ExtractedDealData struct {
	DealTitle          string   `json:"dealTitle"`
	EstimatedValue     float64  `json:"estimatedValue"`
	Summary            string   `json:"summary"`
	ConfidenceScore    float64  `json:"confidenceScore"`
	SuggestedNextSteps []string `json:"suggestedNextSteps"`
}
