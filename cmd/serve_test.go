package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/inbox-crm/internal/crm"
	"github.com/sells-group/inbox-crm/internal/extract"
	"github.com/sells-group/inbox-crm/internal/fixture"
	"github.com/sells-group/inbox-crm/internal/model"
	"github.com/sells-group/inbox-crm/internal/store"
)

type fixedCompleter struct {
	text string
}

func (c fixedCompleter) Complete(context.Context, string) (string, error) {
	return c.text, nil
}

const analysisJSON = `{
	"dealTitle": "CRM Migration",
	"estimatedValue": 25000,
	"summary": "50 seats at roughly $25k annual.",
	"confidenceScore": 88,
	"suggestedNextSteps": ["Schedule a call"]
}`

// newTestRouter builds the HTTP API over a seeded in-memory store.
func newTestRouter(t *testing.T, completer extract.Completer) http.Handler {
	t.Helper()
	st := store.NewMemory()
	ds, err := fixture.Default()
	require.NoError(t, err)
	require.NoError(t, fixture.Seed(context.Background(), st, ds))
	return newRouter(crm.New(st, extract.NewService(completer)))
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServeHealth(t *testing.T) {
	h := newTestRouter(t, fixedCompleter{analysisJSON})

	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServeListEmails(t *testing.T) {
	h := newTestRouter(t, fixedCompleter{analysisJSON})

	rec := doJSON(t, h, http.MethodGet, "/emails", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var emails []model.Email
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &emails))
	assert.Len(t, emails, 3)
}

func TestServeOpenEmail(t *testing.T) {
	h := newTestRouter(t, fixedCompleter{analysisJSON})

	rec := doJSON(t, h, http.MethodGet, "/emails/e2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cx crm.EmailContext
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cx))
	assert.True(t, cx.Email.IsRead)
	require.NotNil(t, cx.Contact)
	assert.Equal(t, "c2", cx.Contact.ID)
	require.Len(t, cx.Deals, 1)
}

func TestServeOpenEmail_NotFound(t *testing.T) {
	h := newTestRouter(t, fixedCompleter{analysisJSON})

	rec := doJSON(t, h, http.MethodGet, "/emails/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeAnalyzeAndAccept(t *testing.T) {
	h := newTestRouter(t, fixedCompleter{analysisJSON})

	// No suggestion yet.
	rec := doJSON(t, h, http.MethodGet, "/suggestion", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Open the unknown-sender email, analyze it.
	rec = doJSON(t, h, http.MethodGet, "/emails/e3", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/emails/e3/analyze", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var suggestion model.ExtractedDealData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &suggestion))
	assert.Equal(t, "CRM Migration", suggestion.DealTitle)

	// Suggestion is now pending and tagged with the email id.
	rec = doJSON(t, h, http.MethodGet, "/suggestion", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pending struct {
		EmailID string `json:"email_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	assert.Equal(t, "e3", pending.EmailID)

	// Accept creates the contact and deal.
	rec = doJSON(t, h, http.MethodPost, "/suggestion/accept", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var accepted struct {
		Contact *model.Contact `json:"contact"`
		Deal    *model.Deal    `json:"deal"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))
	require.NotNil(t, accepted.Contact)
	assert.Equal(t, "Unknown Company", accepted.Contact.Company)
	require.NotNil(t, accepted.Deal)
	assert.Equal(t, model.StageLead, accepted.Deal.Stage)

	// Second accept has nothing pending.
	rec = doJSON(t, h, http.MethodPost, "/suggestion/accept", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServeAnalyze_NotConfigured(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := doJSON(t, h, http.MethodPost, "/emails/e1/analyze", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestServeAddContact_Validation(t *testing.T) {
	h := newTestRouter(t, fixedCompleter{analysisJSON})

	rec := doJSON(t, h, http.MethodPost, "/contacts", map[string]string{"name": "No Email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeAddDeal(t *testing.T) {
	h := newTestRouter(t, fixedCompleter{analysisJSON})

	rec := doJSON(t, h, http.MethodPost, "/deals", map[string]any{
		"title": "Manual Deal",
		"value": 100,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var d model.Deal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, model.StageLead, d.Stage)
}

func TestServeMoveDeal(t *testing.T) {
	h := newTestRouter(t, fixedCompleter{analysisJSON})

	rec := doJSON(t, h, http.MethodPost, "/deals/d1/move", map[string]string{"stage": "Won"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/deals/d1/move", map[string]string{"stage": "Bogus"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown id moves are a silent no-op.
	rec = doJSON(t, h, http.MethodPost, "/deals/ghost/move", map[string]string{"stage": "Won"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestServePipelineAndAnalytics(t *testing.T) {
	h := newTestRouter(t, fixedCompleter{analysisJSON})

	rec := doJSON(t, h, http.MethodGet, "/pipeline", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var pipeline struct {
		Stages []crm.StageMetric `json:"stages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pipeline))
	assert.Len(t, pipeline.Stages, len(model.Stages()))

	rec = doJSON(t, h, http.MethodGet, "/analytics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary crm.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, float64(62000), summary.TotalValue)
	assert.Equal(t, 3, summary.ActiveDeals)
}
