package salesforce

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateContact(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("InsertOne", ctx, "Contact", mock.MatchedBy(func(fields map[string]any) bool {
		return fields["LastName"] == "Chen" && fields["Email"] == "alice@techstart.io"
	})).Return("003new", nil).Once()

	id, err := CreateContact(ctx, mc, map[string]any{
		"FirstName": "Alice",
		"LastName":  "Chen",
		"Email":     "alice@techstart.io",
	})
	require.NoError(t, err)
	assert.Equal(t, "003new", id)
	mc.AssertExpectations(t)
}

func TestCreateContact_MissingLastName(t *testing.T) {
	mc := new(MockClient)

	_, err := CreateContact(context.Background(), mc, map[string]any{"Email": "x@y.z"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "LastName is required")
	mc.AssertNotCalled(t, "InsertOne")
}

func TestCreateOpportunity(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("InsertOne", ctx, "Opportunity", mock.Anything).Return("006new", nil).Once()

	id, err := CreateOpportunity(ctx, mc, map[string]any{
		"Name":      "Q3 Enterprise License",
		"StageName": "Negotiation/Review",
		"CloseDate": "2026-12-31",
		"Amount":    45000.0,
	})
	require.NoError(t, err)
	assert.Equal(t, "006new", id)
	mc.AssertExpectations(t)
}

func TestCreateOpportunity_MissingRequired(t *testing.T) {
	mc := new(MockClient)

	_, err := CreateOpportunity(context.Background(), mc, map[string]any{
		"Name":   "No Stage",
		"Amount": 100.0,
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "StageName is required")
	mc.AssertNotCalled(t, "InsertOne")
}

func TestUpdateOpportunityStage(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("UpdateOne", ctx, "Opportunity", "006xx", map[string]any{
		"StageName": "Closed Won",
	}).Return(nil).Once()

	err := UpdateOpportunityStage(ctx, mc, "006xx", "Closed Won")
	require.NoError(t, err)
	mc.AssertExpectations(t)
}

func TestUpdateOpportunityStage_MissingID(t *testing.T) {
	mc := new(MockClient)

	err := UpdateOpportunityStage(context.Background(), mc, "", "Closed Won")
	assert.Error(t, err)
	mc.AssertNotCalled(t, "UpdateOne")
}

func TestBulkInsertOpportunities_Batches(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	records := make([]map[string]any, 250)
	for i := range records {
		records[i] = map[string]any{"Name": "Deal"}
	}

	mc.On("InsertCollection", ctx, "Opportunity", mock.MatchedBy(func(batch []map[string]any) bool {
		return len(batch) == 200
	})).Return(make([]CollectionResult, 200), nil).Once()
	mc.On("InsertCollection", ctx, "Opportunity", mock.MatchedBy(func(batch []map[string]any) bool {
		return len(batch) == 50
	})).Return(make([]CollectionResult, 50), nil).Once()

	results, err := BulkInsertOpportunities(ctx, mc, records)
	require.NoError(t, err)
	assert.Len(t, results, 250)
	mc.AssertExpectations(t)
}

func TestBulkInsertOpportunities_Empty(t *testing.T) {
	mc := new(MockClient)

	results, err := BulkInsertOpportunities(context.Background(), mc, nil)
	require.NoError(t, err)
	assert.Nil(t, results)
	mc.AssertNotCalled(t, "InsertCollection")
}
