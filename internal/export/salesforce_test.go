package export

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/inbox-crm/internal/model"
	"github.com/sells-group/inbox-crm/pkg/salesforce"
)

func TestSyncSalesforce(t *testing.T) {
	mc := new(mockSalesforce)
	ctx := context.Background()

	// Alice already exists; Bob does not.
	mc.On("Query", ctx, mock.MatchedBy(func(soql string) bool {
		return strings.Contains(soql, "alice@techstart.io")
	}), mock.Anything).Run(func(args mock.Arguments) {
		out := args.Get(2).(*[]salesforce.SFContact)
		*out = []salesforce.SFContact{{ID: "003a", Email: "alice@techstart.io"}}
	}).Return(nil).Once()
	mc.On("Query", ctx, mock.MatchedBy(func(soql string) bool {
		return strings.Contains(soql, "bob@enterprise.com")
	}), mock.Anything).Return(nil).Once()
	mc.On("InsertOne", ctx, "Contact", mock.MatchedBy(func(fields map[string]any) bool {
		return fields["LastName"] == "Smith" && fields["FirstName"] == "Bob"
	})).Return("003b", nil).Once()

	// Neither opportunity exists yet.
	mc.On("Query", ctx, mock.MatchedBy(func(soql string) bool {
		return strings.Contains(soql, "FROM Opportunity")
	}), mock.Anything).Return(nil).Times(2)
	mc.On("InsertCollection", ctx, "Opportunity", mock.MatchedBy(func(records []map[string]any) bool {
		return len(records) == 2 && records[0]["StageName"] == "Negotiation/Review"
	})).Return([]salesforce.CollectionResult{
		{ID: "006a", Success: true},
		{ID: "006b", Success: true},
	}, nil).Once()

	res, err := SyncSalesforce(ctx, mc, sampleContacts(), sampleDeals())
	require.NoError(t, err)
	assert.Equal(t, 1, res.ContactsCreated)
	assert.Equal(t, 1, res.ContactsSkipped)
	assert.Equal(t, 2, res.OpportunitiesPushed)
	assert.Equal(t, 0, res.Failures)
	mc.AssertExpectations(t)
}

func TestSyncSalesforce_SkipsExistingOpportunities(t *testing.T) {
	mc := new(mockSalesforce)
	ctx := context.Background()
	deals := sampleDeals()[:1]

	mc.On("Query", ctx, mock.MatchedBy(func(soql string) bool {
		return strings.Contains(soql, "FROM Opportunity")
	}), mock.Anything).Run(func(args mock.Arguments) {
		out := args.Get(2).(*[]salesforce.SFOpportunity)
		*out = []salesforce.SFOpportunity{{ID: "006x", Name: "Q3 Enterprise License"}}
	}).Return(nil).Once()

	res, err := SyncSalesforce(ctx, mc, nil, deals)
	require.NoError(t, err)
	assert.Equal(t, 0, res.OpportunitiesPushed)
	mc.AssertNotCalled(t, "InsertCollection")
}

func TestSyncSalesforce_CountsRejectedRecords(t *testing.T) {
	mc := new(mockSalesforce)
	ctx := context.Background()
	deals := sampleDeals()[:1]

	mc.On("Query", ctx, mock.Anything, mock.Anything).Return(nil).Once()
	mc.On("InsertCollection", ctx, "Opportunity", mock.Anything).
		Return([]salesforce.CollectionResult{
			{Success: false, Errors: []string{"REQUIRED_FIELD_MISSING"}},
		}, nil).Once()

	res, err := SyncSalesforce(ctx, mc, nil, deals)
	require.NoError(t, err)
	assert.Equal(t, 0, res.OpportunitiesPushed)
	assert.Equal(t, 1, res.Failures)
	mc.AssertExpectations(t)
}

func TestOpportunityFields(t *testing.T) {
	d := sampleDeals()[0]
	fields := opportunityFields(d)

	assert.Equal(t, "Q3 Enterprise License", fields["Name"])
	assert.Equal(t, "Negotiation/Review", fields["StageName"])
	assert.Equal(t, float64(45000), fields["Amount"])
	// CloseDate defaults to a month after creation.
	assert.Equal(t, "2023-11-01", fields["CloseDate"])
}

func TestOpportunityFields_ExplicitCloseDate(t *testing.T) {
	d := sampleDeals()[0]
	d.ExpectedCloseDate = "2026-12-31"

	fields := opportunityFields(d)
	assert.Equal(t, "2026-12-31", fields["CloseDate"])
}

func TestOpportunityFields_UnknownStageFallsBack(t *testing.T) {
	d := sampleDeals()[0]
	d.Stage = model.PipelineStage("Imaginary")

	fields := opportunityFields(d)
	assert.Equal(t, "Prospecting", fields["StageName"])
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		name  string
		first string
		last  string
	}{
		{"Alice Chen", "Alice", "Chen"},
		{"Cher", "", "Cher"},
		{"Mary Ann van der Berg", "Mary Ann van der", "Berg"},
		{"", "", "Unknown"},
	}
	for _, tt := range tests {
		first, last := splitName(tt.name)
		assert.Equal(t, tt.first, first, tt.name)
		assert.Equal(t, tt.last, last, tt.name)
	}
}
