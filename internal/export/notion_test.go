package export

import (
	"context"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func emptyQueryResponse() *notionapi.DatabaseQueryResponse {
	return &notionapi.DatabaseQueryResponse{Results: []notionapi.Page{}, HasMore: false}
}

func TestSyncNotion_CreatesMissingPages(t *testing.T) {
	mc := new(mockNotion)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-deals", mock.Anything).
		Return(emptyQueryResponse(), nil).Times(2)
	mc.On("CreatePage", ctx, mock.MatchedBy(func(req *notionapi.PageCreateRequest) bool {
		return req.Parent.DatabaseID == notionapi.DatabaseID("db-deals")
	})).Return(&notionapi.Page{ID: "new-page"}, nil).Times(2)

	res, err := SyncNotion(ctx, mc, "db-deals", sampleContacts(), sampleDeals())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 0, res.Updated)
	mc.AssertExpectations(t)
}

func TestSyncNotion_UpdatesExistingPage(t *testing.T) {
	mc := new(mockNotion)
	ctx := context.Background()
	deals := sampleDeals()[:1]

	mc.On("QueryDatabase", ctx, "db-deals", mock.Anything).
		Return(&notionapi.DatabaseQueryResponse{
			Results: []notionapi.Page{{ID: "page-d1"}},
			HasMore: false,
		}, nil).Once()
	mc.On("UpdatePage", ctx, "page-d1", mock.MatchedBy(func(req *notionapi.PageUpdateRequest) bool {
		tp, ok := req.Properties["Name"].(notionapi.TitleProperty)
		return ok && tp.Title[0].Text.Content == "Q3 Enterprise License"
	})).Return(&notionapi.Page{ID: "page-d1"}, nil).Once()

	res, err := SyncNotion(ctx, mc, "db-deals", sampleContacts(), deals)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 1, res.Updated)
	mc.AssertExpectations(t)
}

func TestSyncNotion_LookupError(t *testing.T) {
	mc := new(mockNotion)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-deals", mock.Anything).
		Return(nil, assert.AnError).Once()

	_, err := SyncNotion(ctx, mc, "db-deals", sampleContacts(), sampleDeals())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "export: notion lookup")
	mc.AssertNotCalled(t, "CreatePage")
}

func TestBuildDealProperties(t *testing.T) {
	d := sampleDeals()[0]
	props := buildDealProperties(d, "Bob Smith")

	tp, ok := props["Name"].(notionapi.TitleProperty)
	require.True(t, ok)
	assert.Equal(t, "Q3 Enterprise License", tp.Title[0].Text.Content)

	np, ok := props["Value"].(notionapi.NumberProperty)
	require.True(t, ok)
	assert.Equal(t, float64(45000), np.Number)

	sp, ok := props["Stage"].(notionapi.SelectProperty)
	require.True(t, ok)
	assert.Equal(t, "Negotiation", sp.Select.Name)

	rp, ok := props["Contact"].(notionapi.RichTextProperty)
	require.True(t, ok)
	assert.Equal(t, "Bob Smith", rp.RichText[0].Text.Content)

	_, hasNotes := props["Notes"]
	assert.True(t, hasNotes)
}

func TestBuildDealProperties_OmitsEmptyFields(t *testing.T) {
	props := buildDealProperties(sampleDeals()[1], "")

	_, hasContact := props["Contact"]
	assert.False(t, hasContact)
	_, hasNotes := props["Notes"]
	assert.False(t, hasNotes)
}
