package salesforce

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFindContactByEmail_Found(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("Query", ctx, mock.MatchedBy(func(soql string) bool {
		return strings.Contains(soql, "FROM Contact") &&
			strings.Contains(soql, "Email = 'bob@enterprise.com'")
	}), mock.Anything).Run(func(args mock.Arguments) {
		out := args.Get(2).(*[]SFContact)
		*out = []SFContact{{ID: "003xx", LastName: "Smith", Email: "bob@enterprise.com"}}
	}).Return(nil).Once()

	contact, err := FindContactByEmail(ctx, mc, "bob@enterprise.com")
	require.NoError(t, err)
	require.NotNil(t, contact)
	assert.Equal(t, "003xx", contact.ID)
	mc.AssertExpectations(t)
}

func TestFindContactByEmail_NotFound(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("Query", ctx, mock.Anything, mock.Anything).Return(nil).Once()

	contact, err := FindContactByEmail(ctx, mc, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, contact)
	mc.AssertExpectations(t)
}

func TestFindContactByEmail_EscapesQuotes(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("Query", ctx, mock.MatchedBy(func(soql string) bool {
		return strings.Contains(soql, `o\'brien@example.com`)
	}), mock.Anything).Return(nil).Once()

	_, err := FindContactByEmail(ctx, mc, "o'brien@example.com")
	require.NoError(t, err)
	mc.AssertExpectations(t)
}

func TestFindOpportunityByName(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("Query", ctx, mock.MatchedBy(func(soql string) bool {
		return strings.Contains(soql, "FROM Opportunity") &&
			strings.Contains(soql, "Name = 'Design Partnership'")
	}), mock.Anything).Run(func(args mock.Arguments) {
		out := args.Get(2).(*[]SFOpportunity)
		*out = []SFOpportunity{{ID: "006xx", Name: "Design Partnership", StageName: "Proposal/Price Quote", Amount: 12000}}
	}).Return(nil).Once()

	opp, err := FindOpportunityByName(ctx, mc, "Design Partnership")
	require.NoError(t, err)
	require.NotNil(t, opp)
	assert.Equal(t, float64(12000), opp.Amount)
	mc.AssertExpectations(t)
}

func TestFindOpportunityByName_QueryError(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("Query", ctx, mock.Anything, mock.Anything).Return(assert.AnError).Once()

	opp, err := FindOpportunityByName(ctx, mc, "Broken")
	assert.Error(t, err)
	assert.Nil(t, opp)
	mc.AssertExpectations(t)
}
