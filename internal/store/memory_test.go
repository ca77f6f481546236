package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/inbox-crm/internal/model"
)

func TestMemory_SnapshotsAreImmutable(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()

	require.NoError(t, st.AddDeal(ctx, testDeal("d1", model.StageLead)))
	require.NoError(t, st.AddDeal(ctx, testDeal("d2", model.StageLead)))

	before, err := st.Deals(ctx)
	require.NoError(t, err)

	// Mutations after the snapshot must not write through it.
	require.NoError(t, st.MoveDeal(ctx, "d1", model.StageWon))
	require.NoError(t, st.AddDeal(ctx, testDeal("d3", model.StageLead)))

	assert.Equal(t, model.StageLead, before[0].Stage)
	assert.Len(t, before, 2)

	after, err := st.Deals(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.StageWon, after[0].Stage)
	assert.Len(t, after, 3)
}

func TestMemory_MarkEmailReadNeverReverts(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()

	require.NoError(t, st.AddEmail(ctx, model.Email{ID: "e1"}))
	require.NoError(t, st.MarkEmailRead(ctx, "e1"))
	require.NoError(t, st.MarkEmailRead(ctx, "e1"))

	got, err := st.GetEmail(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, got.IsRead)
}
