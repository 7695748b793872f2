package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intake-backend/internal/models"
)

func TestMaterializeWholeBox(t *testing.T) {
	lines := []LineItem{
		{SKU: "A1", Quantity: 5},
		{SKU: "B2", Quantity: 1},
	}
	meta := SharedMetadata{Country: "US", Packer: "jo", Remark: "fragile"}

	records, err := MaterializeWholeBox(lines, meta, "op-7")
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "A1", first.SKU)
	// For whole boxes the parsed integer is a box count and each box is one unit
	assert.Equal(t, 5, first.TotalQuantity)
	assert.Equal(t, 5, first.TotalBoxes)
	assert.Equal(t, models.BoxTypeWhole, first.BoxType)
	assert.Nil(t, first.MixBoxGroupKey)
	assert.Equal(t, "US", first.Country)
	assert.Equal(t, "op-7", first.Operator)
	assert.Equal(t, "jo", first.Packer)
	assert.Equal(t, "fragile", first.Remark)
	assert.Equal(t, models.StatusPending, first.Status)

	assert.Equal(t, 1, records[1].TotalQuantity)
	assert.Equal(t, 1, records[1].TotalBoxes)
}

func TestMaterializeWholeBoxRejectsEmpty(t *testing.T) {
	_, err := MaterializeWholeBox(nil, SharedMetadata{}, "op-1")
	assert.ErrorIs(t, err, ErrNoLineItems)

	_, err = MaterializeWholeBox([]LineItem{}, SharedMetadata{}, "op-1")
	assert.ErrorIs(t, err, ErrNoLineItems)
}

func TestMaterializeMixedBoxes(t *testing.T) {
	s, err := StartSession("sess-9", 2, SharedMetadata{Country: "JP", Packer: "kei", Remark: "r"}, "op-2")
	require.NoError(t, err)
	require.NoError(t, s.CommitCurrentBox("A 1\nB 2"))
	require.NoError(t, s.CommitCurrentBox("C 3"))

	records, err := MaterializeMixedBoxes(s)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Box 1 members share one key, box 2 gets a different one
	require.NotNil(t, records[0].MixBoxGroupKey)
	require.NotNil(t, records[1].MixBoxGroupKey)
	require.NotNil(t, records[2].MixBoxGroupKey)
	assert.Equal(t, *records[0].MixBoxGroupKey, *records[1].MixBoxGroupKey)
	assert.NotEqual(t, *records[0].MixBoxGroupKey, *records[2].MixBoxGroupKey)

	for _, r := range records {
		assert.Equal(t, models.BoxTypeMixed, r.BoxType)
		assert.Equal(t, 1, r.TotalBoxes)
		assert.Equal(t, "JP", r.Country)
		assert.Equal(t, "op-2", r.Operator)
		assert.Equal(t, "kei", r.Packer)
		assert.Equal(t, "r", r.Remark)
		assert.Equal(t, models.StatusPending, r.Status)
		assert.True(t, r.IsMixed())
	}

	// Quantities stay per-line
	assert.Equal(t, 1, records[0].TotalQuantity)
	assert.Equal(t, 2, records[1].TotalQuantity)
	assert.Equal(t, 3, records[2].TotalQuantity)
}

func TestMaterializeMixedBoxesEachBoxGetsFreshKey(t *testing.T) {
	s, err := StartSession("sess-10", 3, SharedMetadata{Country: "FR"}, "op-3")
	require.NoError(t, err)
	require.NoError(t, s.CommitCurrentBox("A 1"))
	require.NoError(t, s.CommitCurrentBox("A 1"))
	require.NoError(t, s.CommitCurrentBox("A 1"))

	records, err := MaterializeMixedBoxes(s)
	require.NoError(t, err)
	require.Len(t, records, 3)

	keys := map[string]bool{}
	for _, r := range records {
		require.NotNil(t, r.MixBoxGroupKey)
		keys[*r.MixBoxGroupKey] = true
	}
	assert.Len(t, keys, 3)
}

func TestMaterializeMixedBoxesRequiresCompletion(t *testing.T) {
	s, err := StartSession("sess-11", 2, SharedMetadata{Country: "FR"}, "op-3")
	require.NoError(t, err)
	require.NoError(t, s.CommitCurrentBox("A 1"))

	_, err = MaterializeMixedBoxes(s)
	assert.ErrorIs(t, err, ErrSessionNotCompleted)

	s.Cancel()
	_, err = MaterializeMixedBoxes(s)
	assert.ErrorIs(t, err, ErrSessionNotCompleted)
}
