package grouping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intake-backend/internal/models"
)

func whole(id, sku string, qty int) *models.InventoryRecord {
	return &models.InventoryRecord{
		ID:            id,
		SKU:           sku,
		TotalQuantity: qty,
		TotalBoxes:    qty,
		BoxType:       models.BoxTypeWhole,
	}
}

func mixed(id, sku string, qty int, key string) *models.InventoryRecord {
	return &models.InventoryRecord{
		ID:             id,
		SKU:            sku,
		TotalQuantity:  qty,
		TotalBoxes:     1,
		BoxType:        models.BoxTypeMixed,
		MixBoxGroupKey: &key,
	}
}

func TestProjectMergesGroupRuns(t *testing.T) {
	records := []*models.InventoryRecord{
		whole("r1", "W1", 4),
		mixed("r2", "A", 1, "g1"),
		mixed("r3", "B", 2, "g1"),
		mixed("r4", "C", 3, "g1"),
		mixed("r5", "D", 1, "g2"),
		whole("r6", "W2", 2),
	}

	rows := Project(records)
	require.Len(t, rows, len(records))

	assert.Equal(t, 1, rows[0].RowSpan)
	assert.True(t, rows[0].IsGroupAnchor)

	// First group member carries the full span, the rest are absorbed
	assert.Equal(t, 3, rows[1].RowSpan)
	assert.True(t, rows[1].IsGroupAnchor)
	assert.Equal(t, 0, rows[2].RowSpan)
	assert.False(t, rows[2].IsGroupAnchor)
	assert.Equal(t, 0, rows[3].RowSpan)

	assert.Equal(t, 1, rows[4].RowSpan)
	assert.True(t, rows[4].IsGroupAnchor)

	assert.Equal(t, 1, rows[5].RowSpan)
}

func TestProjectSpanSumEqualsRowCount(t *testing.T) {
	records := []*models.InventoryRecord{
		mixed("r1", "A", 1, "g1"),
		mixed("r2", "B", 2, "g1"),
		whole("r3", "W", 5),
		mixed("r4", "C", 1, "g2"),
		mixed("r5", "D", 1, "g2"),
		mixed("r6", "E", 9, "g2"),
	}

	rows := Project(records)
	sum := 0
	for _, row := range rows {
		sum += row.RowSpan
	}
	assert.Equal(t, len(records), sum)
}

func TestProjectAdjacentDistinctGroups(t *testing.T) {
	rows := Project([]*models.InventoryRecord{
		mixed("r1", "A", 1, "g1"),
		mixed("r2", "B", 1, "g1"),
		mixed("r3", "C", 1, "g2"),
		mixed("r4", "D", 1, "g2"),
	})

	assert.Equal(t, 2, rows[0].RowSpan)
	assert.Equal(t, 0, rows[1].RowSpan)
	assert.Equal(t, 2, rows[2].RowSpan)
	assert.Equal(t, 0, rows[3].RowSpan)
}

func TestProjectSingleMemberGroup(t *testing.T) {
	rows := Project([]*models.InventoryRecord{mixed("r1", "A", 3, "g1")})

	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].RowSpan)
	assert.True(t, rows[0].IsGroupAnchor)
}

func TestProjectEmptyInput(t *testing.T) {
	rows := Project(nil)
	require.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestGroupsReconstruction(t *testing.T) {
	records := []*models.InventoryRecord{
		whole("r1", "W", 4),
		mixed("r2", "A", 1, "g1"),
		mixed("r3", "B", 2, "g1"),
		mixed("r4", "C", 7, "g2"),
	}

	groups := Groups(records)
	require.Len(t, groups, 2)

	assert.Equal(t, "g1", groups[0].GroupKey)
	require.Len(t, groups[0].MemberRecords, 2)
	assert.Equal(t, 3, groups[0].AggregateQuantity)

	assert.Equal(t, "g2", groups[1].GroupKey)
	assert.Equal(t, 7, groups[1].AggregateQuantity)
}
