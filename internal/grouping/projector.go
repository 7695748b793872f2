// Package grouping reconstructs mixed-box groups from the flat persisted
// record list and computes the row-span projection the display layer renders.
package grouping

import "intake-backend/internal/models"

// DisplayRow is one record plus its visual placement: the anchor row of a
// group carries the group's full span and the interactive affordances;
// non-anchor rows are present for data access but rendered absorbed into the
// anchor's span.
type DisplayRow struct {
	Record        *models.InventoryRecord `json:"record"`
	RowSpan       int                     `json:"row_span"`
	IsGroupAnchor bool                    `json:"is_group_anchor"`
}

// MixedBoxGroup is derived on every read; it is never persisted.
type MixedBoxGroup struct {
	GroupKey          string                    `json:"group_key"`
	MemberRecords     []*models.InventoryRecord `json:"member_records"`
	AggregateQuantity int                       `json:"aggregate_quantity"`
}

// Project computes the row-span projection in a single forward pass.
//
// Precondition: records sharing a mix box group key must already be
// contiguous in the input - the storage layer's ordering guarantees it.
// Non-contiguous occurrences of a key are an upstream bug; each contiguous
// run is spanned separately rather than silently merged, because merging
// would corrupt the display.
func Project(records []*models.InventoryRecord) []DisplayRow {
	freq := make(map[string]int)
	for _, r := range records {
		if r.MixBoxGroupKey != nil {
			freq[*r.MixBoxGroupKey]++
		}
	}

	rows := make([]DisplayRow, 0, len(records))
	currentKey := ""
	for _, r := range records {
		if r.MixBoxGroupKey == nil {
			currentKey = ""
			rows = append(rows, DisplayRow{Record: r, RowSpan: 1, IsGroupAnchor: true})
			continue
		}

		key := *r.MixBoxGroupKey
		if key != currentKey {
			currentKey = key
			rows = append(rows, DisplayRow{Record: r, RowSpan: freq[key], IsGroupAnchor: true})
			continue
		}

		rows = append(rows, DisplayRow{Record: r, RowSpan: 0, IsGroupAnchor: false})
	}

	return rows
}

// Groups reconstructs the derived mixed-box groups from an ordered record
// list. Whole-box records are skipped; each contiguous key run becomes one
// group with its members in input order.
func Groups(records []*models.InventoryRecord) []MixedBoxGroup {
	var groups []MixedBoxGroup
	index := make(map[string]int)

	for _, r := range records {
		if r.MixBoxGroupKey == nil {
			continue
		}
		key := *r.MixBoxGroupKey
		i, ok := index[key]
		if !ok {
			index[key] = len(groups)
			groups = append(groups, MixedBoxGroup{GroupKey: key})
			i = len(groups) - 1
		}
		groups[i].MemberRecords = append(groups[i].MemberRecords, r)
		groups[i].AggregateQuantity += r.TotalQuantity
	}

	return groups
}
