package intake

import (
	"errors"

	"github.com/google/uuid"

	"intake-backend/internal/models"
)

var (
	// ErrNoLineItems means a whole-box intake parsed to zero items. Raised
	// before any storage call is attempted.
	ErrNoLineItems = errors.New("no valid line items to materialize")

	// ErrEmptySession means a completed session holds no boxes. Unreachable
	// through the session machine's own transitions, but defended against.
	ErrEmptySession = errors.New("intake session has no collected boxes")

	// ErrSessionNotCompleted means materialization was attempted before
	// every planned box was committed.
	ErrSessionNotCompleted = errors.New("intake session is not completed")
)

// MaterializeWholeBox turns parsed whole-box lines into persistable records,
// one per line item. The parsed integer is a box count; at this layer each
// box counts as a single unit, so total quantity equals total boxes. A richer
// units-per-box conversion would slot in here if the domain ever needs one.
func MaterializeWholeBox(lines []LineItem, meta SharedMetadata, operator string) ([]*models.InventoryRecord, error) {
	if len(lines) == 0 {
		return nil, ErrNoLineItems
	}

	records := make([]*models.InventoryRecord, 0, len(lines))
	for _, line := range lines {
		records = append(records, &models.InventoryRecord{
			SKU:           line.SKU,
			TotalQuantity: line.Quantity,
			TotalBoxes:    line.Quantity,
			BoxType:       models.BoxTypeWhole,
			Country:       meta.Country,
			Operator:      operator,
			Packer:        meta.Packer,
			Remark:        meta.Remark,
			Status:        models.StatusPending,
		})
	}
	return records, nil
}

// MaterializeMixedBoxes flattens a completed session into persistable
// records. Each physical box gets one fresh group key shared by all of its
// SKU lines; each line becomes one record with total boxes 1. Output is
// grouped by box in commit order and, within a box, in parse order - the
// row-span projector relies on that contiguity rather than re-sorting.
func MaterializeMixedBoxes(s *Session) ([]*models.InventoryRecord, error) {
	if !s.Completed() {
		return nil, ErrSessionNotCompleted
	}
	if len(s.Boxes) == 0 {
		return nil, ErrEmptySession
	}

	var records []*models.InventoryRecord
	for _, lines := range s.Boxes {
		groupKey := uuid.NewString()
		for _, line := range lines {
			key := groupKey
			records = append(records, &models.InventoryRecord{
				SKU:            line.SKU,
				TotalQuantity:  line.Quantity,
				TotalBoxes:     1,
				BoxType:        models.BoxTypeMixed,
				MixBoxGroupKey: &key,
				Country:        s.Metadata.Country,
				Operator:       s.Operator,
				Packer:         s.Metadata.Packer,
				Remark:         s.Metadata.Remark,
				Status:         models.StatusPending,
			})
		}
	}
	return records, nil
}
