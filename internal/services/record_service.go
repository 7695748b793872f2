package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"intake-backend/internal/grouping"
	"intake-backend/internal/metrics"
	"intake-backend/internal/models"
)

// RecordStore is the storage collaborator behind record CRUD and the group
// cascades. The pgx repository implements it; tests substitute a fake.
type RecordStore interface {
	CreateBatch(ctx context.Context, records []*models.InventoryRecord) error
	Get(ctx context.Context, id string) (*models.InventoryRecord, error)
	List(ctx context.Context) ([]*models.InventoryRecord, error)
	ListByStatus(ctx context.Context, status string) ([]*models.InventoryRecord, error)
	ListByGroupKey(ctx context.Context, groupKey string) ([]*models.InventoryRecord, error)
	Update(ctx context.Context, id string, req *models.UpdateRecordRequest) error
	ApplyGroupPatch(ctx context.Context, id string, patch *models.GroupPatch) error
	Delete(ctx context.Context, id string) error
	CountByBoxType(ctx context.Context) (map[string]int, error)
}

// ErrGroupNotFound means no record carries the requested mix box group key.
var ErrGroupNotFound = errors.New("mixed-box group not found")

// CascadeFailure identifies one group member whose storage call failed.
type CascadeFailure struct {
	RecordID string `json:"record_id"`
	Reason   string `json:"reason"`
}

// CascadeResult reports a group operation per member. It is never collapsed
// into a single boolean: on partial failure the caller is told exactly which
// members failed so it can retry just those.
type CascadeResult struct {
	Succeeded []string         `json:"succeeded"`
	Failed    []CascadeFailure `json:"failed"`
}

// AllSucceeded reports whether every member settled without error.
func (c *CascadeResult) AllSucceeded() bool {
	return len(c.Failed) == 0
}

// AllFailed reports whether no member succeeded.
func (c *CascadeResult) AllFailed() bool {
	return len(c.Succeeded) == 0 && len(c.Failed) > 0
}

type RecordService struct {
	Store RecordStore
}

func NewRecordService(store RecordStore) *RecordService {
	return &RecordService{Store: store}
}

func (s *RecordService) GetRecord(ctx context.Context, id string) (*models.InventoryRecord, error) {
	return s.Store.Get(ctx, id)
}

func (s *RecordService) ListRecords(ctx context.Context) ([]*models.InventoryRecord, error) {
	return s.Store.List(ctx)
}

func (s *RecordService) ListPendingRecords(ctx context.Context) ([]*models.InventoryRecord, error) {
	return s.Store.ListByStatus(ctx, models.StatusPending)
}

// ListDisplayRows returns the ordered record list projected into display
// rows with merged group spans.
func (s *RecordService) ListDisplayRows(ctx context.Context) ([]grouping.DisplayRow, error) {
	records, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	return grouping.Project(records), nil
}

// ListGroups returns the derived mixed-box groups reconstructed from the
// flat record list.
func (s *RecordService) ListGroups(ctx context.Context) ([]grouping.MixedBoxGroup, error) {
	records, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	return grouping.Groups(records), nil
}

// CountByBoxType returns how many records exist per box type.
func (s *RecordService) CountByBoxType(ctx context.Context) (map[string]int, error) {
	return s.Store.CountByBoxType(ctx)
}

func (s *RecordService) UpdateRecord(ctx context.Context, id string, req *models.UpdateRecordRequest) error {
	if req.SKU == "" {
		return errors.New("sku must not be empty")
	}
	if req.TotalQuantity < 1 {
		return errors.New("total quantity must be at least 1")
	}
	if req.TotalBoxes < 1 {
		return errors.New("total boxes must be at least 1")
	}
	if err := validateStatus(req.Status); err != nil {
		return err
	}
	return s.Store.Update(ctx, id, req)
}

func (s *RecordService) DeleteRecord(ctx context.Context, id string) error {
	return s.Store.Delete(ctx, id)
}

// EditGroup applies the same metadata patch to every record sharing the
// group key. Member updates are dispatched concurrently; the aggregate
// result waits for all of them before reporting.
func (s *RecordService) EditGroup(ctx context.Context, groupKey string, patch *models.GroupPatch) (*CascadeResult, error) {
	if patch.Country == "" {
		return nil, errors.New("country must not be empty")
	}
	if err := validateStatus(patch.Status); err != nil {
		return nil, err
	}

	members, err := s.Store.ListByGroupKey(ctx, groupKey)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, ErrGroupNotFound
	}

	return s.fanOut(ctx, "edit", members, func(ctx context.Context, id string) error {
		return s.Store.ApplyGroupPatch(ctx, id, patch)
	}), nil
}

// DeleteGroup deletes every record sharing the group key. The underlying
// store deletes one record at a time; the result is either "all deleted" or
// an explicit list of which members failed.
func (s *RecordService) DeleteGroup(ctx context.Context, groupKey string) (*CascadeResult, error) {
	members, err := s.Store.ListByGroupKey(ctx, groupKey)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, ErrGroupNotFound
	}

	return s.fanOut(ctx, "delete", members, s.Store.Delete), nil
}

// fanOut dispatches op per member concurrently and fans in before returning.
// No partial result is ever reported while a member is still in flight.
func (s *RecordService) fanOut(ctx context.Context, opName string, members []*models.InventoryRecord, op func(ctx context.Context, id string) error) *CascadeResult {
	result := &CascadeResult{Succeeded: []string{}, Failed: []CascadeFailure{}}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, member := range members {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			err := op(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, CascadeFailure{RecordID: id, Reason: err.Error()})
				metrics.CascadeFailuresTotal.WithLabelValues(opName).Inc()
				return
			}
			result.Succeeded = append(result.Succeeded, id)
		}(member.ID)
	}
	wg.Wait()

	return result
}

// BuildGroupPrintPayload synthesizes the single aggregate label payload for
// one physical mixed box: a composite SKU label, the summed quantity, and
// one box. Pure read-side aggregation, no persistence side effect.
func (s *RecordService) BuildGroupPrintPayload(ctx context.Context, groupKey string) (*models.PrintPayload, error) {
	members, err := s.Store.ListByGroupKey(ctx, groupKey)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, ErrGroupNotFound
	}

	total := 0
	for _, m := range members {
		total += m.TotalQuantity
	}

	anchor := members[0]
	return &models.PrintPayload{
		SKU:      fmt.Sprintf("mixed-box: %s", groupKey),
		Quantity: total,
		Boxes:    1,
		Country:  anchor.Country,
		Operator: anchor.Operator,
		Packer:   anchor.Packer,
		BoxType:  models.BoxTypeMixed,
		GroupKey: groupKey,
		Barcode:  groupKey,
	}, nil
}

// BuildRecordPrintPayload builds the label payload for a single record - the
// one-element-group degenerate case of the group payload.
func (s *RecordService) BuildRecordPrintPayload(ctx context.Context, id string) (*models.PrintPayload, error) {
	rec, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	payload := &models.PrintPayload{
		SKU:      rec.SKU,
		Quantity: rec.TotalQuantity,
		Boxes:    rec.TotalBoxes,
		Country:  rec.Country,
		Operator: rec.Operator,
		Packer:   rec.Packer,
		BoxType:  rec.BoxType,
		Barcode:  rec.ID,
	}
	if rec.MixBoxGroupKey != nil {
		payload.GroupKey = *rec.MixBoxGroupKey
	}
	return payload, nil
}

func validateStatus(status string) error {
	if status != models.StatusPending && status != models.StatusShipped && status != models.StatusCancelled {
		return fmt.Errorf("status must be '%s', '%s' or '%s'",
			models.StatusPending, models.StatusShipped, models.StatusCancelled)
	}
	return nil
}
