package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intake-backend/internal/models"
)

// fakeStore is an in-memory RecordStore. Mutating calls can be failed per
// record id to exercise partial cascade outcomes.
type fakeStore struct {
	mu        sync.Mutex
	records   []*models.InventoryRecord
	nextID    int
	failIDs   map[string]error
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{failIDs: map[string]error{}}
}

func (f *fakeStore) CreateBatch(ctx context.Context, records []*models.InventoryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, r := range records {
		f.nextID++
		r.ID = fmt.Sprintf("id-%d", f.nextID)
		f.records = append(f.records, r)
	}
	return nil
}

func (f *fakeStore) Get(ctx context.Context, id string) (*models.InventoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("record not found: %s", id)
}

func (f *fakeStore) List(ctx context.Context) ([]*models.InventoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.InventoryRecord{}, f.records...), nil
}

func (f *fakeStore) ListByStatus(ctx context.Context, status string) ([]*models.InventoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.InventoryRecord{}
	for _, r := range f.records {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByGroupKey(ctx context.Context, groupKey string) ([]*models.InventoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.InventoryRecord{}
	for _, r := range f.records {
		if r.MixBoxGroupKey != nil && *r.MixBoxGroupKey == groupKey {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) Update(ctx context.Context, id string, req *models.UpdateRecordRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failIDs[id]; err != nil {
		return err
	}
	for _, r := range f.records {
		if r.ID == id {
			r.SKU = req.SKU
			r.TotalQuantity = req.TotalQuantity
			r.TotalBoxes = req.TotalBoxes
			r.Country = req.Country
			r.Packer = req.Packer
			r.Remark = req.Remark
			r.Status = req.Status
			return nil
		}
	}
	return fmt.Errorf("record not found: %s", id)
}

func (f *fakeStore) ApplyGroupPatch(ctx context.Context, id string, patch *models.GroupPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failIDs[id]; err != nil {
		return err
	}
	for _, r := range f.records {
		if r.ID == id {
			r.Country = patch.Country
			r.Packer = patch.Packer
			r.Remark = patch.Remark
			r.Status = patch.Status
			return nil
		}
	}
	return fmt.Errorf("record not found: %s", id)
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failIDs[id]; err != nil {
		return err
	}
	for i, r := range f.records {
		if r.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("record not found: %s", id)
}

func (f *fakeStore) CountByBoxType(ctx context.Context) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int{}
	for _, r := range f.records {
		counts[r.BoxType]++
	}
	return counts, nil
}

func seedGroup(t *testing.T, store *fakeStore, key string, skus ...string) []string {
	t.Helper()
	var records []*models.InventoryRecord
	for _, sku := range skus {
		k := key
		records = append(records, &models.InventoryRecord{
			SKU:            sku,
			TotalQuantity:  2,
			TotalBoxes:     1,
			BoxType:        models.BoxTypeMixed,
			MixBoxGroupKey: &k,
			Country:        "DE",
			Operator:       "op-1",
			Status:         models.StatusPending,
		})
	}
	require.NoError(t, store.CreateBatch(context.Background(), records))

	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}

func TestEditGroupAppliesPatchToEveryMember(t *testing.T) {
	store := newFakeStore()
	ids := seedGroup(t, store, "g1", "A", "B", "C")
	svc := NewRecordService(store)

	patch := &models.GroupPatch{Country: "JP", Packer: "kei", Status: models.StatusShipped}
	result, err := svc.EditGroup(context.Background(), "g1", patch)
	require.NoError(t, err)

	assert.True(t, result.AllSucceeded())
	assert.ElementsMatch(t, ids, result.Succeeded)
	assert.Empty(t, result.Failed)

	for _, id := range ids {
		rec, err := store.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "JP", rec.Country)
		assert.Equal(t, "kei", rec.Packer)
		assert.Equal(t, models.StatusShipped, rec.Status)
	}
}

func TestEditGroupReportsPartialFailure(t *testing.T) {
	store := newFakeStore()
	ids := seedGroup(t, store, "g1", "A", "B", "C")
	store.failIDs[ids[1]] = errors.New("row locked")
	svc := NewRecordService(store)

	result, err := svc.EditGroup(context.Background(), "g1",
		&models.GroupPatch{Country: "DE", Status: models.StatusPending})
	require.NoError(t, err)

	assert.False(t, result.AllSucceeded())
	assert.False(t, result.AllFailed())
	assert.ElementsMatch(t, []string{ids[0], ids[2]}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, ids[1], result.Failed[0].RecordID)
	assert.Equal(t, "row locked", result.Failed[0].Reason)
}

func TestEditGroupValidation(t *testing.T) {
	svc := NewRecordService(newFakeStore())

	_, err := svc.EditGroup(context.Background(), "g1", &models.GroupPatch{Status: models.StatusPending})
	assert.EqualError(t, err, "country must not be empty")

	_, err = svc.EditGroup(context.Background(), "g1", &models.GroupPatch{Country: "DE", Status: "bogus"})
	assert.Error(t, err)
}

func TestEditGroupUnknownKey(t *testing.T) {
	svc := NewRecordService(newFakeStore())

	_, err := svc.EditGroup(context.Background(), "nope",
		&models.GroupPatch{Country: "DE", Status: models.StatusPending})
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestDeleteGroupRemovesEveryMember(t *testing.T) {
	store := newFakeStore()
	ids := seedGroup(t, store, "g1", "A", "B")
	seedGroup(t, store, "g2", "C")
	svc := NewRecordService(store)

	result, err := svc.DeleteGroup(context.Background(), "g1")
	require.NoError(t, err)
	assert.True(t, result.AllSucceeded())
	assert.ElementsMatch(t, ids, result.Succeeded)

	remaining, _ := store.List(context.Background())
	require.Len(t, remaining, 1)
	assert.Equal(t, "C", remaining[0].SKU)
}

func TestDeleteGroupAllFailed(t *testing.T) {
	store := newFakeStore()
	ids := seedGroup(t, store, "g1", "A", "B")
	store.failIDs[ids[0]] = errors.New("down")
	store.failIDs[ids[1]] = errors.New("down")
	svc := NewRecordService(store)

	result, err := svc.DeleteGroup(context.Background(), "g1")
	require.NoError(t, err)
	assert.True(t, result.AllFailed())
	assert.Len(t, result.Failed, 2)
}

func TestCascadeAccountsForEveryMember(t *testing.T) {
	store := newFakeStore()
	ids := seedGroup(t, store, "g1", "A", "B", "C", "D", "E")
	store.failIDs[ids[2]] = errors.New("boom")
	svc := NewRecordService(store)

	result, err := svc.DeleteGroup(context.Background(), "g1")
	require.NoError(t, err)

	// Every member is accounted for exactly once
	assert.Equal(t, len(ids), len(result.Succeeded)+len(result.Failed))
}

func TestUpdateRecordValidation(t *testing.T) {
	svc := NewRecordService(newFakeStore())
	ctx := context.Background()

	err := svc.UpdateRecord(ctx, "id-1", &models.UpdateRecordRequest{TotalQuantity: 1, TotalBoxes: 1, Status: models.StatusPending})
	assert.EqualError(t, err, "sku must not be empty")

	err = svc.UpdateRecord(ctx, "id-1", &models.UpdateRecordRequest{SKU: "A", TotalBoxes: 1, Status: models.StatusPending})
	assert.EqualError(t, err, "total quantity must be at least 1")

	err = svc.UpdateRecord(ctx, "id-1", &models.UpdateRecordRequest{SKU: "A", TotalQuantity: 1, Status: models.StatusPending})
	assert.EqualError(t, err, "total boxes must be at least 1")

	err = svc.UpdateRecord(ctx, "id-1", &models.UpdateRecordRequest{SKU: "A", TotalQuantity: 1, TotalBoxes: 1, Status: "gone"})
	assert.Error(t, err)
}

func TestBuildGroupPrintPayload(t *testing.T) {
	store := newFakeStore()
	seedGroup(t, store, "g1", "A", "B", "C")
	svc := NewRecordService(store)

	payload, err := svc.BuildGroupPrintPayload(context.Background(), "g1")
	require.NoError(t, err)

	assert.Equal(t, "mixed-box: g1", payload.SKU)
	assert.Equal(t, 6, payload.Quantity) // three members of quantity 2
	assert.Equal(t, 1, payload.Boxes)
	assert.Equal(t, models.BoxTypeMixed, payload.BoxType)
	assert.Equal(t, "g1", payload.GroupKey)
	assert.Equal(t, "g1", payload.Barcode)
	assert.Equal(t, "DE", payload.Country)
	assert.Equal(t, "op-1", payload.Operator)
}

func TestBuildGroupPrintPayloadUnknownKey(t *testing.T) {
	svc := NewRecordService(newFakeStore())

	_, err := svc.BuildGroupPrintPayload(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestBuildRecordPrintPayload(t *testing.T) {
	store := newFakeStore()
	rec := &models.InventoryRecord{
		SKU:           "SOLO",
		TotalQuantity: 4,
		TotalBoxes:    4,
		BoxType:       models.BoxTypeWhole,
		Country:       "US",
		Operator:      "op-9",
		Status:        models.StatusPending,
	}
	require.NoError(t, store.CreateBatch(context.Background(), []*models.InventoryRecord{rec}))
	svc := NewRecordService(store)

	payload, err := svc.BuildRecordPrintPayload(context.Background(), rec.ID)
	require.NoError(t, err)

	assert.Equal(t, "SOLO", payload.SKU)
	assert.Equal(t, 4, payload.Quantity)
	assert.Equal(t, 4, payload.Boxes)
	assert.Equal(t, rec.ID, payload.Barcode)
	assert.Empty(t, payload.GroupKey)
}

func TestListDisplayRows(t *testing.T) {
	store := newFakeStore()
	seedGroup(t, store, "g1", "A", "B")
	svc := NewRecordService(store)

	rows, err := svc.ListDisplayRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].RowSpan)
	assert.Equal(t, 0, rows[1].RowSpan)
}
