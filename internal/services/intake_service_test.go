package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intake-backend/internal/intake"
	"intake-backend/internal/models"
)

func TestIntakeWholeBoxEndToEnd(t *testing.T) {
	store := newFakeStore()
	svc := NewIntakeService(store)

	records, err := svc.IntakeWholeBox(context.Background(), &models.WholeBoxIntakeRequest{
		LinesText: "A1 3\nbadline\nB2 1",
		Country:   "DE",
		Packer:    "anna",
	}, "op-1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	stored, _ := store.List(context.Background())
	require.Len(t, stored, 2)
	assert.Equal(t, "A1", stored[0].SKU)
	assert.Equal(t, 3, stored[0].TotalQuantity)
	assert.Equal(t, 3, stored[0].TotalBoxes)
	assert.Equal(t, models.BoxTypeWhole, stored[0].BoxType)
	assert.Equal(t, "op-1", stored[0].Operator)
	assert.NotEmpty(t, stored[0].ID)
}

func TestIntakeWholeBoxNothingValidWritesNothing(t *testing.T) {
	store := newFakeStore()
	svc := NewIntakeService(store)

	_, err := svc.IntakeWholeBox(context.Background(), &models.WholeBoxIntakeRequest{
		LinesText: "garbage\nalso bad x",
		Country:   "DE",
	}, "op-1")
	require.ErrorIs(t, err, intake.ErrNoLineItems)

	stored, _ := store.List(context.Background())
	assert.Empty(t, stored)
}

func TestIntakeWholeBoxRequiresCountry(t *testing.T) {
	svc := NewIntakeService(newFakeStore())

	_, err := svc.IntakeWholeBox(context.Background(), &models.WholeBoxIntakeRequest{
		LinesText: "A 1",
	}, "op-1")
	assert.EqualError(t, err, "country must not be empty")
}

func TestMixedSessionLifecycle(t *testing.T) {
	store := newFakeStore()
	svc := NewIntakeService(store)
	ctx := context.Background()

	session, err := svc.StartMixedSession(&models.StartMixedIntakeRequest{
		TotalBoxes: 2,
		Country:    "JP",
		Packer:     "kei",
	}, "op-2")
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)
	assert.Equal(t, 1, svc.OpenSessionCount())

	// First box: nothing persisted yet
	s, records, err := svc.CommitBox(ctx, session.ID, "A 1\nB 2")
	require.NoError(t, err)
	assert.Nil(t, records)
	assert.Equal(t, intake.StateAwaitingBox, s.State)

	stored, _ := store.List(ctx)
	assert.Empty(t, stored)

	// Last box: session completes and everything lands in one batch
	s, records, err = svc.CommitBox(ctx, session.ID, "C 3")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, intake.StateCompleted, s.State)

	stored, _ = store.List(ctx)
	require.Len(t, stored, 3)
	assert.Equal(t, *stored[0].MixBoxGroupKey, *stored[1].MixBoxGroupKey)
	assert.NotEqual(t, *stored[0].MixBoxGroupKey, *stored[2].MixBoxGroupKey)

	// Session is gone once materialized
	assert.Equal(t, 0, svc.OpenSessionCount())
	_, err = svc.GetSession(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCommitBoxEmptyTextKeepsSessionAlive(t *testing.T) {
	svc := NewIntakeService(newFakeStore())
	ctx := context.Background()

	session, err := svc.StartMixedSession(&models.StartMixedIntakeRequest{
		TotalBoxes: 1,
		Country:    "JP",
	}, "op-2")
	require.NoError(t, err)

	_, _, err = svc.CommitBox(ctx, session.ID, "nothing valid")
	require.ErrorIs(t, err, intake.ErrEmptyBox)

	// Still awaiting the same box
	s, err := svc.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, intake.StateAwaitingBox, s.State)
	assert.Equal(t, 0, s.CurrentBoxIndex)
}

func TestCommitBoxUnknownSession(t *testing.T) {
	svc := NewIntakeService(newFakeStore())

	_, _, err := svc.CommitBox(context.Background(), "missing", "A 1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCancelSession(t *testing.T) {
	svc := NewIntakeService(newFakeStore())

	session, err := svc.StartMixedSession(&models.StartMixedIntakeRequest{
		TotalBoxes: 3,
		Country:    "JP",
	}, "op-2")
	require.NoError(t, err)

	require.NoError(t, svc.CancelSession(session.ID))
	assert.Equal(t, 0, svc.OpenSessionCount())

	_, err = svc.GetSession(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.ErrorIs(t, svc.CancelSession(session.ID), ErrSessionNotFound)
}

func TestStartMixedSessionValidation(t *testing.T) {
	svc := NewIntakeService(newFakeStore())

	_, err := svc.StartMixedSession(&models.StartMixedIntakeRequest{TotalBoxes: 0, Country: "JP"}, "op")
	assert.Error(t, err)

	_, err = svc.StartMixedSession(&models.StartMixedIntakeRequest{TotalBoxes: 2}, "op")
	assert.EqualError(t, err, "country must not be empty")
}
