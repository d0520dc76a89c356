package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/health-diary/internal/apperror"
	"github.com/sakif/health-diary/internal/model"
)

func newDiaryService(t *testing.T) (*DiaryService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	require.NoError(t, store.CreateUser(context.Background(), sampleProfile("alice")))
	return NewDiaryService(store, store, discardLogger()), store
}

func TestDiaryAdd_AssignsServerFields(t *testing.T) {
	svc, store := newDiaryService(t)

	entry := &model.DiaryEntry{
		ID:     "client-id",
		UserID: "mallory",
		Date:   "2024-05-01",
		Meals:  []string{"oats"},
		Conditions: []model.ConditionRecord{
			{Condition: "headache", Severity: 3},
		},
	}
	id, err := svc.Add(context.Background(), "alice", entry)
	require.NoError(t, err)

	assert.Equal(t, "entry-1", id)
	require.Len(t, store.entries, 1)
	assert.Equal(t, "alice", store.entries[0].UserID)
	assert.NotNil(t, store.entries[0].CreatedAt)
}

func TestDiaryAdd_UnknownUser(t *testing.T) {
	svc, store := newDiaryService(t)

	_, err := svc.Add(context.Background(), "ghost", &model.DiaryEntry{Date: "2024-05-01"})
	require.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, "User not found", err.Error())
	assert.Empty(t, store.entries)
}

func TestDiaryAdd_SeverityOutOfRange(t *testing.T) {
	svc, _ := newDiaryService(t)

	_, err := svc.Add(context.Background(), "alice", &model.DiaryEntry{
		Date:       "2024-05-01",
		Conditions: []model.ConditionRecord{{Condition: "cough", Severity: 11}},
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestDiaryList_NewestFirstWithDefaultLimit(t *testing.T) {
	svc, store := newDiaryService(t)
	for i := 0; i < 12; i++ {
		_, err := svc.Add(context.Background(), "alice", &model.DiaryEntry{Date: "2024-05-01"})
		require.NoError(t, err)
	}

	entries, err := svc.List(context.Background(), "alice", 0)
	require.NoError(t, err)

	assert.Equal(t, DefaultDiaryLimit, store.lastListLimit)
	require.Len(t, entries, DefaultDiaryLimit)
	assert.Equal(t, "entry-12", entries[0].ID)
}

func TestDiaryList_UnknownUserIsEmpty(t *testing.T) {
	svc, _ := newDiaryService(t)

	entries, err := svc.List(context.Background(), "ghost", 5)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestDiaryList_RepositoryError(t *testing.T) {
	svc, store := newDiaryService(t)
	store.listErr = errors.New("disk full")

	_, err := svc.List(context.Background(), "alice", 5)
	assert.Error(t, err)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 10, clampLimit(0, 10))
	assert.Equal(t, 10, clampLimit(-3, 10))
	assert.Equal(t, 7, clampLimit(7, 10))
	assert.Equal(t, MaxListLimit, clampLimit(1000, 10))
}
