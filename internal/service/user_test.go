package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/health-diary/internal/apperror"
)

func newUserService(t *testing.T) (*UserService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	require.NoError(t, store.CreateUser(context.Background(), sampleProfile("alice")))
	return NewUserService(store, discardLogger()), store
}

func TestUserCreate_ConflictMessage(t *testing.T) {
	svc, _ := newUserService(t)

	_, err := svc.Create(context.Background(), sampleProfile("alice"))
	require.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, "User already exists", err.Error())

	id, err := svc.Create(context.Background(), sampleProfile("bob"))
	require.NoError(t, err)
	assert.Equal(t, "bob", id)
}

func TestUserGet(t *testing.T) {
	svc, _ := newUserService(t)

	p, err := svc.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 30, p.Age)

	_, err = svc.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUserUpdate(t *testing.T) {
	svc, store := newUserService(t)

	update := sampleProfile("someone-else")
	update.Age = 31
	update.Weight = nil
	update.Allergies = []string{"nuts", "gluten"}

	require.NoError(t, svc.Update(context.Background(), "alice", update))

	stored := store.users["alice"]
	assert.Equal(t, "alice", stored.UserID, "path decides who is updated")
	assert.Equal(t, 31, stored.Age)
	assert.Nil(t, stored.Weight)
	assert.Equal(t, []string{"nuts", "gluten"}, stored.Allergies)
	_, renamed := store.users["someone-else"]
	assert.False(t, renamed)
}

func TestUserUpdate_NoChanges(t *testing.T) {
	svc, store := newUserService(t)
	store.updateErr = errors.New("must not be called")

	err := svc.Update(context.Background(), "alice", sampleProfile("alice"))
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "No changes made", err.Error())
}

func TestUserUpdate_EmptyAndNilListsAreEqual(t *testing.T) {
	svc, _ := newUserService(t)

	update := sampleProfile("alice")
	update.MedicalConditions = nil

	err := svc.Update(context.Background(), "alice", update)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestUserUpdate_UnknownUser(t *testing.T) {
	svc, _ := newUserService(t)

	err := svc.Update(context.Background(), "ghost", sampleProfile("ghost"))
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUserUpdate_InvalidAge(t *testing.T) {
	svc, _ := newUserService(t)

	update := sampleProfile("alice")
	update.Age = -1
	err := svc.Update(context.Background(), "alice", update)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestUserDelete(t *testing.T) {
	svc, store := newUserService(t)

	require.NoError(t, svc.Delete(context.Background(), "alice"))
	assert.Empty(t, store.users)

	assert.ErrorIs(t, svc.Delete(context.Background(), "alice"), apperror.ErrNotFound)
}
