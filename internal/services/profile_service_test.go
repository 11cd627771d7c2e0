package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"phonegate/internal/authz"
	"phonegate/internal/models"
	"phonegate/internal/repositories"
)

func newProfileFixture(t *testing.T) (*ProfileService, *repositories.MemoryUserDirectory, *flakyStore) {
	t.Helper()
	users := repositories.NewMemoryUserDirectory(
		models.User{ID: 1, PhoneNumber: strPtr("5551112222"), RoleID: authz.RoleUser},
		models.User{ID: 3, PhoneNumber: strPtr("5557776666"), RoleID: authz.RoleUser},
	)
	store := newFlakyStore()
	return NewProfileService(users, store, zap.NewNop()), users, store
}

func TestChangePhone_FreshNumber(t *testing.T) {
	svc, users, _ := newProfileFixture(t)
	require.NoError(t, svc.ChangePhone(context.Background(), 3, "(555) 000-1111"))

	u, _ := users.GetByID(context.Background(), 3)
	p, _ := u.Phone()
	assert.Equal(t, "5550001111", p)
}

func TestChangePhone_RefusesEmpty(t *testing.T) {
	svc, users, _ := newProfileFixture(t)
	assert.ErrorIs(t, svc.ChangePhone(context.Background(), 3, " - "), ErrNoPhone)

	u, _ := users.GetByID(context.Background(), 3)
	p, _ := u.Phone()
	assert.Equal(t, "5557776666", p)
}

func TestChangePhone_RefusesNumberOfAnotherUser(t *testing.T) {
	svc, users, _ := newProfileFixture(t)
	assert.ErrorIs(t, svc.ChangePhone(context.Background(), 3, "555 111 2222"), ErrPhoneTaken)

	u, _ := users.GetByID(context.Background(), 3)
	p, _ := u.Phone()
	assert.Equal(t, "5557776666", p)
}

func TestChangePhone_RefusesVerifiedNumber(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newProfileFixture(t)
	_, err := store.Insert(ctx, "5550001111", "123456", models.StatusVerified, 1)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePhone(ctx, 3, "5550001111"), ErrPhoneTaken)
}

func TestChangePhone_UnverifiedRowDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newProfileFixture(t)
	_, err := store.Insert(ctx, "5550001111", "123456", models.StatusUnverified, 1)
	require.NoError(t, err)

	assert.NoError(t, svc.ChangePhone(ctx, 3, "5550001111"))
}

func TestChangePhone_SameNumberIsNoop(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newProfileFixture(t)
	_, err := store.Insert(ctx, "5551112222", "123456", models.StatusVerified, 1)
	require.NoError(t, err)

	assert.NoError(t, svc.ChangePhone(ctx, 1, "555-111-2222"))
}

func TestChangePhone_Errors(t *testing.T) {
	svc, _, store := newProfileFixture(t)
	assert.ErrorIs(t, svc.ChangePhone(context.Background(), 42, "5550001111"), ErrUserNotFound)

	store.failGet = true
	assert.ErrorIs(t, svc.ChangePhone(context.Background(), 3, "5550001111"), ErrStoreUnavailable)
}
