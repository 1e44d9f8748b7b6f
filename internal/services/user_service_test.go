package services

import (
	"context"
	"errors"
	"testing"

	"github.com/staynest/booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserSync_AndResolvePrincipal(t *testing.T) {
	store := newMemoryStore()
	service := NewUserService(userTable{store}, quietLogger())
	ctx := context.Background()

	_, err := service.ResolvePrincipal(ctx, "auth-new")
	var notFound *models.NotFoundError
	require.True(t, errors.As(err, &notFound), "unsynced identity")

	user, err := service.Sync(ctx, "auth-new", &models.SyncUserRequest{Email: "ana@example.com", FirstName: "Ana", UserType: models.UserTypeHost})
	require.NoError(t, err)

	again, err := service.Sync(ctx, "auth-new", &models.SyncUserRequest{Email: "ana@example.org", FirstName: "Ana", UserType: models.UserTypeHost})
	require.NoError(t, err)
	assert.Equal(t, user.UserID, again.UserID, "sync is idempotent per identity")

	principal, err := service.ResolvePrincipal(ctx, "auth-new")
	require.NoError(t, err)
	assert.Equal(t, user.UserID, principal.UserID)
	assert.True(t, principal.IsHost())
	assert.Equal(t, "ana@example.org", principal.Email)

	t.Run("Invalid User Type", func(t *testing.T) {
		_, err := service.Sync(ctx, "auth-x", &models.SyncUserRequest{Email: "x@example.com", FirstName: "X", UserType: "admin"})
		var validation *models.ValidationError
		assert.True(t, errors.As(err, &validation))
	})
}

func TestUpdateProfile(t *testing.T) {
	store := newMemoryStore()
	store.addUser(guestID, models.UserTypeGuest, "guest@example.com")
	service := NewUserService(userTable{store}, quietLogger())
	principal := &models.Principal{UserID: guestID, Type: models.UserTypeGuest}
	ctx := context.Background()

	t.Run("Normalizes Phone", func(t *testing.T) {
		phone := "+1 (415) 555-0100"
		user, err := service.UpdateProfile(ctx, principal, &models.UpdateProfileRequest{Phone: &phone})
		require.NoError(t, err)
		require.NotNil(t, user.Phone)
		assert.Equal(t, "+14155550100", *user.Phone)
	})

	t.Run("Rejects Invalid Phone", func(t *testing.T) {
		phone := "12345"
		_, err := service.UpdateProfile(ctx, principal, &models.UpdateProfileRequest{Phone: &phone})
		var validation *models.ValidationError
		require.True(t, errors.As(err, &validation))
		assert.Equal(t, "phone", validation.Field)
	})

	t.Run("Rejects Blank First Name", func(t *testing.T) {
		name := "   "
		_, err := service.UpdateProfile(ctx, principal, &models.UpdateProfileRequest{FirstName: &name})
		var validation *models.ValidationError
		assert.True(t, errors.As(err, &validation))
	})

	t.Run("Get", func(t *testing.T) {
		user, err := service.Get(ctx, principal)
		require.NoError(t, err)
		assert.Equal(t, "guest@example.com", user.Email)
	})
}
