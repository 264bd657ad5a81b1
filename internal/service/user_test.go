package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/propnest/internal/auth"
	"github.com/pkordes/propnest/internal/domain"
	"github.com/pkordes/propnest/internal/service"
)

func TestUserService_UpdateProfile(t *testing.T) {
	u := userWithPassword(t, "asha@example.com", "secret1")
	svc := service.NewUserService(memUsers(u), &fakeSender{})

	got, err := svc.UpdateProfile(context.Background(), u.ID, domain.ProfileUpdate{
		Name:  ptr("Asha K"),
		Email: ptr("ASHA.K@example.com"),
		Phone: ptr("9876543210"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Asha K", got.Name)
	assert.Equal(t, "asha.k@example.com", got.Email)
	assert.Equal(t, "9876543210", got.Phone)
}

func TestUserService_UpdateProfile_PasswordChange(t *testing.T) {
	u := userWithPassword(t, "asha@example.com", "secret1")
	svc := service.NewUserService(memUsers(u), &fakeSender{})
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, u.ID, domain.ProfileUpdate{NewPassword: "newpass1"})
	assert.ErrorIs(t, err, domain.ErrValidation, "current password required")

	_, err = svc.UpdateProfile(ctx, u.ID, domain.ProfileUpdate{CurrentPassword: "wrong", NewPassword: "newpass1"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	got, err := svc.UpdateProfile(ctx, u.ID, domain.ProfileUpdate{CurrentPassword: "secret1", NewPassword: "newpass1"})
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(got.PasswordHash, "newpass1"))
}

func TestUserService_Subscribe_NewAddress(t *testing.T) {
	mail := &fakeSender{}
	svc := service.NewUserService(memUsers(), mail)

	got, err := svc.Subscribe(context.Background(), "Reader@Example.com", "Reader")

	require.NoError(t, err)
	assert.True(t, got.Newsletter)
	assert.True(t, got.NewsletterOnly)
	assert.False(t, auth.CheckPassword(got.PasswordHash, ""), "password is unusable")
	assert.Equal(t, []string{"You're subscribed"}, mail.subjects())
}

func TestUserService_Subscribe_ExistingUser(t *testing.T) {
	u := userWithPassword(t, "asha@example.com", "secret1")
	svc := service.NewUserService(memUsers(u), &fakeSender{})

	got, err := svc.Subscribe(context.Background(), "asha@example.com", "")

	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, got.Newsletter)
	assert.False(t, got.NewsletterOnly)
}

func TestUserService_Subscribe_MailFailureIsNotFatal(t *testing.T) {
	svc := service.NewUserService(memUsers(), &fakeSender{err: errors.New("smtp down")})

	_, err := svc.Subscribe(context.Background(), "reader@example.com", "")

	assert.NoError(t, err)
}

func TestUserService_Me_NotFound(t *testing.T) {
	svc := service.NewUserService(memUsers(), &fakeSender{})

	_, err := svc.Me(context.Background(), userWithPassword(t, "x@example.com", "secret1").ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
