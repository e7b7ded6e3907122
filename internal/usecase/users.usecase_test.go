package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/pkg/xerrors"
)

func TestUsersCreateWith2FA(t *testing.T) {
	users := newFakeUsers()
	uc := NewUsersUsecase(users, "Equora Systems")

	u, err := uc.Create(context.Background(), domain.UserCreate{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "s3cret",
		Enable2FA: true,
	})
	require.NoError(t, err)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsAdmin)
	require.NotNil(t, u.TwoFASecret)
	require.NotNil(t, u.ProvisioningURI)
	assert.Contains(t, *u.ProvisioningURI, "Equora%20Systems")
	assert.False(t, u.ProvisioningURIUsed)

	_, err = uc.Create(context.Background(), domain.UserCreate{Username: "ALICE", Password: "x"})
	assert.ErrorIs(t, err, xerrors.ErrUserAlreadyExists)

	_, err = uc.Create(context.Background(), domain.UserCreate{Username: "", Password: "x"})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestUsersUpdateEnables2FAWithoutRotating(t *testing.T) {
	users := newFakeUsers()
	uc := NewUsersUsecase(users, "Equora Systems")

	u, err := uc.Create(context.Background(), domain.UserCreate{
		Username: "bob", Email: "bob@example.com", Password: "pw",
	})
	require.NoError(t, err)
	assert.Nil(t, u.TwoFASecret)

	on := true
	u, err = uc.Update(context.Background(), u.ID, domain.UserUpdate{Enable2FA: &on})
	require.NoError(t, err)
	require.NotNil(t, u.TwoFASecret)
	firstSecret := *u.TwoFASecret

	// Enabling again keeps the existing secret.
	u, err = uc.Update(context.Background(), u.ID, domain.UserUpdate{Enable2FA: &on})
	require.NoError(t, err)
	require.NotNil(t, u.TwoFASecret)
	assert.Equal(t, firstSecret, *u.TwoFASecret)
}

func TestUsersUpdateDisables2FA(t *testing.T) {
	users := newFakeUsers()
	uc := NewUsersUsecase(users, "Equora Systems")

	u, err := uc.Create(context.Background(), domain.UserCreate{
		Username: "carol", Password: "pw", Enable2FA: true,
	})
	require.NoError(t, err)
	versionBefore := u.SessionVersion

	off := false
	u, err = uc.Update(context.Background(), u.ID, domain.UserUpdate{Enable2FA: &off})
	require.NoError(t, err)
	assert.Nil(t, u.TwoFASecret)
	assert.Nil(t, u.ProvisioningURI)
	assert.Equal(t, versionBefore+1, u.SessionVersion, "disable must invalidate sessions")
	require.NotNil(t, u.MFADisabledReason)
	assert.Equal(t, "admin disabled", *u.MFADisabledReason)
}

func TestUsersIsAdmin(t *testing.T) {
	users := newFakeUsers(&domain.User{ID: "a1", Username: "root", IsAdmin: true})
	uc := NewUsersUsecase(users, "Equora Systems")

	ok, err := uc.IsAdmin(context.Background(), "a1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = uc.IsAdmin(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}
