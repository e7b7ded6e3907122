package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/pkg/xerrors"
)

type fakeStaff struct {
	byID map[string]*domain.Colaborador
}

func newFakeStaff(staff ...*domain.Colaborador) *fakeStaff {
	f := &fakeStaff{byID: map[string]*domain.Colaborador{}}
	for _, c := range staff {
		f.byID[c.ID] = c
	}
	return f
}

func (f *fakeStaff) GetByID(_ context.Context, id string) (*domain.Colaborador, error) {
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, xerrors.ErrUserNotFound
}

func (f *fakeStaff) SaveTOTPSecret(_ context.Context, id, secret string) error {
	c, ok := f.byID[id]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	c.TOTPSecret = &secret
	c.TwoFactorAuth = true
	return nil
}

func (f *fakeStaff) DisableTwoFA(_ context.Context, id, reason string, at time.Time) error {
	c, ok := f.byID[id]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	c.TOTPSecret = nil
	c.TwoFactorAuth = false
	c.MFADisabledAt = &at
	c.MFADisabledReason = &reason
	c.SessionVersion++
	return nil
}

func TestSetupEnrollsOnce(t *testing.T) {
	staff := newFakeStaff(&domain.Colaborador{ID: "c1", Name: "Dr. Silva", Email: "silva@gpac.com"})
	uc := NewStaffTwoFAUsecase(staff, "GPAC")

	enr, err := uc.Setup(context.Background(), "c1")
	require.NoError(t, err)
	assert.False(t, enr.AlreadyEnrolled)
	assert.NotEmpty(t, enr.Secret)
	assert.Contains(t, enr.ProvisioningURI, "otpauth://totp/")
	assert.Contains(t, enr.ProvisioningURI, "GPAC")
	assert.True(t, strings.HasPrefix(enr.QRCode, "data:image/png;base64,"))
	assert.True(t, staff.byID["c1"].TwoFactorAuth)

	// A second setup must not rotate the secret.
	again, err := uc.Setup(context.Background(), "c1")
	require.NoError(t, err)
	assert.True(t, again.AlreadyEnrolled)
	assert.Empty(t, again.Secret)
	require.NotNil(t, staff.byID["c1"].TOTPSecret)
	assert.Equal(t, enr.Secret, *staff.byID["c1"].TOTPSecret)
}

func TestVerifyAcceptsAdjacentWindow(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"
	staff := newFakeStaff(&domain.Colaborador{ID: "c1", TOTPSecret: &secret, TwoFactorAuth: true})
	uc := NewStaffTwoFAUsecase(staff, "GPAC")

	now := time.Date(2025, 6, 1, 12, 0, 15, 0, time.UTC)
	uc.now = fixedClock(now)

	// Codes from the previous and next 30s step still verify (skew of one).
	for _, offset := range []time.Duration{-30 * time.Second, 0, 30 * time.Second} {
		code, err := totp.GenerateCodeCustom(secret, now.Add(offset), totpOpts)
		require.NoError(t, err)
		ok, err := uc.Verify(context.Background(), "c1", code)
		require.NoError(t, err)
		assert.True(t, ok, "offset %v", offset)
	}

	// Two steps away is out of the window.
	code, err := totp.GenerateCodeCustom(secret, now.Add(90*time.Second), totpOpts)
	require.NoError(t, err)
	ok, err := uc.Verify(context.Background(), "c1", code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyWithoutEnrollment(t *testing.T) {
	staff := newFakeStaff(&domain.Colaborador{ID: "c1"})
	uc := NewStaffTwoFAUsecase(staff, "GPAC")

	ok, err := uc.Verify(context.Background(), "c1", "123456")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = uc.Verify(context.Background(), "ghost", "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDisableClearsEnrollmentAndBumpsVersion(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"
	staff := newFakeStaff(&domain.Colaborador{ID: "c1", TOTPSecret: &secret, TwoFactorAuth: true})
	uc := NewStaffTwoFAUsecase(staff, "GPAC")

	require.NoError(t, uc.Disable(context.Background(), "c1", ""))

	c := staff.byID["c1"]
	assert.Nil(t, c.TOTPSecret)
	assert.False(t, c.TwoFactorAuth)
	assert.Equal(t, 1, c.SessionVersion)
	require.NotNil(t, c.MFADisabledReason)
	assert.Equal(t, "admin disabled", *c.MFADisabledReason)

	enabled, err := uc.Status(context.Background(), "c1")
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestDisableForRequiresAdministrator(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"
	staff := newFakeStaff(
		&domain.Colaborador{ID: "adm", Role: "admin"},
		&domain.Colaborador{ID: "nur", Role: "enfermeiro"},
		&domain.Colaborador{ID: "c1", TOTPSecret: &secret, TwoFactorAuth: true},
	)
	uc := NewStaffTwoFAUsecase(staff, "GPAC")

	// Non-admins can only disable themselves.
	err := uc.DisableFor(context.Background(), "nur", "c1", "lost phone")
	assert.ErrorIs(t, err, xerrors.ErrForbidden)
	assert.True(t, staff.byID["c1"].TwoFactorAuth)

	// The legacy "admin" role counts after normalization.
	require.NoError(t, uc.DisableFor(context.Background(), "adm", "c1", "lost phone"))
	assert.False(t, staff.byID["c1"].TwoFactorAuth)
	require.NotNil(t, staff.byID["c1"].MFADisabledReason)
	assert.Equal(t, "lost phone", *staff.byID["c1"].MFADisabledReason)

	err = uc.DisableFor(context.Background(), "adm", "ghost", "")
	assert.ErrorIs(t, err, xerrors.ErrUserNotFound)

	// Empty target falls back to self-disable.
	enr, err := uc.Setup(context.Background(), "nur")
	require.NoError(t, err)
	require.NotEmpty(t, enr.Secret)
	require.NoError(t, uc.DisableFor(context.Background(), "nur", "", ""))
	assert.False(t, staff.byID["nur"].TwoFactorAuth)
}
