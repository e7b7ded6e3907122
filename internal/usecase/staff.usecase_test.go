package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/pkg/xerrors"
)

// Remaining StaffAdminStore methods for fakeStaff.

func (f *fakeStaff) Create(_ context.Context, c *domain.Colaborador) error {
	if _, ok := f.byID[c.ID]; ok {
		return xerrors.ErrUserAlreadyExists
	}
	f.byID[c.ID] = c
	return nil
}

func (f *fakeStaff) GetByUsername(_ context.Context, username string) (*domain.Colaborador, error) {
	for _, c := range f.byID {
		if c.Username != nil && *c.Username == username {
			return c, nil
		}
	}
	return nil, xerrors.ErrUserNotFound
}

func (f *fakeStaff) List(_ context.Context) ([]*domain.Colaborador, error) {
	out := make([]*domain.Colaborador, 0, len(f.byID))
	for _, c := range f.byID {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStaff) Update(_ context.Context, c *domain.Colaborador) error {
	if _, ok := f.byID[c.ID]; !ok {
		return xerrors.ErrUserNotFound
	}
	f.byID[c.ID] = c
	return nil
}

func (f *fakeStaff) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return xerrors.ErrUserNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeStaff) SetPasswordHash(_ context.Context, id, hash string) error {
	c, ok := f.byID[id]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	c.PasswordHash = &hash
	return nil
}

func (f *fakeStaff) SetPasswordHashByUsername(_ context.Context, username, hash string) error {
	for _, c := range f.byID {
		if c.Username != nil && *c.Username == username {
			c.PasswordHash = &hash
			return nil
		}
	}
	return xerrors.ErrUserNotFound
}

func (f *fakeStaff) UpdateRole(_ context.Context, id, role string) error {
	c, ok := f.byID[id]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	c.Role = role
	return nil
}

func strPtr(s string) *string { return &s }

func TestStaffLoginUpgradesLegacyHash(t *testing.T) {
	legacy := legacySHA256("velho123")
	staff := newFakeStaff(&domain.Colaborador{
		ID:           "c1",
		Name:         "Dr. Silva",
		Role:         "medico",
		Username:     strPtr("silva"),
		PasswordHash: &legacy,
	})
	uc := NewStaffUsecase(staff, newFakeTokens(), 30*time.Minute, 5*time.Minute)

	res, err := uc.Login(context.Background(), "silva", "velho123")
	require.NoError(t, err)
	require.NotNil(t, res.Session)

	// The stored hash must now be bcrypt and still match.
	stored := *staff.byID["c1"].PasswordHash
	assert.NotEqual(t, legacy, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte("velho123")))

	// And the next login verifies against the upgraded hash.
	res, err = uc.Login(context.Background(), "silva", "velho123")
	require.NoError(t, err)
	assert.NotNil(t, res.Session)

	_, err = uc.Login(context.Background(), "silva", "errado")
	assert.ErrorIs(t, err, xerrors.ErrInvalidCredentials)
}

func TestStaffLoginWith2FAIssuesTempToken(t *testing.T) {
	hash := mustHash("senha")
	secret := "JBSWY3DPEHPK3PXP"
	staff := newFakeStaff(&domain.Colaborador{
		ID:            "c1",
		Name:          "Dr. Silva",
		Role:          "medico",
		Username:      strPtr("silva"),
		PasswordHash:  &hash,
		TwoFactorAuth: true,
		TOTPSecret:    &secret,
	})
	tokens := newFakeTokens()
	uc := NewStaffUsecase(staff, tokens, 30*time.Minute, 5*time.Minute)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	uc.now = fixedClock(now)

	res, err := uc.Login(context.Background(), "silva", "senha")
	require.NoError(t, err)
	assert.True(t, res.Requires2FA)
	assert.Nil(t, res.Session)

	verified, err := uc.Verify2FA(context.Background(), res.TempToken, totpCode(t, secret, now))
	require.NoError(t, err)
	require.NotNil(t, verified.Session)
	assert.Equal(t, "c1", verified.Session.UserID)
	assert.NotContains(t, tokens.temp, res.TempToken)
}

func TestStaffCreateNormalizesRole(t *testing.T) {
	staff := newFakeStaff()
	uc := NewStaffUsecase(staff, newFakeTokens(), 30*time.Minute, 5*time.Minute)

	c, err := uc.Create(context.Background(), &domain.Colaborador{
		Name: "Enf. Souza",
		Role: "nurse",
	}, "senha")
	require.NoError(t, err)
	assert.Equal(t, "enfermeiro", c.Role)
	assert.NotEmpty(t, c.ID)
	require.NotNil(t, c.PasswordHash)

	_, err = uc.Create(context.Background(), &domain.Colaborador{Name: "x"}, "")
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestMigrateRolesIsIdempotent(t *testing.T) {
	staff := newFakeStaff(
		&domain.Colaborador{ID: "1", Name: "A", Role: "doctor"},
		&domain.Colaborador{ID: "2", Name: "B", Role: "nurse"},
		&domain.Colaborador{ID: "3", Name: "C", Role: "receptionist"},
		&domain.Colaborador{ID: "4", Name: "D", Role: "admin"},
		&domain.Colaborador{ID: "5", Name: "E", Role: "medico"},
		&domain.Colaborador{ID: "6", Name: "F", Role: "fisioterapeuta"},
	)
	uc := NewStaffUsecase(staff, newFakeTokens(), 30*time.Minute, 5*time.Minute)

	n, err := uc.MigrateRoles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "medico", staff.byID["1"].Role)
	assert.Equal(t, "enfermeiro", staff.byID["2"].Role)
	assert.Equal(t, "recepcionista", staff.byID["3"].Role)
	assert.Equal(t, "administrador", staff.byID["4"].Role)
	assert.Equal(t, "fisioterapeuta", staff.byID["6"].Role, "unknown roles pass through")

	n, err = uc.MigrateRoles(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStaffResetPassword(t *testing.T) {
	hash := mustHash("antiga")
	staff := newFakeStaff(&domain.Colaborador{
		ID: "c1", Name: "Dr. Silva", Role: "medico",
		Username: strPtr("silva"), PasswordHash: &hash,
	})
	uc := NewStaffUsecase(staff, newFakeTokens(), 30*time.Minute, 5*time.Minute)

	require.NoError(t, uc.ResetPassword(context.Background(), "silva", "nova123"))

	_, err := uc.Login(context.Background(), "silva", "antiga")
	assert.ErrorIs(t, err, xerrors.ErrInvalidCredentials)
	res, err := uc.Login(context.Background(), "silva", "nova123")
	require.NoError(t, err)
	assert.NotNil(t, res.Session)

	assert.ErrorIs(t, uc.ResetPassword(context.Background(), "silva", ""), xerrors.ErrInvalidInput)
	assert.ErrorIs(t, uc.ResetPassword(context.Background(), "ghost", "x"), xerrors.ErrUserNotFound)
}
