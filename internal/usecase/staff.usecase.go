package usecase

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/pkg/xerrors"
)

// StaffAdminStore is the full gpac colaborador repository surface.
type StaffAdminStore interface {
	StaffStore
	Create(ctx context.Context, c *domain.Colaborador) error
	GetByUsername(ctx context.Context, username string) (*domain.Colaborador, error)
	List(ctx context.Context) ([]*domain.Colaborador, error)
	Update(ctx context.Context, c *domain.Colaborador) error
	Delete(ctx context.Context, id string) error
	SetPasswordHash(ctx context.Context, id, hash string) error
	SetPasswordHashByUsername(ctx context.Context, username, hash string) error
	UpdateRole(ctx context.Context, id, role string) error
}

// StaffLoginResult mirrors AuthResult for the gpac tenant.
type StaffLoginResult struct {
	Requires2FA bool
	TempToken   string
	Session     *domain.Session
	Colaborador *domain.Colaborador
}

// StaffUsecase manages gpac staff accounts and their login flow.
type StaffUsecase struct {
	staff        StaffAdminStore
	tokens       TokenStore
	sessionTTL   time.Duration
	tempTokenTTL time.Duration
	now          func() time.Time
}

func NewStaffUsecase(staff StaffAdminStore, tokens TokenStore, sessionTTL, tempTokenTTL time.Duration) *StaffUsecase {
	return &StaffUsecase{
		staff:        staff,
		tokens:       tokens,
		sessionTTL:   sessionTTL,
		tempTokenTTL: tempTokenTTL,
		now:          time.Now,
	}
}

func legacySHA256(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// checkPassword accepts bcrypt hashes and, for records created before the
// hashing change, hex SHA-256 digests. It reports whether the stored hash is
// a legacy one so the caller can upgrade it.
func checkPassword(stored, password string) (ok, legacy bool) {
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil, false
	}
	digest := legacySHA256(password)
	return subtle.ConstantTimeCompare([]byte(stored), []byte(digest)) == 1, true
}

// Login runs the password step. On a match against a legacy SHA-256 hash the
// stored hash is upgraded to bcrypt in place. Accounts with 2FA enabled get a
// temp token instead of a session.
func (uc *StaffUsecase) Login(ctx context.Context, username, password string) (*StaffLoginResult, error) {
	c, err := uc.staff.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return nil, xerrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if c.PasswordHash == nil {
		return nil, xerrors.ErrInvalidCredentials
	}

	ok, legacy := checkPassword(*c.PasswordHash, password)
	if !ok {
		return nil, xerrors.ErrInvalidCredentials
	}
	if legacy {
		if hash, err := hashPassword(password); err == nil {
			if err := uc.staff.SetPasswordHash(ctx, c.ID, hash); err != nil {
				log.Printf("staff login: upgrading password hash for %s: %v", c.ID, err)
			}
		}
	}

	if c.TwoFactorAuth && c.TOTPSecret != nil {
		t := &domain.TempToken{
			Token:     opaqueToken(),
			UserID:    c.ID,
			ExpiresAt: uc.now().Add(uc.tempTokenTTL),
		}
		if err := uc.tokens.CreateTempToken(ctx, t); err != nil {
			return nil, err
		}
		return &StaffLoginResult{Requires2FA: true, TempToken: t.Token, Colaborador: c}, nil
	}

	s := &domain.Session{
		ID:        opaqueToken(),
		UserID:    c.ID,
		Version:   c.SessionVersion,
		ExpiresAt: uc.now().Add(uc.sessionTTL),
	}
	if err := uc.tokens.CreateSession(ctx, s); err != nil {
		return nil, err
	}
	return &StaffLoginResult{Session: s, Colaborador: c}, nil
}

// Verify2FA exchanges a temp token plus a valid TOTP code for a session.
func (uc *StaffUsecase) Verify2FA(ctx context.Context, tempToken, code string) (*StaffLoginResult, error) {
	t, err := uc.tokens.GetTempToken(ctx, tempToken)
	if err != nil {
		return nil, err
	}
	if t == nil || t.Expired(uc.now()) {
		return nil, xerrors.ErrInvalidOrExpiredToken
	}

	c, err := uc.staff.GetByID(ctx, t.UserID)
	if err != nil {
		return nil, err
	}
	if c.TOTPSecret == nil {
		return nil, xerrors.Err2FANotEnabled
	}
	if !ValidateTOTPAt(code, *c.TOTPSecret, uc.now()) {
		return nil, xerrors.ErrInvalidTOTP
	}

	if err := uc.tokens.DeleteTempToken(ctx, tempToken); err != nil {
		log.Printf("staff 2fa: deleting temp token: %v", err)
	}

	s := &domain.Session{
		ID:        opaqueToken(),
		UserID:    c.ID,
		Version:   c.SessionVersion,
		ExpiresAt: uc.now().Add(uc.sessionTTL),
	}
	if err := uc.tokens.CreateSession(ctx, s); err != nil {
		return nil, err
	}
	return &StaffLoginResult{Session: s, Colaborador: c}, nil
}

// VerifySession resolves a session id to a staff id, enforcing expiry and
// session_version.
func (uc *StaffUsecase) VerifySession(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", nil
	}
	s, err := uc.tokens.GetSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if s == nil || s.Expired(uc.now()) {
		return "", nil
	}
	c, err := uc.staff.GetByID(ctx, s.UserID)
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return "", nil
		}
		return "", err
	}
	if c.SessionVersion != s.Version {
		if err := uc.tokens.DeleteSession(ctx, sessionID); err != nil {
			log.Printf("staff session: deleting stale session: %v", err)
		}
		return "", nil
	}
	return c.ID, nil
}

func (uc *StaffUsecase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return uc.tokens.DeleteSession(ctx, sessionID)
}

func (uc *StaffUsecase) Create(ctx context.Context, c *domain.Colaborador, password string) (*domain.Colaborador, error) {
	if c.Name == "" || c.Role == "" {
		return nil, xerrors.ErrInvalidInput
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Role = domain.MigrateRole(c.Role)
	if password != "" {
		hash, err := hashPassword(password)
		if err != nil {
			return nil, err
		}
		c.PasswordHash = &hash
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = uc.now()
	}
	if err := uc.staff.Create(ctx, c); err != nil {
		return nil, err
	}
	return uc.staff.GetByID(ctx, c.ID)
}

func (uc *StaffUsecase) Get(ctx context.Context, id string) (*domain.Colaborador, error) {
	c, err := uc.staff.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Role = domain.MigrateRole(c.Role)
	return c, nil
}

func (uc *StaffUsecase) List(ctx context.Context) ([]*domain.Colaborador, error) {
	out, err := uc.staff.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range out {
		c.Role = domain.MigrateRole(c.Role)
	}
	return out, nil
}

func (uc *StaffUsecase) Update(ctx context.Context, c *domain.Colaborador, password string) (*domain.Colaborador, error) {
	existing, err := uc.staff.GetByID(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Role = domain.MigrateRole(c.Role)
	c.PasswordHash = existing.PasswordHash
	if password != "" {
		hash, err := hashPassword(password)
		if err != nil {
			return nil, err
		}
		c.PasswordHash = &hash
	}
	if err := uc.staff.Update(ctx, c); err != nil {
		return nil, err
	}
	return uc.staff.GetByID(ctx, c.ID)
}

func (uc *StaffUsecase) Delete(ctx context.Context, id string) error {
	return uc.staff.Delete(ctx, id)
}

// ResetPassword sets a fresh bcrypt hash for the given username and forces a
// password change on the next login.
func (uc *StaffUsecase) ResetPassword(ctx context.Context, username, newPassword string) error {
	if newPassword == "" {
		return xerrors.ErrInvalidInput
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	return uc.staff.SetPasswordHashByUsername(ctx, username, hash)
}

// MigrateRoles rewrites legacy English role values to Portuguese across all
// staff records. Re-running it is a no-op.
func (uc *StaffUsecase) MigrateRoles(ctx context.Context) (int, error) {
	all, err := uc.staff.List(ctx)
	if err != nil {
		return 0, err
	}
	migrated := 0
	for _, c := range all {
		next := domain.MigrateRole(c.Role)
		if next == c.Role {
			continue
		}
		if err := uc.staff.UpdateRole(ctx, c.ID, next); err != nil {
			return migrated, err
		}
		migrated++
	}
	return migrated, nil
}
