package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/pkg/xerrors"
)

// UserStore is the slice of the equora user repository the login flow needs.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	MarkProvisioningURIUsed(ctx context.Context, id string) error
}

// TokenStore keeps sessions and temp tokens with their expiries. Get methods
// return (nil, nil) for records that are missing or past their deadline.
type TokenStore interface {
	CreateSession(ctx context.Context, s *domain.Session) error
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
	CreateTempToken(ctx context.Context, t *domain.TempToken) error
	GetTempToken(ctx context.Context, token string) (*domain.TempToken, error)
	DeleteTempToken(ctx context.Context, token string) error
}

// AuthResult is the outcome of the password step. Either Session is set, or
// Requires2FA is true and TempToken bridges to the TOTP step.
// ProvisioningURI is non-nil only while the user has not completed the first
// successful verification.
type AuthResult struct {
	Requires2FA     bool
	TempToken       string
	ProvisioningURI *string
	Session         *domain.Session
	User            *domain.User
}

// AuthUsecase implements the equora session and credential manager.
type AuthUsecase struct {
	users  UserStore
	tokens TokenStore

	sessionTTL   time.Duration
	tempTokenTTL time.Duration
	now          func() time.Time
}

func NewAuthUsecase(users UserStore, tokens TokenStore, sessionTTL, tempTokenTTL time.Duration) *AuthUsecase {
	return &AuthUsecase{
		users:        users,
		tokens:       tokens,
		sessionTTL:   sessionTTL,
		tempTokenTTL: tempTokenTTL,
		now:          time.Now,
	}
}

// opaqueToken mirrors secrets.token_urlsafe(32): 32 random bytes, URL-safe
// base64 without padding.
func opaqueToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand failure is unrecoverable
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func (uc *AuthUsecase) createSession(ctx context.Context, user *domain.User) (*domain.Session, error) {
	s := &domain.Session{
		ID:        opaqueToken(),
		UserID:    user.ID,
		Version:   user.SessionVersion,
		ExpiresAt: uc.now().Add(uc.sessionTTL),
	}
	if err := uc.tokens.CreateSession(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *AuthUsecase) SessionTTL() time.Duration { return uc.sessionTTL }

// Authenticate runs the password step. Username lookup is case-insensitive.
// With 2FA enabled it issues a temp token instead of a session, including the
// provisioning URI until the user's first successful verification.
func (uc *AuthUsecase) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return nil, xerrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, xerrors.ErrInvalidCredentials
	}

	if user.TwoFAEnabled() {
		t := &domain.TempToken{
			Token:     opaqueToken(),
			UserID:    user.ID,
			ExpiresAt: uc.now().Add(uc.tempTokenTTL),
		}
		if err := uc.tokens.CreateTempToken(ctx, t); err != nil {
			return nil, err
		}

		var provisioningURI *string
		if !user.ProvisioningURIUsed {
			provisioningURI = user.ProvisioningURI
		}
		return &AuthResult{
			Requires2FA:     true,
			TempToken:       t.Token,
			ProvisioningURI: provisioningURI,
			User:            user,
		}, nil
	}

	session, err := uc.createSession(ctx, user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Session: session, User: user}, nil
}

// Verify2FA redeems a temp token against a TOTP code. On success the
// provisioning URI is marked used (idempotent), the token is consumed and a
// session is created. On failure the token is left to expire.
func (uc *AuthUsecase) Verify2FA(ctx context.Context, tempToken, code string) (*domain.Session, *domain.User, error) {
	t, err := uc.tokens.GetTempToken(ctx, tempToken)
	if err != nil {
		return nil, nil, err
	}
	if t == nil || t.Expired(uc.now()) {
		return nil, nil, xerrors.ErrInvalidOrExpiredToken
	}

	user, err := uc.users.GetByID(ctx, t.UserID)
	if err != nil || !user.TwoFAEnabled() {
		return nil, nil, xerrors.Err2FANotEnabled
	}

	if !ValidateTOTPAt(code, *user.TwoFASecret, uc.now()) {
		return nil, nil, xerrors.ErrInvalidTOTP
	}

	if !user.ProvisioningURIUsed {
		if err := uc.users.MarkProvisioningURIUsed(ctx, user.ID); err != nil {
			return nil, nil, err
		}
	}

	if err := uc.tokens.DeleteTempToken(ctx, tempToken); err != nil {
		log.Printf("[auth] failed to consume temp token: %v", err)
	}

	session, err := uc.createSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// VerifySession resolves a session cookie to a user id. Absent or expired
// sessions yield ("", nil), never an error; a session whose pinned version no
// longer matches the user's session_version is dropped the same way.
func (uc *AuthUsecase) VerifySession(ctx context.Context, sessionID string) (string, error) {
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

	user, err := uc.users.GetByID(ctx, s.UserID)
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return "", nil
		}
		return "", err
	}
	if user.SessionVersion != s.Version {
		_ = uc.tokens.DeleteSession(ctx, sessionID)
		return "", nil
	}
	return s.UserID, nil
}

// Logout deletes the session unconditionally. Deleting an absent session is
// not an error.
func (uc *AuthUsecase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return uc.tokens.DeleteSession(ctx, sessionID)
}

// CurrentUser loads the full user for a verified session.
func (uc *AuthUsecase) CurrentUser(ctx context.Context, sessionID string) (*domain.User, error) {
	userID, err := uc.VerifySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, xerrors.ErrInvalidSession
	}
	return uc.users.GetByID(ctx, userID)
}
