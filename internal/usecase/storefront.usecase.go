package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/pkg/jwtutil"
	"github.com/jeannegris/equora/pkg/xerrors"
)

// AdminUserStore is the per-tenant admin_users repository surface.
type AdminUserStore interface {
	Create(ctx context.Context, u *domain.AdminUser) error
	GetByUsername(ctx context.Context, username string) (*domain.AdminUser, error)
}

// StorefrontAuthUsecase issues JWT bearer tokens for the storefront admin
// surfaces. Each tenant gets its own instance over its own admin_users table.
type StorefrontAuthUsecase struct {
	users AdminUserStore
	jwt   *jwtutil.Signer
	now   func() time.Time
}

func NewStorefrontAuthUsecase(users AdminUserStore, jwt *jwtutil.Signer) *StorefrontAuthUsecase {
	return &StorefrontAuthUsecase{users: users, jwt: jwt, now: time.Now}
}

type TokenResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (uc *StorefrontAuthUsecase) Register(ctx context.Context, username, password string) (*domain.AdminUser, error) {
	if username == "" || password == "" {
		return nil, xerrors.ErrInvalidInput
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &domain.AdminUser{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    uc.now(),
	}
	if err := uc.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (uc *StorefrontAuthUsecase) Login(ctx context.Context, username, password string) (*TokenResult, error) {
	u, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return nil, xerrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, xerrors.ErrInvalidCredentials
	}
	token, err := uc.jwt.Sign(u.Username)
	if err != nil {
		return nil, err
	}
	return &TokenResult{AccessToken: token, TokenType: "bearer"}, nil
}

// Me resolves a bearer token back to the admin account.
func (uc *StorefrontAuthUsecase) Me(ctx context.Context, token string) (*domain.AdminUser, error) {
	username, err := uc.jwt.Verify(token)
	if err != nil {
		return nil, xerrors.ErrUnauthorized
	}
	u, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return nil, xerrors.ErrUnauthorized
		}
		return nil, err
	}
	return u, nil
}
