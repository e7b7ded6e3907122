package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/pkg/xerrors"
)

// UserAdminStore is the full equora user repository surface used by the
// admin-panel CRUD.
type UserAdminStore interface {
	UserStore
	Create(ctx context.Context, u *domain.User) error
	List(ctx context.Context, limit int) ([]*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
	DisableTwoFA(ctx context.Context, id, reason string, at time.Time) error
}

// UsersUsecase manages equora admin-panel accounts, including 2FA enrollment
// through user create/update.
type UsersUsecase struct {
	users  UserAdminStore
	issuer string
	now    func() time.Time
}

func NewUsersUsecase(users UserAdminStore, issuer string) *UsersUsecase {
	return &UsersUsecase{users: users, issuer: issuer, now: time.Now}
}

func hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (uc *UsersUsecase) Create(ctx context.Context, in domain.UserCreate) (*domain.User, error) {
	if in.Username == "" || in.Password == "" {
		return nil, xerrors.ErrInvalidInput
	}
	if _, err := uc.users.GetByUsername(ctx, in.Username); err == nil {
		return nil, xerrors.ErrUserAlreadyExists
	} else if !errors.Is(err, xerrors.ErrUserNotFound) {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		IsActive:     true,
		IsAdmin:      false,
		CreatedAt:    uc.now(),
	}

	if in.Enable2FA {
		enr, err := generateEnrollment(uc.issuer, in.Email)
		if err != nil {
			return nil, err
		}
		user.TwoFASecret = &enr.Secret
		user.ProvisioningURI = &enr.ProvisioningURI
	}

	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *UsersUsecase) List(ctx context.Context) ([]*domain.User, error) {
	return uc.users.List(ctx, 100)
}

func (uc *UsersUsecase) Get(ctx context.Context, id string) (*domain.User, error) {
	return uc.users.GetByID(ctx, id)
}

// Update applies partial changes. Toggling 2FA on generates an enrollment
// only when the user has no secret yet or lost the provisioning URI; an
// existing enrollment is never rotated. Toggling it off clears the secret,
// records the reason and invalidates live sessions via session_version.
func (uc *UsersUsecase) Update(ctx context.Context, id string, in domain.UserUpdate) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Username != nil && *in.Username != "" {
		user.Username = *in.Username
	}
	if in.Email != nil && *in.Email != "" {
		user.Email = *in.Email
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.IsAdmin != nil {
		user.IsAdmin = *in.IsAdmin
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if in.Enable2FA != nil {
		enrolled := user.TwoFAEnabled()
		switch {
		case *in.Enable2FA && (!enrolled || user.ProvisioningURI == nil):
			enr, err := generateEnrollment(uc.issuer, user.Email)
			if err != nil {
				return nil, err
			}
			user.TwoFASecret = &enr.Secret
			user.ProvisioningURI = &enr.ProvisioningURI
			user.ProvisioningURIUsed = false
		case !*in.Enable2FA && enrolled:
			if err := uc.users.Update(ctx, user); err != nil {
				return nil, err
			}
			if err := uc.users.DisableTwoFA(ctx, id, "admin disabled", uc.now()); err != nil {
				return nil, err
			}
			return uc.users.GetByID(ctx, id)
		}
	}

	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return uc.users.GetByID(ctx, id)
}

func (uc *UsersUsecase) Delete(ctx context.Context, id string) error {
	return uc.users.Delete(ctx, id)
}

// IsAdmin reports whether the given user id belongs to an admin account.
func (uc *UsersUsecase) IsAdmin(ctx context.Context, userID string) (bool, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsAdmin, nil
}
