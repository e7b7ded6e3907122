package usecase

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/pkg/xerrors"
)

// In-memory stores used across the usecase tests.

type fakeUsers struct {
	byID map[string]*domain.User
}

func newFakeUsers(users ...*domain.User) *fakeUsers {
	f := &fakeUsers{byID: map[string]*domain.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range f.byID {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return nil, xerrors.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, xerrors.ErrUserNotFound
}

func (f *fakeUsers) MarkProvisioningURIUsed(_ context.Context, id string) error {
	u, ok := f.byID[id]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	u.ProvisioningURIUsed = true
	return nil
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	if _, ok := f.byID[u.ID]; ok {
		return xerrors.ErrUserAlreadyExists
	}
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) List(_ context.Context, _ int) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) Update(_ context.Context, u *domain.User) error {
	if _, ok := f.byID[u.ID]; !ok {
		return xerrors.ErrUserNotFound
	}
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return xerrors.ErrUserNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUsers) DisableTwoFA(_ context.Context, id, reason string, at time.Time) error {
	u, ok := f.byID[id]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	u.TwoFASecret = nil
	u.ProvisioningURI = nil
	u.ProvisioningURIUsed = false
	u.MFADisabledAt = &at
	u.MFADisabledReason = &reason
	u.SessionVersion++
	return nil
}

type fakeTokens struct {
	sessions map[string]*domain.Session
	temp     map[string]*domain.TempToken
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{
		sessions: map[string]*domain.Session{},
		temp:     map[string]*domain.TempToken{},
	}
}

func (f *fakeTokens) CreateSession(_ context.Context, s *domain.Session) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeTokens) GetSession(_ context.Context, id string) (*domain.Session, error) {
	return f.sessions[id], nil
}

func (f *fakeTokens) DeleteSession(_ context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

func (f *fakeTokens) CreateTempToken(_ context.Context, t *domain.TempToken) error {
	f.temp[t.Token] = t
	return nil
}

func (f *fakeTokens) GetTempToken(_ context.Context, token string) (*domain.TempToken, error) {
	return f.temp[token], nil
}

func (f *fakeTokens) DeleteTempToken(_ context.Context, token string) error {
	delete(f.temp, token)
	return nil
}

func mustHash(password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}
