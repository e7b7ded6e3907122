package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/pkg/xerrors"
)

// AdminUserRepository backs the JWT-authenticated storefront admin accounts.
// Both storefront tenants keep an identical admin_users table in their own
// schema, so the repository is parameterized by schema name.
type AdminUserRepository struct {
	db     *pgxpool.Pool
	schema string
}

func NewAdminUserRepository(db *pgxpool.Pool, schema string) *AdminUserRepository {
	return &AdminUserRepository{db: db, schema: schema}
}

func (r *AdminUserRepository) Create(ctx context.Context, u *domain.AdminUser) error {
	_, err := r.db.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s.admin_users (id, username, password_hash, created_at)
		VALUES ($1,$2,$3,$4)
	`, r.schema), u.ID, u.Username, u.PasswordHash, u.CreatedAt)
	if err != nil && xerrors.IsUniqueViolation(err) {
		return xerrors.ErrUserAlreadyExists
	}
	return err
}

func (r *AdminUserRepository) GetByUsername(ctx context.Context, username string) (*domain.AdminUser, error) {
	var u domain.AdminUser
	err := r.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT id, username, password_hash, created_at FROM %s.admin_users WHERE username=$1
	`, r.schema), username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
