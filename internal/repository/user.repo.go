package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/pkg/xerrors"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	id, username, email, password_hash, is_active, is_admin,
	twofa_secret, provisioning_uri, provisioning_uri_used,
	session_version, mfa_disabled_at, mfa_disabled_reason, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.IsActive,
		&u.IsAdmin,
		&u.TwoFASecret,
		&u.ProvisioningURI,
		&u.ProvisioningURIUsed,
		&u.SessionVersion,
		&u.MFADisabledAt,
		&u.MFADisabledReason,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO equora.users (
			id, username, email, password_hash, is_active, is_admin,
			twofa_secret, provisioning_uri, provisioning_uri_used,
			session_version, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.IsActive, u.IsAdmin,
		u.TwoFASecret, u.ProvisioningURI, u.ProvisioningURIUsed,
		u.SessionVersion, u.CreatedAt)
	if err != nil && xerrors.IsUniqueViolation(err) {
		return xerrors.ErrUserAlreadyExists
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM equora.users WHERE id=$1`, id)
	return scanUser(row)
}

// GetByUsername looks the user up case-insensitively.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM equora.users WHERE LOWER(username)=LOWER($1)`, username)
	return scanUser(row)
}

func (r *UserRepository) List(ctx context.Context, limit int) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM equora.users ORDER BY created_at LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update persists the full mutable column set; callers mutate a fetched User.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE equora.users SET
			username=$2, email=$3, password_hash=$4, is_active=$5, is_admin=$6,
			twofa_secret=$7, provisioning_uri=$8, provisioning_uri_used=$9,
			session_version=$10, mfa_disabled_at=$11, mfa_disabled_reason=$12
		WHERE id=$1
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.IsActive, u.IsAdmin,
		u.TwoFASecret, u.ProvisioningURI, u.ProvisioningURIUsed,
		u.SessionVersion, u.MFADisabledAt, u.MFADisabledReason)
	if err != nil {
		if xerrors.IsUniqueViolation(err) {
			return xerrors.ErrUserAlreadyExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}

// MarkProvisioningURIUsed flips the flag after the first successful TOTP
// verification. Idempotent.
func (r *UserRepository) MarkProvisioningURIUsed(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE equora.users SET provisioning_uri_used=TRUE WHERE id=$1`, id)
	return err
}

// DisableTwoFA clears the secret and backup material, records why, and bumps
// session_version so live sessions drop on their next read.
func (r *UserRepository) DisableTwoFA(ctx context.Context, id, reason string, at time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE equora.users SET
			twofa_secret=NULL, provisioning_uri=NULL, provisioning_uri_used=FALSE,
			backup_codes=NULL, mfa_disabled_at=$2, mfa_disabled_reason=$3,
			session_version=session_version+1
		WHERE id=$1
	`, id, at, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM equora.users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}
