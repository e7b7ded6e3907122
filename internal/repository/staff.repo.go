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

type StaffRepository struct {
	db *pgxpool.Pool
}

func NewStaffRepository(db *pgxpool.Pool) *StaffRepository {
	return &StaffRepository{db: db}
}

const staffColumns = `
	id, name, email, phone, role, specialty, crm, gender, birth_date, cpf,
	username, password_hash, change_password_on_first_login, two_factor_auth,
	totp_secret, user_profile, photo, session_version, created_at`

func scanColaborador(row pgx.Row) (*domain.Colaborador, error) {
	var c domain.Colaborador
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Role,
		&c.Specialty,
		&c.CRM,
		&c.Gender,
		&c.BirthDate,
		&c.CPF,
		&c.Username,
		&c.PasswordHash,
		&c.ChangePasswordOnFirstLogin,
		&c.TwoFactorAuth,
		&c.TOTPSecret,
		&c.UserProfile,
		&c.Photo,
		&c.SessionVersion,
		&c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *StaffRepository) Create(ctx context.Context, c *domain.Colaborador) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO gpac.colaboradores (
			id, name, email, phone, role, specialty, crm, gender, birth_date,
			cpf, username, password_hash, change_password_on_first_login,
			two_factor_auth, user_profile, photo, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`, c.ID, c.Name, c.Email, c.Phone, c.Role, c.Specialty, c.CRM, c.Gender,
		c.BirthDate, c.CPF, c.Username, c.PasswordHash,
		c.ChangePasswordOnFirstLogin, c.TwoFactorAuth, c.UserProfile, c.Photo,
		c.CreatedAt)
	if err != nil && xerrors.IsUniqueViolation(err) {
		return xerrors.ErrUserAlreadyExists
	}
	return err
}

func (r *StaffRepository) GetByID(ctx context.Context, id string) (*domain.Colaborador, error) {
	row := r.db.QueryRow(ctx, `SELECT `+staffColumns+` FROM gpac.colaboradores WHERE id=$1`, id)
	return scanColaborador(row)
}

func (r *StaffRepository) GetByUsername(ctx context.Context, username string) (*domain.Colaborador, error) {
	row := r.db.QueryRow(ctx, `SELECT `+staffColumns+` FROM gpac.colaboradores WHERE username=$1`, username)
	return scanColaborador(row)
}

func (r *StaffRepository) List(ctx context.Context) ([]*domain.Colaborador, error) {
	rows, err := r.db.Query(ctx, `SELECT `+staffColumns+` FROM gpac.colaboradores ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Colaborador
	for rows.Next() {
		c, err := scanColaborador(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *StaffRepository) Update(ctx context.Context, c *domain.Colaborador) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE gpac.colaboradores SET
			name=$2, email=$3, phone=$4, role=$5, specialty=$6, crm=$7,
			gender=$8, birth_date=$9, cpf=$10, username=$11, password_hash=$12,
			change_password_on_first_login=$13, two_factor_auth=$14,
			user_profile=$15, photo=$16
		WHERE id=$1
	`, c.ID, c.Name, c.Email, c.Phone, c.Role, c.Specialty, c.CRM, c.Gender,
		c.BirthDate, c.CPF, c.Username, c.PasswordHash,
		c.ChangePasswordOnFirstLogin, c.TwoFactorAuth, c.UserProfile, c.Photo)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}

func (r *StaffRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM gpac.colaboradores WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}

func (r *StaffRepository) SetPasswordHash(ctx context.Context, id, hash string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE gpac.colaboradores SET password_hash=$2 WHERE id=$1`, id, hash)
	return err
}

func (r *StaffRepository) SetPasswordHashByUsername(ctx context.Context, username, hash string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE gpac.colaboradores SET password_hash=$2 WHERE username=$1`, username, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}

// SaveTOTPSecret enrolls the staff member and flips the 2FA flag in one write.
func (r *StaffRepository) SaveTOTPSecret(ctx context.Context, id, secret string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE gpac.colaboradores SET totp_secret=$2, two_factor_auth=TRUE WHERE id=$1
	`, id, secret)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}

// DisableTwoFA drops the secret and backup codes, records the reason and
// bumps session_version.
func (r *StaffRepository) DisableTwoFA(ctx context.Context, id, reason string, at time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE gpac.colaboradores SET
			totp_secret=NULL, backup_codes=NULL, two_factor_auth=FALSE,
			mfa_disabled_at=$2, mfa_disabled_reason=$3,
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

// UpdateRole is used by the role-migration utility.
func (r *StaffRepository) UpdateRole(ctx context.Context, id, role string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE gpac.colaboradores SET role=$2 WHERE id=$1`, id, role)
	return err
}
