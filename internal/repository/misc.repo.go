package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/pkg/xerrors"
)

// MiscRepository covers the small single-table collections: equora clients
// and access stats, gpac status checks and profiles.
type MiscRepository struct {
	db *pgxpool.Pool
}

func NewMiscRepository(db *pgxpool.Pool) *MiscRepository {
	return &MiscRepository{db: db}
}

// ---- equora clients ----

func (r *MiscRepository) CreateClient(ctx context.Context, c *domain.Client) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO equora.clients (id, name, address, phone, email)
		VALUES ($1,$2,$3,$4,$5)
	`, c.ID, c.Name, c.Address, c.Phone, c.Email)
	return err
}

func (r *MiscRepository) ListClients(ctx context.Context) ([]*domain.Client, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, address, phone, email FROM equora.clients ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*domain.Client
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.Email); err != nil {
			return nil, err
		}
		clients = append(clients, &c)
	}
	return clients, rows.Err()
}

// ---- equora access stats ----

func (r *MiscRepository) CreateAccessStat(ctx context.Context, s *domain.AccessStat) error {
	var locRaw []byte
	if s.Location != nil {
		var err error
		locRaw, err = json.Marshal(s.Location)
		if err != nil {
			return err
		}
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO equora.stats_access (id, ip, location, ts) VALUES ($1,$2,$3,$4)
	`, s.ID, s.IP, locRaw, s.Timestamp)
	return err
}

func (r *MiscRepository) ListAccessStats(ctx context.Context, start, end *time.Time, limit int) ([]*domain.AccessStat, error) {
	query := `SELECT id, ip, location, ts FROM equora.stats_access`
	args := []interface{}{}
	switch {
	case start != nil && end != nil:
		query += ` WHERE ts >= $1 AND ts <= $2`
		args = append(args, *start, *end)
	case start != nil:
		query += ` WHERE ts >= $1`
		args = append(args, *start)
	case end != nil:
		query += ` WHERE ts <= $1`
		args = append(args, *end)
	}
	args = append(args, limit)
	query += ` ORDER BY ts DESC LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []*domain.AccessStat
	for rows.Next() {
		var s domain.AccessStat
		var locRaw []byte
		if err := rows.Scan(&s.ID, &s.IP, &locRaw, &s.Timestamp); err != nil {
			return nil, err
		}
		if locRaw != nil {
			if err := json.Unmarshal(locRaw, &s.Location); err != nil {
				return nil, err
			}
		}
		stats = append(stats, &s)
	}
	return stats, rows.Err()
}

// ListAccessStatsWithoutLocation feeds the backfill utility.
func (r *MiscRepository) ListAccessStatsWithoutLocation(ctx context.Context) ([]*domain.AccessStat, error) {
	rows, err := r.db.Query(ctx, `SELECT id, ip, ts FROM equora.stats_access WHERE location IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []*domain.AccessStat
	for rows.Next() {
		var s domain.AccessStat
		if err := rows.Scan(&s.ID, &s.IP, &s.Timestamp); err != nil {
			return nil, err
		}
		stats = append(stats, &s)
	}
	return stats, rows.Err()
}

func (r *MiscRepository) SetAccessStatLocation(ctx context.Context, id string, loc *domain.GeoLocation) error {
	locRaw, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `UPDATE equora.stats_access SET location=$2 WHERE id=$1`, id, locRaw)
	return err
}

func (r *MiscRepository) ClearAccessStats(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM equora.stats_access`)
	return err
}

// ---- gpac status checks ----

func (r *MiscRepository) CreateStatusCheck(ctx context.Context, sc *domain.StatusCheck) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO gpac.status_checks (id, client_name, ts) VALUES ($1,$2,$3)
	`, sc.ID, sc.ClientName, sc.Timestamp)
	return err
}

func (r *MiscRepository) ListStatusChecks(ctx context.Context, limit int) ([]*domain.StatusCheck, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, client_name, ts FROM gpac.status_checks ORDER BY ts DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []*domain.StatusCheck
	for rows.Next() {
		var sc domain.StatusCheck
		if err := rows.Scan(&sc.ID, &sc.ClientName, &sc.Timestamp); err != nil {
			return nil, err
		}
		checks = append(checks, &sc)
	}
	return checks, rows.Err()
}

// ---- gpac profiles ----

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Permissions, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *MiscRepository) CreateProfile(ctx context.Context, p *domain.Profile) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO gpac.profiles (id, name, description, permissions, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, p.ID, p.Name, p.Description, p.Permissions, p.CreatedAt)
	if err != nil && xerrors.IsUniqueViolation(err) {
		return xerrors.ErrInvalidInput
	}
	return err
}

func (r *MiscRepository) GetProfileByName(ctx context.Context, name string) (*domain.Profile, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, name, description, permissions, created_at FROM gpac.profiles WHERE name=$1`, name)
	return scanProfile(row)
}

func (r *MiscRepository) ListProfiles(ctx context.Context) ([]*domain.Profile, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, description, permissions, created_at FROM gpac.profiles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *MiscRepository) UpdateProfile(ctx context.Context, p *domain.Profile) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE gpac.profiles SET name=$2, description=$3, permissions=$4 WHERE id=$1
	`, p.ID, p.Name, p.Description, p.Permissions)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *MiscRepository) DeleteProfile(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM gpac.profiles WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
