package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/pkg/xerrors"
)

// ScheduleRepository holds the gpac patients and appointments collections.
type ScheduleRepository struct {
	db *pgxpool.Pool
}

func NewScheduleRepository(db *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func scanPatient(row pgx.Row) (*domain.Patient, error) {
	var p domain.Patient
	err := row.Scan(&p.ID, &p.Name, &p.CPF, &p.BirthDate, &p.Phone,
		&p.Address, &p.City, &p.State, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ScheduleRepository) CreatePatient(ctx context.Context, p *domain.Patient) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO gpac.pacientes (id, name, cpf, birth_date, phone, address, city, state, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, p.ID, p.Name, p.CPF, p.BirthDate, p.Phone, p.Address, p.City, p.State, p.CreatedAt)
	return err
}

func (r *ScheduleRepository) GetPatient(ctx context.Context, id string) (*domain.Patient, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, cpf, birth_date, phone, address, city, state, created_at
		FROM gpac.pacientes WHERE id=$1
	`, id)
	return scanPatient(row)
}

func (r *ScheduleRepository) ListPatients(ctx context.Context) ([]*domain.Patient, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, cpf, birth_date, phone, address, city, state, created_at
		FROM gpac.pacientes ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []*domain.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func (r *ScheduleRepository) UpdatePatient(ctx context.Context, p *domain.Patient) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE gpac.pacientes SET name=$2, cpf=$3, birth_date=$4, phone=$5, address=$6, city=$7, state=$8
		WHERE id=$1
	`, p.ID, p.Name, p.CPF, p.BirthDate, p.Phone, p.Address, p.City, p.State)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *ScheduleRepository) DeletePatient(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM gpac.pacientes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var a domain.Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.ColaboradorID, &a.Specialty,
		&a.ScheduledAt, &a.Status, &a.Notes, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ScheduleRepository) CreateAppointment(ctx context.Context, a *domain.Appointment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO gpac.agendamentos (id, patient_id, colaborador_id, specialty, scheduled_at, status, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, a.ID, a.PatientID, a.ColaboradorID, a.Specialty, a.ScheduledAt, a.Status, a.Notes, a.CreatedAt)
	return err
}

func (r *ScheduleRepository) ListAppointments(ctx context.Context) ([]*domain.Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, patient_id, colaborador_id, specialty, scheduled_at, status, notes, created_at
		FROM gpac.agendamentos ORDER BY scheduled_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []*domain.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}

func (r *ScheduleRepository) UpdateAppointment(ctx context.Context, a *domain.Appointment) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE gpac.agendamentos SET patient_id=$2, colaborador_id=$3, specialty=$4, scheduled_at=$5, status=$6, notes=$7
		WHERE id=$1
	`, a.ID, a.PatientID, a.ColaboradorID, a.Specialty, a.ScheduledAt, a.Status, a.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *ScheduleRepository) DeleteAppointment(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM gpac.agendamentos WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
