package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/pkg/xerrors"
)

// CatalogRepository serves the three product catalogs: bkautocenter tires and
// services, aguanaboca produtos.
type CatalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ---- tires ----

func scanTire(row pgx.Row) (*domain.Tire, error) {
	var t domain.Tire
	err := row.Scan(&t.ID, &t.Brand, &t.Model, &t.Size, &t.Price, &t.ImageURL,
		&t.InStock, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *CatalogRepository) CreateTire(ctx context.Context, t *domain.Tire) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO bkautocenter.tires (id, brand, model, size, price, image_url, in_stock, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, t.ID, t.Brand, t.Model, t.Size, t.Price, t.ImageURL, t.InStock, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *CatalogRepository) GetTire(ctx context.Context, id string) (*domain.Tire, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, brand, model, size, price, image_url, in_stock, created_at, updated_at
		FROM bkautocenter.tires WHERE id=$1
	`, id)
	return scanTire(row)
}

func (r *CatalogRepository) ListTires(ctx context.Context) ([]*domain.Tire, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, brand, model, size, price, image_url, in_stock, created_at, updated_at
		FROM bkautocenter.tires ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tires []*domain.Tire
	for rows.Next() {
		t, err := scanTire(rows)
		if err != nil {
			return nil, err
		}
		tires = append(tires, t)
	}
	return tires, rows.Err()
}

func (r *CatalogRepository) UpdateTire(ctx context.Context, t *domain.Tire) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE bkautocenter.tires SET
			brand=$2, model=$3, size=$4, price=$5, image_url=$6, in_stock=$7, updated_at=NOW()
		WHERE id=$1
	`, t.ID, t.Brand, t.Model, t.Size, t.Price, t.ImageURL, t.InStock)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *CatalogRepository) DeleteTire(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bkautocenter.tires WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// ---- services ----

func scanService(row pgx.Row) (*domain.Service, error) {
	var s domain.Service
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.Duration,
		&s.ImageURL, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *CatalogRepository) CreateService(ctx context.Context, s *domain.Service) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO bkautocenter.services (id, name, description, price, duration, image_url, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, s.ID, s.Name, s.Description, s.Price, s.Duration, s.ImageURL, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *CatalogRepository) GetService(ctx context.Context, id string) (*domain.Service, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, description, price, duration, image_url, created_at, updated_at
		FROM bkautocenter.services WHERE id=$1
	`, id)
	return scanService(row)
}

func (r *CatalogRepository) ListServices(ctx context.Context) ([]*domain.Service, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, price, duration, image_url, created_at, updated_at
		FROM bkautocenter.services ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []*domain.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (r *CatalogRepository) UpdateService(ctx context.Context, s *domain.Service) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE bkautocenter.services SET
			name=$2, description=$3, price=$4, duration=$5, image_url=$6, updated_at=NOW()
		WHERE id=$1
	`, s.ID, s.Name, s.Description, s.Price, s.Duration, s.ImageURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *CatalogRepository) DeleteService(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bkautocenter.services WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// ---- produtos ----

func scanProduto(row pgx.Row) (*domain.Produto, error) {
	var p domain.Produto
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price,
		&p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *CatalogRepository) CreateProduto(ctx context.Context, p *domain.Produto) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO aguanaboca.produtos (id, name, description, category, price, image_url, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, p.ID, p.Name, p.Description, p.Category, p.Price, p.ImageURL, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *CatalogRepository) GetProduto(ctx context.Context, id string) (*domain.Produto, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, description, category, price, image_url, created_at, updated_at
		FROM aguanaboca.produtos WHERE id=$1
	`, id)
	return scanProduto(row)
}

// ListProdutos filters by category when one is given.
func (r *CatalogRepository) ListProdutos(ctx context.Context, category string) ([]*domain.Produto, error) {
	query := `
		SELECT id, name, description, category, price, image_url, created_at, updated_at
		FROM aguanaboca.produtos`
	args := []interface{}{}
	if category != "" {
		query += ` WHERE category=$1`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var produtos []*domain.Produto
	for rows.Next() {
		p, err := scanProduto(rows)
		if err != nil {
			return nil, err
		}
		produtos = append(produtos, p)
	}
	return produtos, rows.Err()
}

func (r *CatalogRepository) UpdateProduto(ctx context.Context, p *domain.Produto) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE aguanaboca.produtos SET
			name=$2, description=$3, category=$4, price=$5, image_url=$6, updated_at=NOW()
		WHERE id=$1
	`, p.ID, p.Name, p.Description, p.Category, p.Price, p.ImageURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *CatalogRepository) DeleteProduto(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM aguanaboca.produtos WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
