package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/pkg/xerrors"
)

// OrderRepository persists bkautocenter orders. Items and payer are JSONB
// documents; the external reference is the primary key and the only
// correlation with the payment provider.
type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `
	external_reference, payment_id, collection_id, merchant_order_id,
	preference_id, payment_status, collection_status, payment_type,
	processing_mode, items, total_amount, currency, payer,
	created_at, updated_at, payment_date`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var itemsRaw []byte
	var payerRaw []byte
	err := row.Scan(
		&o.ExternalReference,
		&o.PaymentID,
		&o.CollectionID,
		&o.MerchantOrderID,
		&o.PreferenceID,
		&o.PaymentStatus,
		&o.CollectionStatus,
		&o.PaymentType,
		&o.ProcessingMode,
		&itemsRaw,
		&o.TotalAmount,
		&o.Currency,
		&payerRaw,
		&o.CreatedAt,
		&o.UpdatedAt,
		&o.PaymentDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsRaw, &o.Items); err != nil {
		return nil, err
	}
	if payerRaw != nil {
		if err := json.Unmarshal(payerRaw, &o.Payer); err != nil {
			return nil, err
		}
	}
	return &o, nil
}

func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	itemsRaw, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	var payerRaw []byte
	if o.Payer != nil {
		payerRaw, err = json.Marshal(o.Payer)
		if err != nil {
			return err
		}
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO bkautocenter.orders (
			external_reference, preference_id, payment_status, items,
			total_amount, currency, payer, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, o.ExternalReference, o.PreferenceID, o.PaymentStatus, itemsRaw,
		o.TotalAmount, o.Currency, payerRaw, o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *OrderRepository) GetByExternalReference(ctx context.Context, ref string) (*domain.Order, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM bkautocenter.orders WHERE external_reference=$1`, ref)
	return scanOrder(row)
}

func (r *OrderRepository) List(ctx context.Context, skip, limit int) ([]*domain.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+` FROM bkautocenter.orders
		ORDER BY created_at DESC OFFSET $1 LIMIT $2
	`, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// SetPreferenceID records the provider preference once the payment link is
// obtained. Best-effort after the order already exists.
func (r *OrderRepository) SetPreferenceID(ctx context.Context, ref, preferenceID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE bkautocenter.orders SET preference_id=$2, updated_at=NOW() WHERE external_reference=$1`,
		ref, preferenceID)
	return err
}

// ApplyCallback updates reconciliation fields in place. Replays with the same
// status converge on the same row state (timestamps aside). Empty callback
// fields never overwrite previously stored values.
func (r *OrderRepository) ApplyCallback(ctx context.Context, ref string, o *domain.Order) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE bkautocenter.orders SET
			payment_id       = COALESCE($2, payment_id),
			collection_id    = COALESCE($3, collection_id),
			merchant_order_id= COALESCE($4, merchant_order_id),
			payment_status   = $5,
			collection_status= COALESCE($6, collection_status),
			payment_type     = COALESCE($7, payment_type),
			processing_mode  = COALESCE($8, processing_mode),
			payment_date     = COALESCE($9, payment_date),
			updated_at       = NOW()
		WHERE external_reference=$1
	`, ref, o.PaymentID, o.CollectionID, o.MerchantOrderID, o.PaymentStatus,
		o.CollectionStatus, o.PaymentType, o.ProcessingMode, o.PaymentDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrOrderNotFound
	}
	return nil
}
