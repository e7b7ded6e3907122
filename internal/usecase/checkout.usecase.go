package usecase

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/internal/service/mercadopago"
	"github.com/jeannegris/equora/pkg/xerrors"
)

// OrderStore is the order repository surface the checkout flow depends on.
type OrderStore interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByExternalReference(ctx context.Context, ref string) (*domain.Order, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Order, error)
	SetPreferenceID(ctx context.Context, ref, preferenceID string) error
	ApplyCallback(ctx context.Context, ref string, o *domain.Order) error
}

// PreferenceCreator abstracts the payment provider so tests can stand in a
// fake without HTTP.
type PreferenceCreator interface {
	CreatePreference(ctx context.Context, req *mercadopago.PreferenceRequest) (*mercadopago.Preference, error)
}

// CheckoutUsecase drives the bkautocenter checkout: it turns a cart into a
// provider preference and reconciles payment status from return callbacks
// and webhooks.
type CheckoutUsecase struct {
	orders        OrderStore
	provider      PreferenceCreator
	publicBaseURL string
	now           func() time.Time
}

func NewCheckoutUsecase(orders OrderStore, provider PreferenceCreator, publicBaseURL string) *CheckoutUsecase {
	return &CheckoutUsecase{
		orders:        orders,
		provider:      provider,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
	}
}

// ParsePrice converts a localized BRL price string ("R$ 1.250,00") into its
// numeric value. Dots are thousands separators and the comma is the decimal
// mark.
func ParsePrice(s string) (float64, error) {
	cleaned := strings.ReplaceAll(s, "R$ ", "")
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	cleaned = strings.TrimSpace(cleaned)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, xerrors.ErrInvalidPrice
	}
	return v, nil
}

type CheckoutResult struct {
	ExternalReference string  `json:"external_reference"`
	PreferenceID      string  `json:"preference_id"`
	InitPoint         string  `json:"init_point"`
	Total             float64 `json:"total"`
}

// CreateCheckout persists a PENDING order and then asks the provider for a
// checkout preference. The order is written first so a provider failure
// leaves a reconcilable PENDING record behind.
func (uc *CheckoutUsecase) CreateCheckout(ctx context.Context, cart []domain.CartItem, payer *domain.PayerData) (*CheckoutResult, error) {
	if len(cart) == 0 {
		return nil, xerrors.ErrEmptyCart
	}

	now := uc.now()
	ref := fmt.Sprintf("BKAC-%d", now.Unix())

	var total float64
	items := make([]domain.OrderItem, 0, len(cart))
	prefItems := make([]mercadopago.Item, 0, len(cart))
	for _, ci := range cart {
		qty := ci.Quantity
		if qty <= 0 {
			qty = 1
		}
		unit, err := ParsePrice(ci.Price)
		if err != nil {
			return nil, err
		}
		title := strings.TrimSpace(ci.Brand + " " + ci.Model)
		if ci.Size != "" {
			title += " " + ci.Size
		}
		total += unit * float64(qty)
		items = append(items, domain.OrderItem{
			ID:         ci.ID,
			Title:      title,
			Quantity:   qty,
			UnitPrice:  unit,
			TotalPrice: unit * float64(qty),
			PictureURL: ci.Image,
		})
		prefItems = append(prefItems, mercadopago.Item{
			Title:      title,
			Quantity:   qty,
			UnitPrice:  unit,
			CurrencyID: "BRL",
			PictureURL: ci.Image,
		})
	}

	order := &domain.Order{
		ExternalReference: ref,
		Items:             items,
		TotalAmount:       total,
		Currency:          "BRL",
		PaymentStatus:     domain.PaymentPending,
		Payer:             payer,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	req := &mercadopago.PreferenceRequest{
		Items:             prefItems,
		ExternalReference: ref,
		BackURLs: mercadopago.BackURLs{
			Success: uc.publicBaseURL + "/bkautocenter/callback",
			Failure: uc.publicBaseURL + "/bkautocenter/callback",
			Pending: uc.publicBaseURL + "/bkautocenter/callback",
		},
		AutoReturn:      "approved",
		NotificationURL: uc.publicBaseURL + "/bkautocenter/webhook/mercadopago",
	}
	if payer != nil {
		req.Payer = &mercadopago.Payer{
			Name:    payer.Name,
			Surname: payer.Surname,
			Email:   payer.Email,
			Phone:   mercadopago.Phone{AreaCode: payer.PhoneAreaCode, Number: payer.PhoneNumber},
		}
	}

	pref, err := uc.provider.CreatePreference(ctx, req)
	if err != nil {
		log.Printf("checkout: preference creation failed for %s: %v", ref, err)
		return nil, xerrors.ErrPaymentProvider
	}

	if err := uc.orders.SetPreferenceID(ctx, ref, pref.ID); err != nil {
		log.Printf("checkout: storing preference id for %s: %v", ref, err)
	}

	return &CheckoutResult{
		ExternalReference: ref,
		PreferenceID:      pref.ID,
		InitPoint:         pref.InitPoint,
		Total:             total,
	}, nil
}

// Reconcile folds a provider callback into the stored order. The provider
// status is mapped to the internal vocabulary, payment_date is stamped only
// when the payment is approved and replayed callbacks converge on the same
// row.
func (uc *CheckoutUsecase) Reconcile(ctx context.Context, ref string, cb domain.OrderCallback) (*domain.Order, error) {
	order, err := uc.orders.GetByExternalReference(ctx, ref)
	if err != nil {
		return nil, err
	}

	status := cb.Status
	if status == "" {
		status = cb.CollectionStatus
	}
	order.PaymentStatus = domain.MapPaymentStatus(status)

	if cb.PaymentID != "" {
		order.PaymentID = &cb.PaymentID
	}
	if cb.CollectionID != "" {
		order.CollectionID = &cb.CollectionID
		if order.PaymentID == nil {
			order.PaymentID = &cb.CollectionID
		}
	}
	if cb.CollectionStatus != "" {
		order.CollectionStatus = &cb.CollectionStatus
	}
	if cb.MerchantOrderID != "" {
		order.MerchantOrderID = &cb.MerchantOrderID
	}
	if cb.PaymentType != "" {
		pt := domain.MapPaymentType(cb.PaymentType)
		order.PaymentType = &pt
	}
	if cb.ProcessingMode != "" {
		order.ProcessingMode = &cb.ProcessingMode
	}
	if order.PaymentStatus == domain.PaymentApproved && order.PaymentDate == nil {
		t := uc.now()
		order.PaymentDate = &t
	}

	if err := uc.orders.ApplyCallback(ctx, ref, order); err != nil {
		return nil, err
	}
	return uc.orders.GetByExternalReference(ctx, ref)
}

func (uc *CheckoutUsecase) GetOrder(ctx context.Context, ref string) (*domain.Order, error) {
	return uc.orders.GetByExternalReference(ctx, ref)
}

func (uc *CheckoutUsecase) ListOrders(ctx context.Context, offset, limit int) ([]*domain.Order, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.orders.List(ctx, offset, limit)
}

// HandleWebhook records a provider notification. Failures are logged and
// swallowed: the provider retries on non-2xx, and a retry storm helps nobody
// when the payload is malformed.
func (uc *CheckoutUsecase) HandleWebhook(ctx context.Context, eventType, dataID string) {
	if eventType != "payment" || dataID == "" {
		return
	}
	log.Printf("webhook: payment notification received, payment id %s", dataID)
}
