package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/internal/service/mercadopago"
	"github.com/jeannegris/equora/pkg/xerrors"
)

// The real client must satisfy the provider seam the fixture fakes below.
var _ PreferenceCreator = (*mercadopago.Client)(nil)

type fakeOrders struct {
	byRef map[string]*domain.Order
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{byRef: map[string]*domain.Order{}}
}

func (f *fakeOrders) Create(_ context.Context, o *domain.Order) error {
	cp := *o
	f.byRef[o.ExternalReference] = &cp
	return nil
}

func (f *fakeOrders) GetByExternalReference(_ context.Context, ref string) (*domain.Order, error) {
	o, ok := f.byRef[ref]
	if !ok {
		return nil, xerrors.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) List(_ context.Context, _, _ int) ([]*domain.Order, error) {
	out := make([]*domain.Order, 0, len(f.byRef))
	for _, o := range f.byRef {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeOrders) SetPreferenceID(_ context.Context, ref, preferenceID string) error {
	o, ok := f.byRef[ref]
	if !ok {
		return xerrors.ErrOrderNotFound
	}
	o.PreferenceID = &preferenceID
	return nil
}

func (f *fakeOrders) ApplyCallback(_ context.Context, ref string, o *domain.Order) error {
	stored, ok := f.byRef[ref]
	if !ok {
		return xerrors.ErrOrderNotFound
	}
	stored.PaymentStatus = o.PaymentStatus
	if o.PaymentID != nil {
		stored.PaymentID = o.PaymentID
	}
	if o.CollectionID != nil {
		stored.CollectionID = o.CollectionID
	}
	if o.CollectionStatus != nil {
		stored.CollectionStatus = o.CollectionStatus
	}
	if o.MerchantOrderID != nil {
		stored.MerchantOrderID = o.MerchantOrderID
	}
	if o.PaymentType != nil {
		stored.PaymentType = o.PaymentType
	}
	if o.ProcessingMode != nil {
		stored.ProcessingMode = o.ProcessingMode
	}
	if o.PaymentDate != nil {
		stored.PaymentDate = o.PaymentDate
	}
	return nil
}

type fakeProvider struct {
	pref *mercadopago.Preference
	err  error
	last *mercadopago.PreferenceRequest
}

func (f *fakeProvider) CreatePreference(_ context.Context, req *mercadopago.PreferenceRequest) (*mercadopago.Preference, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.pref, nil
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"R$ 299,90", 299.90},
		{"R$ 1.250,00", 1250.00},
		{"R$ 12.345.678,99", 12345678.99},
		{"89,50", 89.50},
	}
	for _, c := range cases {
		got, err := ParsePrice(c.in)
		require.NoError(t, err, c.in)
		assert.InDelta(t, c.want, got, 0.001, c.in)
	}

	_, err := ParsePrice("free")
	assert.ErrorIs(t, err, xerrors.ErrInvalidPrice)
}

func newCheckoutFixture(provider *fakeProvider) (*CheckoutUsecase, *fakeOrders, time.Time) {
	orders := newFakeOrders()
	uc := NewCheckoutUsecase(orders, provider, "https://shop.example.com")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	uc.now = fixedClock(now)
	return uc, orders, now
}

func TestCreateCheckoutTotalsLocalizedPrices(t *testing.T) {
	provider := &fakeProvider{pref: &mercadopago.Preference{ID: "pref-1", InitPoint: "https://mp/init"}}
	uc, orders, now := newCheckoutFixture(provider)

	cart := []domain.CartItem{
		{ID: "t1", Brand: "Pirelli", Model: "P400", Price: "R$ 299,90", Quantity: 2},
		{ID: "t2", Brand: "Michelin", Model: "Primacy", Price: "R$ 1.250,00", Quantity: 1},
	}
	res, err := uc.CreateCheckout(context.Background(), cart, nil)
	require.NoError(t, err)

	assert.InDelta(t, 1849.80, res.Total, 0.001)
	assert.Equal(t, "pref-1", res.PreferenceID)
	assert.Equal(t, "https://mp/init", res.InitPoint)

	order := orders.byRef[res.ExternalReference]
	require.NotNil(t, order)
	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)
	assert.Equal(t, now, order.CreatedAt)
	assert.Equal(t, now, order.UpdatedAt)
	require.NotNil(t, order.PreferenceID)
	assert.Equal(t, "pref-1", *order.PreferenceID)

	require.NotNil(t, provider.last)
	assert.Equal(t, res.ExternalReference, provider.last.ExternalReference)
	assert.Len(t, provider.last.Items, 2)
	assert.Equal(t, "BRL", provider.last.Items[0].CurrencyID)
}

func TestCreateCheckoutEmptyCart(t *testing.T) {
	uc, _, _ := newCheckoutFixture(&fakeProvider{})
	_, err := uc.CreateCheckout(context.Background(), nil, nil)
	assert.ErrorIs(t, err, xerrors.ErrEmptyCart)
}

func TestCreateCheckoutProviderFailureLeavesPendingOrder(t *testing.T) {
	provider := &fakeProvider{err: errors.New("gateway down")}
	uc, orders, _ := newCheckoutFixture(provider)

	cart := []domain.CartItem{{ID: "t1", Brand: "Pirelli", Model: "P400", Price: "R$ 100,00", Quantity: 1}}
	_, err := uc.CreateCheckout(context.Background(), cart, nil)
	assert.ErrorIs(t, err, xerrors.ErrPaymentProvider)

	// The order must be written before the provider call so it can be
	// reconciled later.
	require.Len(t, orders.byRef, 1)
	for _, o := range orders.byRef {
		assert.Equal(t, domain.PaymentPending, o.PaymentStatus)
		assert.Nil(t, o.PreferenceID)
	}
}

func TestReconcileApprovedSetsPaymentDateOnce(t *testing.T) {
	provider := &fakeProvider{pref: &mercadopago.Preference{ID: "pref-1", InitPoint: "x"}}
	uc, orders, now := newCheckoutFixture(provider)

	cart := []domain.CartItem{{ID: "t1", Brand: "A", Model: "B", Price: "R$ 50,00", Quantity: 1}}
	res, err := uc.CreateCheckout(context.Background(), cart, nil)
	require.NoError(t, err)

	cb := domain.OrderCallback{
		Status:          "approved",
		PaymentID:       "pay-9",
		MerchantOrderID: "mo-3",
		PaymentType:     "credit_card",
	}
	order, err := uc.Reconcile(context.Background(), res.ExternalReference, cb)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentApproved, order.PaymentStatus)
	require.NotNil(t, order.PaymentDate)
	assert.Equal(t, now, *order.PaymentDate)

	// Replay days later: same status, payment_date untouched.
	uc.now = fixedClock(now.Add(48 * time.Hour))
	again, err := uc.Reconcile(context.Background(), res.ExternalReference, cb)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentApproved, again.PaymentStatus)
	require.NotNil(t, again.PaymentDate)
	assert.Equal(t, now, *again.PaymentDate)

	stored := orders.byRef[res.ExternalReference]
	require.NotNil(t, stored.PaymentType)
	assert.Equal(t, domain.PaymentTypeCreditCard, *stored.PaymentType)
}

func TestReconcileStatusCaseInsensitive(t *testing.T) {
	provider := &fakeProvider{pref: &mercadopago.Preference{ID: "p", InitPoint: "x"}}
	uc, _, _ := newCheckoutFixture(provider)

	cart := []domain.CartItem{{ID: "t1", Brand: "A", Model: "B", Price: "R$ 10,00", Quantity: 1}}
	res, err := uc.CreateCheckout(context.Background(), cart, nil)
	require.NoError(t, err)

	// The provider is not consistent about casing across redirect and
	// webhook payloads.
	cb := domain.OrderCallback{Status: "Approved", PaymentType: "CREDIT_CARD"}
	order, err := uc.Reconcile(context.Background(), res.ExternalReference, cb)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentApproved, order.PaymentStatus)
	require.NotNil(t, order.PaymentDate)
	require.NotNil(t, order.PaymentType)
	assert.Equal(t, domain.PaymentTypeCreditCard, *order.PaymentType)
}

func TestReconcileUnknownStatusFallsBackToPending(t *testing.T) {
	provider := &fakeProvider{pref: &mercadopago.Preference{ID: "p", InitPoint: "x"}}
	uc, _, _ := newCheckoutFixture(provider)

	cart := []domain.CartItem{{ID: "t1", Brand: "A", Model: "B", Price: "R$ 10,00", Quantity: 1}}
	res, err := uc.CreateCheckout(context.Background(), cart, nil)
	require.NoError(t, err)

	order, err := uc.Reconcile(context.Background(), res.ExternalReference, domain.OrderCallback{Status: "weird_status"})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)
	assert.Nil(t, order.PaymentDate)
}

func TestReconcileMissingOrder(t *testing.T) {
	uc, _, _ := newCheckoutFixture(&fakeProvider{})
	_, err := uc.Reconcile(context.Background(), "BKAC-0", domain.OrderCallback{Status: "approved"})
	assert.ErrorIs(t, err, xerrors.ErrOrderNotFound)
}

func TestReconcileRejectedNeverStampsPaymentDate(t *testing.T) {
	provider := &fakeProvider{pref: &mercadopago.Preference{ID: "p", InitPoint: "x"}}
	uc, _, _ := newCheckoutFixture(provider)

	cart := []domain.CartItem{{ID: "t1", Brand: "A", Model: "B", Price: "R$ 10,00", Quantity: 1}}
	res, err := uc.CreateCheckout(context.Background(), cart, nil)
	require.NoError(t, err)

	order, err := uc.Reconcile(context.Background(), res.ExternalReference, domain.OrderCallback{Status: "rejected"})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentRejected, order.PaymentStatus)
	assert.Nil(t, order.PaymentDate)
}
