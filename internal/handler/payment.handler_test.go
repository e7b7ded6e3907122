package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/internal/service/mercadopago"
	"github.com/jeannegris/equora/internal/usecase"
	"github.com/jeannegris/equora/pkg/xerrors"
)

type stubOrders struct {
	orders map[string]*domain.Order
}

func (s *stubOrders) Create(_ context.Context, o *domain.Order) error {
	s.orders[o.ExternalReference] = o
	return nil
}

func (s *stubOrders) GetByExternalReference(_ context.Context, ref string) (*domain.Order, error) {
	if o, ok := s.orders[ref]; ok {
		return o, nil
	}
	return nil, xerrors.ErrOrderNotFound
}

func (s *stubOrders) List(_ context.Context, _, _ int) ([]*domain.Order, error) {
	return nil, nil
}

func (s *stubOrders) SetPreferenceID(_ context.Context, _, _ string) error { return nil }

func (s *stubOrders) ApplyCallback(_ context.Context, ref string, o *domain.Order) error {
	if _, ok := s.orders[ref]; !ok {
		return xerrors.ErrOrderNotFound
	}
	s.orders[ref] = o
	return nil
}

type stubProvider struct{}

func (stubProvider) CreatePreference(_ context.Context, _ *mercadopago.PreferenceRequest) (*mercadopago.Preference, error) {
	return &mercadopago.Preference{ID: "pref", InitPoint: "https://mp"}, nil
}

func newPaymentRouter() (*chi.Mux, *stubOrders) {
	orders := &stubOrders{orders: map[string]*domain.Order{}}
	uc := usecase.NewCheckoutUsecase(orders, stubProvider{}, "https://shop.example.com")
	h := NewPaymentHandler(uc)

	r := chi.NewRouter()
	r.Post("/webhook", h.HandleWebhook)
	r.Get("/callback", h.HandleCallback)
	r.Get("/orders/{ref}", h.HandleGetOrder)
	return r, orders
}

func TestWebhookAlwaysAcknowledges(t *testing.T) {
	r, _ := newPaymentRouter()

	bodies := []string{
		`{"type":"payment","data":{"id":"12345"}}`,
		`{"type":"payment","data":{"id":12345}}`,
		`{"type":"test"}`,
		`not json at all`,
		``,
	}
	for _, body := range bodies {
		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "body %q", body)
		assert.Contains(t, rec.Body.String(), "received")
	}
}

func TestCallbackRequiresExternalReference(t *testing.T) {
	r, _ := newPaymentRouter()

	req := httptest.NewRequest(http.MethodGet, "/callback?status=approved", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCallbackReconcilesOrder(t *testing.T) {
	r, orders := newPaymentRouter()
	orders.orders["BKAC-1"] = &domain.Order{
		ExternalReference: "BKAC-1",
		PaymentStatus:     domain.PaymentPending,
	}

	req := httptest.NewRequest(http.MethodGet,
		"/callback?external_reference=BKAC-1&status=approved&payment_id=77", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PaymentApproved, orders.orders["BKAC-1"].PaymentStatus)
	assert.NotNil(t, orders.orders["BKAC-1"].PaymentDate)
}

func TestCallbackStatusCaseInsensitive(t *testing.T) {
	r, orders := newPaymentRouter()
	orders.orders["BKAC-2"] = &domain.Order{
		ExternalReference: "BKAC-2",
		PaymentStatus:     domain.PaymentPending,
	}

	req := httptest.NewRequest(http.MethodGet,
		"/callback?external_reference=BKAC-2&status=Approved&payment_type=Credit_Card", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PaymentApproved, orders.orders["BKAC-2"].PaymentStatus)
	require.NotNil(t, orders.orders["BKAC-2"].PaymentType)
	assert.Equal(t, domain.PaymentTypeCreditCard, *orders.orders["BKAC-2"].PaymentType)
	assert.NotNil(t, orders.orders["BKAC-2"].PaymentDate)
}

type failingProvider struct{}

func (failingProvider) CreatePreference(_ context.Context, _ *mercadopago.PreferenceRequest) (*mercadopago.Preference, error) {
	return nil, assert.AnError
}

func TestCheckoutProviderFailureReturns500(t *testing.T) {
	orders := &stubOrders{orders: map[string]*domain.Order{}}
	uc := usecase.NewCheckoutUsecase(orders, failingProvider{}, "https://shop.example.com")
	h := NewPaymentHandler(uc)

	r := chi.NewRouter()
	r.Post("/checkout", h.HandleCheckout)

	body := `{"items":[{"id":"t1","brand":"Pirelli","model":"P7","price":"R$ 299,90","quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCallbackUnknownOrder(t *testing.T) {
	r, _ := newPaymentRouter()

	req := httptest.NewRequest(http.MethodGet, "/callback?external_reference=BKAC-404&status=approved", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
