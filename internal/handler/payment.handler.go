package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/internal/usecase"
	"github.com/jeannegris/equora/pkg/response"
)

// PaymentHandler serves the bkautocenter checkout, the MercadoPago return
// callback and webhook, and the order admin listing.
type PaymentHandler struct {
	uc *usecase.CheckoutUsecase
}

func NewPaymentHandler(uc *usecase.CheckoutUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

type checkoutRequest struct {
	Items []domain.CartItem `json:"items"`
	Payer *domain.PayerData `json:"payer"`
}

func (h *PaymentHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.uc.CreateCheckout(r.Context(), req.Items, req.Payer)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Raw(w, http.StatusCreated, res)
}

// HandleCallback folds the provider redirect parameters into the order. The
// provider calls back with GET; the frontend may replay it as POST.
func (h *PaymentHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ref := q.Get("external_reference")
	if ref == "" {
		response.Error(w, http.StatusBadRequest, "external_reference is required")
		return
	}

	cb := domain.OrderCallback{
		Status:           q.Get("status"),
		PaymentID:        q.Get("payment_id"),
		CollectionID:     q.Get("collection_id"),
		CollectionStatus: q.Get("collection_status"),
		MerchantOrderID:  q.Get("merchant_order_id"),
		PaymentType:      q.Get("payment_type"),
		ProcessingMode:   q.Get("processing_mode"),
	}

	order, err := h.uc.Reconcile(r.Context(), ref, cb)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Raw(w, http.StatusOK, order)
}

func (h *PaymentHandler) HandleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.uc.GetOrder(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.Raw(w, http.StatusOK, order)
}

func (h *PaymentHandler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	orders, err := h.uc.ListOrders(r.Context(), offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	response.Raw(w, http.StatusOK, orders)
}

// The provider sends data.id as a string or a bare number depending on the
// notification topic.
type webhookRequest struct {
	Type string `json:"type"`
	Data struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// HandleWebhook acknowledges every provider notification with 200. A non-2xx
// answer would make the provider retry indefinitely, malformed payloads
// included.
func (h *PaymentHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("webhook: undecodable payload: %v", err)
	} else {
		h.uc.HandleWebhook(r.Context(), req.Type, req.Data.ID.String())
	}
	response.Raw(w, http.StatusOK, map[string]string{"status": "received"})
}
