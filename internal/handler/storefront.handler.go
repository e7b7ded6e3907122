package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jeannegris/equora/internal/usecase"
	"github.com/jeannegris/equora/pkg/response"
)

// StorefrontAuthHandler serves the JWT-authenticated admin endpoints of a
// storefront tenant. bkautocenter exposes register, login and me; aguanaboca
// mounts only login and me.
type StorefrontAuthHandler struct {
	uc *usecase.StorefrontAuthUsecase
}

func NewStorefrontAuthHandler(uc *usecase.StorefrontAuthUsecase) *StorefrontAuthHandler {
	return &StorefrontAuthHandler{uc: uc}
}

func (h *StorefrontAuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := h.uc.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Raw(w, http.StatusCreated, u)
}

func (h *StorefrontAuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		response.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}
	tok, err := h.uc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Raw(w, http.StatusOK, tok)
}

func (h *StorefrontAuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		response.Error(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	u, err := h.uc.Me(r.Context(), strings.TrimPrefix(auth, "Bearer "))
	if err != nil {
		writeError(w, err)
		return
	}
	response.Raw(w, http.StatusOK, u)
}
