package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/internal/usecase"
	"github.com/jeannegris/equora/pkg/response"
)

const staffSessionCookieName = "gpac_session"

// StaffHandler serves the gpac staff surface: login with optional TOTP step,
// colaborador CRUD and password reset.
type StaffHandler struct {
	uc  *usecase.StaffUsecase
	ttl time.Duration
}

func NewStaffHandler(uc *usecase.StaffUsecase, sessionTTL time.Duration) *StaffHandler {
	return &StaffHandler{uc: uc, ttl: sessionTTL}
}

func staffSessionID(r *http.Request) string {
	if c, err := r.Cookie(staffSessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

func (h *StaffHandler) setCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     staffSessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(h.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *StaffHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		response.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}

	res, err := h.uc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	if res.Requires2FA {
		response.JSON(w, http.StatusOK, map[string]interface{}{
			"requires_2fa": true,
			"temp_token":   res.TempToken,
		})
		return
	}

	h.setCookie(w, res.Session.ID)
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"requires_2fa": false,
		"colaborador":  res.Colaborador,
	})
}

func (h *StaffHandler) HandleVerify2FA(w http.ResponseWriter, r *http.Request) {
	var req verify2FARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TempToken == "" || req.Code == "" {
		response.Error(w, http.StatusBadRequest, "temp_token and code are required")
		return
	}

	res, err := h.uc.Verify2FA(r.Context(), req.TempToken, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setCookie(w, res.Session.ID)
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"colaborador": res.Colaborador,
	})
}

func (h *StaffHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Logout(r.Context(), staffSessionID(r)); err != nil {
		writeError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     staffSessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	response.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

type staffCreateRequest struct {
	domain.Colaborador
	Password string `json:"password"`
}

func (h *StaffHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req staffCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := h.uc.Create(r.Context(), &req.Colaborador, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, c)
}

func (h *StaffHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	out, err := h.uc.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, out)
}

func (h *StaffHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.uc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, c)
}

func (h *StaffHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req staffCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Colaborador.ID = chi.URLParam(r, "id")
	c, err := h.uc.Update(r.Context(), &req.Colaborador, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, c)
}

func (h *StaffHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "colaborador removed"})
}

type resetPasswordRequest struct {
	Username    string `json:"username"`
	NewPassword string `json:"new_password"`
}

func (h *StaffHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		response.Error(w, http.StatusBadRequest, "username and new_password are required")
		return
	}
	if err := h.uc.ResetPassword(r.Context(), req.Username, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "password reset"})
}
