package handler

import (
	"encoding/json"
	"net/http"

	"github.com/jeannegris/equora/internal/middleware"
	"github.com/jeannegris/equora/internal/usecase"
	"github.com/jeannegris/equora/pkg/response"
	"github.com/jeannegris/equora/pkg/xerrors"
)

// TwoFAHandler serves TOTP enrollment for the logged-in gpac staff member.
type TwoFAHandler struct {
	uc *usecase.StaffTwoFAUsecase
}

func NewTwoFAHandler(uc *usecase.StaffTwoFAUsecase) *TwoFAHandler {
	return &TwoFAHandler{uc: uc}
}

func (h *TwoFAHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	enabled, err := h.uc.Status(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]bool{"enabled": enabled})
}

// HandleSetup returns the enrollment. Calling it again after enrollment does
// not rotate the secret.
func (h *TwoFAHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	enr, err := h.uc.Setup(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, enr)
}

func (h *TwoFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		response.Error(w, http.StatusBadRequest, "code is required")
		return
	}
	ok, err := h.uc.Verify(r.Context(), middleware.UserIDFromContext(r.Context()), req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, xerrors.ErrInvalidTOTP)
		return
	}
	response.JSON(w, http.StatusOK, map[string]bool{"valid": true})
}

// HandleDisable disables 2FA for the caller, or for colaborador_id when the
// caller is an administrator.
func (h *TwoFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ColaboradorID string `json:"colaborador_id"`
		Reason        string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	caller := middleware.UserIDFromContext(r.Context())
	if err := h.uc.DisableFor(r.Context(), caller, req.ColaboradorID, req.Reason); err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "2FA disabled"})
}
