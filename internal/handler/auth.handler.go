package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jeannegris/equora/internal/usecase"
	"github.com/jeannegris/equora/pkg/response"
)

const sessionCookieName = "equora_session"

// AuthHandler serves the equora admin-panel login flow: password step, TOTP
// step, session introspection and logout.
type AuthHandler struct {
	uc *usecase.AuthUsecase
}

func NewAuthHandler(uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type verify2FARequest struct {
	TempToken string `json:"temp_token"`
	Code      string `json:"code"`
}

func setSessionCookie(w http.ResponseWriter, sessionID string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionIDFromRequest(r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// HandleLoginPassword runs the password step. Accounts with 2FA enabled get
// a temp token; the provisioning URI rides along until the user completes
// the first verification.
func (h *AuthHandler) HandleLoginPassword(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		response.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}

	res, err := h.uc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	if res.Requires2FA {
		payload := map[string]interface{}{
			"requires_2fa": true,
			"temp_token":   res.TempToken,
		}
		if res.ProvisioningURI != nil {
			payload["provisioning_uri"] = *res.ProvisioningURI
		} else {
			payload["provisioning_uri"] = nil
		}
		response.JSON(w, http.StatusOK, payload)
		return
	}

	setSessionCookie(w, res.Session.ID, h.uc.SessionTTL())
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"requires_2fa": false,
		"user":         res.User.Out(),
	})
}

// HandleLogin2FA exchanges the temp token plus a TOTP code for a session.
func (h *AuthHandler) HandleLogin2FA(w http.ResponseWriter, r *http.Request) {
	var req verify2FARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TempToken == "" || req.Code == "" {
		response.Error(w, http.StatusBadRequest, "temp_token and code are required")
		return
	}

	session, user, err := h.uc.Verify2FA(r.Context(), req.TempToken, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}

	setSessionCookie(w, session.ID, h.uc.SessionTTL())
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"user": user.Out(),
	})
}

// HandleMe returns the account behind the session cookie.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.uc.CurrentUser(r.Context(), sessionIDFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, user.Out())
}

// HandleLogout deletes the session and clears the cookie. Logging out twice
// is fine.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Logout(r.Context(), sessionIDFromRequest(r)); err != nil {
		writeError(w, err)
		return
	}
	clearSessionCookie(w)
	response.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
