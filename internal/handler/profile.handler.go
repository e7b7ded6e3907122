package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/internal/repository"
	"github.com/jeannegris/equora/pkg/response"
)

// ProfileHandler serves the gpac permission profiles.
type ProfileHandler struct {
	repo *repository.MiscRepository
}

func NewProfileHandler(repo *repository.MiscRepository) *ProfileHandler {
	return &ProfileHandler{repo: repo}
}

func (h *ProfileHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var p domain.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.Name == "" {
		response.Error(w, http.StatusBadRequest, "profile name is required")
		return
	}
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()
	if err := h.repo.CreateProfile(r.Context(), &p); err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, p)
}

func (h *ProfileHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	out, err := h.repo.ListProfiles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, out)
}

func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var p domain.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p.ID = chi.URLParam(r, "id")
	if err := h.repo.UpdateProfile(r.Context(), &p); err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteProfile(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "profile removed"})
}
