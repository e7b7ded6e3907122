package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/internal/repository"
	"github.com/jeannegris/equora/pkg/response"
)

// StatusHandler serves the gpac liveness checks and the API root.
type StatusHandler struct {
	misc *repository.MiscRepository
}

func NewStatusHandler(misc *repository.MiscRepository) *StatusHandler {
	return &StatusHandler{misc: misc}
}

func (h *StatusHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	response.Raw(w, http.StatusOK, map[string]string{"message": "Hello World"})
}

func (h *StatusHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientName string `json:"client_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ClientName == "" {
		response.Error(w, http.StatusBadRequest, "client_name is required")
		return
	}
	sc := domain.StatusCheck{
		ID:         uuid.NewString(),
		ClientName: req.ClientName,
		Timestamp:  time.Now(),
	}
	if err := h.misc.CreateStatusCheck(r.Context(), &sc); err != nil {
		writeError(w, err)
		return
	}
	response.Raw(w, http.StatusCreated, sc)
}

func (h *StatusHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	checks, err := h.misc.ListStatusChecks(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if checks == nil {
		checks = []*domain.StatusCheck{}
	}
	response.Raw(w, http.StatusOK, checks)
}
