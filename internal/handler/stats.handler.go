package handler

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/internal/repository"
	"github.com/jeannegris/equora/internal/usecase"
	"github.com/jeannegris/equora/pkg/response"
)

// StatsHandler serves the equora access stats and client records.
type StatsHandler struct {
	uc   *usecase.StatsUsecase
	misc *repository.MiscRepository
}

func NewStatsHandler(uc *usecase.StatsUsecase, misc *repository.MiscRepository) *StatsHandler {
	return &StatsHandler{uc: uc, misc: misc}
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the socket
// peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *StatsHandler) HandleRecordAccess(w http.ResponseWriter, r *http.Request) {
	stat, err := h.uc.RecordAccess(r.Context(), clientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, stat)
}

func parseTimeParam(q string) *time.Time {
	if q == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, q)
	if err != nil {
		return nil
	}
	return &t
}

func (h *StatsHandler) HandleListAccess(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	stats, err := h.uc.List(r.Context(), parseTimeParam(q.Get("start")), parseTimeParam(q.Get("end")), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if stats == nil {
		stats = []*domain.AccessStat{}
	}
	response.JSON(w, http.StatusOK, stats)
}

func (h *StatsHandler) HandleClearAccess(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Clear(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "stats cleared"})
}

func (h *StatsHandler) HandleCreateClient(w http.ResponseWriter, r *http.Request) {
	var c domain.Client
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Name == "" {
		response.Error(w, http.StatusBadRequest, "client name is required")
		return
	}
	c.ID = uuid.NewString()
	if err := h.misc.CreateClient(r.Context(), &c); err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, c)
}

func (h *StatsHandler) HandleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.misc.ListClients(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if clients == nil {
		clients = []*domain.Client{}
	}
	response.JSON(w, http.StatusOK, clients)
}
