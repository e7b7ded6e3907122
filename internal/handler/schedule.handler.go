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

// ScheduleHandler serves the gpac patient and appointment CRUD.
type ScheduleHandler struct {
	repo *repository.ScheduleRepository
}

func NewScheduleHandler(repo *repository.ScheduleRepository) *ScheduleHandler {
	return &ScheduleHandler{repo: repo}
}

func (h *ScheduleHandler) HandleCreatePatient(w http.ResponseWriter, r *http.Request) {
	var p domain.Patient
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.Name == "" {
		response.Error(w, http.StatusBadRequest, "patient name is required")
		return
	}
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()
	if err := h.repo.CreatePatient(r.Context(), &p); err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, p)
}

func (h *ScheduleHandler) HandleListPatients(w http.ResponseWriter, r *http.Request) {
	out, err := h.repo.ListPatients(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, out)
}

func (h *ScheduleHandler) HandleGetPatient(w http.ResponseWriter, r *http.Request) {
	p, err := h.repo.GetPatient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, p)
}

func (h *ScheduleHandler) HandleUpdatePatient(w http.ResponseWriter, r *http.Request) {
	var p domain.Patient
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p.ID = chi.URLParam(r, "id")
	if err := h.repo.UpdatePatient(r.Context(), &p); err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, p)
}

func (h *ScheduleHandler) HandleDeletePatient(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeletePatient(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "patient removed"})
}

func (h *ScheduleHandler) HandleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	var a domain.Appointment
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil || a.PatientID == "" || a.ColaboradorID == "" {
		response.Error(w, http.StatusBadRequest, "patient_id and colaborador_id are required")
		return
	}
	a.ID = uuid.NewString()
	if a.Status == "" {
		a.Status = "agendado"
	}
	a.CreatedAt = time.Now()
	if err := h.repo.CreateAppointment(r.Context(), &a); err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, a)
}

func (h *ScheduleHandler) HandleListAppointments(w http.ResponseWriter, r *http.Request) {
	out, err := h.repo.ListAppointments(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, out)
}

func (h *ScheduleHandler) HandleUpdateAppointment(w http.ResponseWriter, r *http.Request) {
	var a domain.Appointment
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	a.ID = chi.URLParam(r, "id")
	if err := h.repo.UpdateAppointment(r.Context(), &a); err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, a)
}

func (h *ScheduleHandler) HandleDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteAppointment(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "appointment removed"})
}
