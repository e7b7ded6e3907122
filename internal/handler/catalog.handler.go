package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/internal/repository"
	"github.com/jeannegris/equora/pkg/response"
)

const maxUploadSize = 8 << 20

// CatalogHandler serves the bkautocenter tire and service catalogs and the
// aguanaboca product catalog, plus image uploads for all three.
type CatalogHandler struct {
	repo      *repository.CatalogRepository
	uploadDir string
}

func NewCatalogHandler(repo *repository.CatalogRepository, uploadDir string) *CatalogHandler {
	return &CatalogHandler{repo: repo, uploadDir: uploadDir}
}

// ---- tires ----

func (h *CatalogHandler) HandleCreateTire(w http.ResponseWriter, r *http.Request) {
	var t domain.Tire
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil || t.Brand == "" || t.Model == "" {
		response.Error(w, http.StatusBadRequest, "brand and model are required")
		return
	}
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	if err := h.repo.CreateTire(r.Context(), &t); err != nil {
		writeError(w, err)
		return
	}
	response.Raw(w, http.StatusCreated, t)
}

func (h *CatalogHandler) HandleListTires(w http.ResponseWriter, r *http.Request) {
	out, err := h.repo.ListTires(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if out == nil {
		out = []*domain.Tire{}
	}
	response.Raw(w, http.StatusOK, out)
}

func (h *CatalogHandler) HandleUpdateTire(w http.ResponseWriter, r *http.Request) {
	var t domain.Tire
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t.ID = chi.URLParam(r, "id")
	t.UpdatedAt = time.Now()

	if prev, err := h.repo.GetTire(r.Context(), t.ID); err == nil &&
		prev.ImageURL != "" && prev.ImageURL != t.ImageURL {
		h.removeUpload(prev.ImageURL)
	}
	if err := h.repo.UpdateTire(r.Context(), &t); err != nil {
		writeError(w, err)
		return
	}
	response.Raw(w, http.StatusOK, t)
}

func (h *CatalogHandler) HandleDeleteTire(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if prev, err := h.repo.GetTire(r.Context(), id); err == nil && prev.ImageURL != "" {
		h.removeUpload(prev.ImageURL)
	}
	if err := h.repo.DeleteTire(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	response.Raw(w, http.StatusOK, map[string]string{"message": "tire removed"})
}

// ---- services ----

func (h *CatalogHandler) HandleCreateService(w http.ResponseWriter, r *http.Request) {
	var s domain.Service
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil || s.Name == "" {
		response.Error(w, http.StatusBadRequest, "service name is required")
		return
	}
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	if err := h.repo.CreateService(r.Context(), &s); err != nil {
		writeError(w, err)
		return
	}
	response.Raw(w, http.StatusCreated, s)
}

func (h *CatalogHandler) HandleListServices(w http.ResponseWriter, r *http.Request) {
	out, err := h.repo.ListServices(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if out == nil {
		out = []*domain.Service{}
	}
	response.Raw(w, http.StatusOK, out)
}

func (h *CatalogHandler) HandleUpdateService(w http.ResponseWriter, r *http.Request) {
	var s domain.Service
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.ID = chi.URLParam(r, "id")
	s.UpdatedAt = time.Now()

	if prev, err := h.repo.GetService(r.Context(), s.ID); err == nil &&
		prev.ImageURL != "" && prev.ImageURL != s.ImageURL {
		h.removeUpload(prev.ImageURL)
	}
	if err := h.repo.UpdateService(r.Context(), &s); err != nil {
		writeError(w, err)
		return
	}
	response.Raw(w, http.StatusOK, s)
}

func (h *CatalogHandler) HandleDeleteService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if prev, err := h.repo.GetService(r.Context(), id); err == nil && prev.ImageURL != "" {
		h.removeUpload(prev.ImageURL)
	}
	if err := h.repo.DeleteService(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	response.Raw(w, http.StatusOK, map[string]string{"message": "service removed"})
}

// ---- produtos ----

func (h *CatalogHandler) HandleCreateProduto(w http.ResponseWriter, r *http.Request) {
	var p domain.Produto
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.Name == "" {
		response.Error(w, http.StatusBadRequest, "product name is required")
		return
	}
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	if err := h.repo.CreateProduto(r.Context(), &p); err != nil {
		writeError(w, err)
		return
	}
	response.Raw(w, http.StatusCreated, p)
}

func (h *CatalogHandler) HandleListProdutos(w http.ResponseWriter, r *http.Request) {
	out, err := h.repo.ListProdutos(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, err)
		return
	}
	if out == nil {
		out = []*domain.Produto{}
	}
	response.Raw(w, http.StatusOK, out)
}

func (h *CatalogHandler) HandleUpdateProduto(w http.ResponseWriter, r *http.Request) {
	var p domain.Produto
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p.ID = chi.URLParam(r, "id")
	p.UpdatedAt = time.Now()

	if prev, err := h.repo.GetProduto(r.Context(), p.ID); err == nil &&
		prev.ImageURL != "" && prev.ImageURL != p.ImageURL {
		h.removeUpload(prev.ImageURL)
	}
	if err := h.repo.UpdateProduto(r.Context(), &p); err != nil {
		writeError(w, err)
		return
	}
	response.Raw(w, http.StatusOK, p)
}

func (h *CatalogHandler) HandleDeleteProduto(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if prev, err := h.repo.GetProduto(r.Context(), id); err == nil && prev.ImageURL != "" {
		h.removeUpload(prev.ImageURL)
	}
	if err := h.repo.DeleteProduto(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	response.Raw(w, http.StatusOK, map[string]string{"message": "product removed"})
}

// ---- uploads ----

// HandleUpload stores a multipart image under a random name and returns its
// public path.
func (h *CatalogHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp", ".gif":
	default:
		response.Error(w, http.StatusBadRequest, "unsupported image type")
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		writeError(w, err)
		return
	}
	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		writeError(w, err)
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, io.LimitReader(file, maxUploadSize)); err != nil {
		writeError(w, err)
		return
	}

	response.Raw(w, http.StatusCreated, map[string]string{"image_url": "/uploads/" + name})
}

// removeUpload deletes a previously uploaded file. Only paths under /uploads/
// are touched; external URLs are left alone.
func (h *CatalogHandler) removeUpload(imageURL string) {
	name, ok := strings.CutPrefix(imageURL, "/uploads/")
	if !ok || name == "" || strings.Contains(name, "/") {
		return
	}
	if err := os.Remove(filepath.Join(h.uploadDir, name)); err != nil && !os.IsNotExist(err) {
		log.Printf("upload cleanup: %v", err)
	}
}
