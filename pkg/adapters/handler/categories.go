package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hkunkun/hkun-links/pkg/ports"
)

type CategoryHandler struct {
	service ports.CategoryService
	logger  *zap.Logger
}

func NewCategoryHandler(service ports.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{service: service, logger: logger}
}

// CategoryRequest payload
type CategoryRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	Icon string `json:"icon"`
}

// OrderRequest carries ids in their new display order
type OrderRequest struct {
	OrderedIDs []string `json:"ordered_ids"`
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := h.service.CreateCategory(r.Context(), req.Name, req.Slug, req.Icon)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	withLinks := r.URL.Query().Get("links") == "true"
	categories, err := h.service.ListCategories(r.Context(), withLinks)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": categories})
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	category, err := h.service.GetCategory(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := h.service.UpdateCategory(r.Context(), r.PathValue("id"), req.Name, req.Slug, req.Icon)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// Delete removes the category and reports the sink that received its links.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sink, err := h.service.DeleteCategory(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"moved_to": sink})
}

func (h *CategoryHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ReorderCategories(r.Context(), req.OrderedIDs); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
