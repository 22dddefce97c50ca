package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CategoryHandler handles category requests.
type CategoryHandler struct {
	service service.CategoryService
	logger  zerolog.Logger
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(service service.CategoryService, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		logger:  logger.With().Str("handler", "category").Logger(),
	}
}

func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/categories", h.List)
	r.Get("/categories/paginated", h.ListPage)
	r.Get("/categories/{id}", h.GetByID)
}

func (h *CategoryHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/categories", h.Create)
	r.Put("/categories/{id}", h.Update)
	r.Delete("/categories/{id}", h.Delete)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to fetch categories", h.logger)
		return
	}
	writeData(w, http.StatusOK, categories)
}

// ListPage handles GET /api/categories/paginated requests.
func (h *CategoryHandler) ListPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListPage(r.Context(), listQuery(r))
	if err != nil {
		writeServiceError(w, err, "Failed to fetch categories", h.logger)
		return
	}
	writeData(w, http.StatusOK, page)
}

// GetByID looks {id} up as an ID when numeric and as a slug otherwise.
func (h *CategoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, slug, ok := pathIDOrSlug(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid category ID", h.logger)
		return
	}

	var (
		category *model.Category
		err      error
	)
	if slug != "" {
		category, err = h.service.GetBySlug(r.Context(), slug)
	} else {
		category, err = h.service.GetByID(r.Context(), id)
	}
	if err != nil {
		writeServiceError(w, err, "Failed to fetch category", h.logger)
		return
	}
	writeData(w, http.StatusOK, category)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	category, err := h.service.Create(r.Context(), &in)
	if err != nil {
		writeServiceError(w, err, "Failed to create category", h.logger)
		return
	}
	writeData(w, http.StatusCreated, category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid category ID", h.logger)
		return
	}

	var in model.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	category, err := h.service.Update(r.Context(), id, &in)
	if err != nil {
		writeServiceError(w, err, "Failed to update category", h.logger)
		return
	}
	writeData(w, http.StatusOK, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid category ID", h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "Failed to delete category", h.logger)
		return
	}
	writeMessage(w, "Category deleted successfully")
}
