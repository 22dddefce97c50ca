package handler

import (
	"net/http"
	"strings"

	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CustomerHandler serves the back-office customer views.
type CustomerHandler struct {
	service service.CustomerService
	logger  zerolog.Logger
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(service service.CustomerService, logger zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: service,
		logger:  logger.With().Str("handler", "customer").Logger(),
	}
}

func (h *CustomerHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/customers", h.List)
	r.Get("/customers/{id}", h.GetByID)
}

// List handles GET /api/admin/customers requests.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	page, err := h.service.List(r.Context(), search, queryInt(r, "limit", 0), queryInt(r, "offset", 0))
	if err != nil {
		writeServiceError(w, err, "Failed to fetch customers", h.logger)
		return
	}
	writeData(w, http.StatusOK, page)
}

// GetByID handles GET /api/admin/customers/{id} requests.
func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid customer ID", h.logger)
		return
	}

	detail, err := h.service.GetDetail(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch customer", h.logger)
		return
	}
	writeData(w, http.StatusOK, detail)
}
