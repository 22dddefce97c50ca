package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const dateLayout = "2006-01-02"

// OrderHandler handles checkout and order administration requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// RegisterRoutes registers the storefront order endpoints.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders", h.Create)
}

// RegisterAdminRoutes registers the back-office order endpoints.
func (h *OrderHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/orders", h.List)
	r.Get("/orders/{id}", h.GetByID)
	r.Patch("/orders/{id}", h.UpdateStatus)
	r.Get("/dashboard/stats", h.Stats)
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	receipt, err := h.service.PlaceOrder(r.Context(), &req)
	if err != nil {
		status, message := checkoutFailure(err)
		writeError(w, status, message, h.logger.With().Err(err).Logger())
		return
	}

	writeData(w, http.StatusOK, receipt)
}

// checkoutFailure maps a checkout error to its status: problems the
// customer can fix are 400, everything else is 500.
func checkoutFailure(err error) (int, string) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError, model.ErrPersistence.Message
	}

	switch domainErr.Code {
	case model.ErrCodeValidation, model.ErrCodeProductNotFound, model.ErrCodeInsufficientStock:
		return http.StatusBadRequest, domainErr.Message
	case model.ErrCodeDuplicateOrderNumber:
		return http.StatusInternalServerError, domainErr.Message
	default:
		return http.StatusInternalServerError, model.ErrPersistence.Message
	}
}

// List handles GET /api/admin/orders requests.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.OrderFilter{
		Status: strings.TrimSpace(q.Get("status")),
		Search: strings.TrimSpace(q.Get("search")),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 10),
	}

	if raw := q.Get("start_date"); raw != "" {
		start, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD", h.logger)
			return
		}
		filter.StartDate = &start
	}
	if raw := q.Get("end_date"); raw != "" {
		end, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD", h.logger)
			return
		}
		// Inclusive of the whole end day.
		end = end.Add(24*time.Hour - time.Nanosecond)
		filter.EndDate = &end
	}

	page, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch orders", h.logger)
		return
	}

	writeData(w, http.StatusOK, page)
}

// GetByID handles GET /api/admin/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid order ID", h.logger)
		return
	}

	order, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch order", h.logger)
		return
	}

	writeData(w, http.StatusOK, order)
}

// UpdateStatus handles PATCH /api/admin/orders/{id} requests.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid order ID", h.logger)
		return
	}

	var upd model.OrderStatusUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, &upd)
	if err != nil {
		writeServiceError(w, err, "Failed to update order", h.logger)
		return
	}

	writeData(w, http.StatusOK, order)
}

// Stats handles GET /api/admin/dashboard/stats requests.
func (h *OrderHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to fetch dashboard stats", h.logger)
		return
	}

	writeData(w, http.StatusOK, stats)
}
