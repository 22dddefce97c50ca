package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// PromoHandler handles promo code requests.
type PromoHandler struct {
	service service.PromoService
	logger  zerolog.Logger
}

// NewPromoHandler creates a new promo code handler.
func NewPromoHandler(service service.PromoService, logger zerolog.Logger) *PromoHandler {
	return &PromoHandler{
		service: service,
		logger:  logger.With().Str("handler", "promo").Logger(),
	}
}

func (h *PromoHandler) RegisterRoutes(r chi.Router) {
	r.Post("/promo/validate", h.Validate)
}

func (h *PromoHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/promo-codes", h.List)
	r.Post("/promo-codes", h.Create)
	r.Patch("/promo-codes/{id}", h.SetActive)
}

// Validate handles POST /api/promo/validate requests. A code that does not
// apply is still a 200 with is_valid=false.
func (h *PromoHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req model.PromoValidationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	res, err := h.service.Validate(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, "Failed to validate promo code", h.logger)
		return
	}
	writeData(w, http.StatusOK, res)
}

func (h *PromoHandler) List(w http.ResponseWriter, r *http.Request) {
	promos, err := h.service.ListActive(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to fetch promo codes", h.logger)
		return
	}
	writeData(w, http.StatusOK, promos)
}

func (h *PromoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.PromoCodeInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	p, err := h.service.Create(r.Context(), &in)
	if err != nil {
		writeServiceError(w, err, "Failed to create promo code", h.logger)
		return
	}
	writeData(w, http.StatusCreated, p)
}

type promoStatusRequest struct {
	IsActive *bool `json:"is_active"`
}

// SetActive handles PATCH /api/admin/promo-codes/{id} requests.
func (h *PromoHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid promo code ID", h.logger)
		return
	}

	var req promoStatusRequest
	if err := decodeJSON(w, r, &req); err != nil || req.IsActive == nil {
		writeError(w, http.StatusBadRequest, "is_active is required", h.logger)
		return
	}

	if err := h.service.SetActive(r.Context(), id, *req.IsActive); err != nil {
		writeServiceError(w, err, "Failed to update promo code", h.logger)
		return
	}
	writeMessage(w, "Promo code updated successfully")
}
