package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// SettingsHandler handles store settings and logo requests.
type SettingsHandler struct {
	service service.SettingsService
	logger  zerolog.Logger
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(service service.SettingsService, logger zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		logger:  logger.With().Str("handler", "settings").Logger(),
	}
}

func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/store/settings", h.Public)
}

func (h *SettingsHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/settings", h.Get)
	r.Put("/settings", h.Update)
	r.Post("/settings/logo", h.UploadLogo)
	r.Delete("/settings/logo", h.RemoveLogo)
}

// Public handles GET /api/store/settings requests. It always succeeds.
func (h *SettingsHandler) Public(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.service.Public(r.Context()))
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Get(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to fetch settings", h.logger)
		return
	}
	writeData(w, http.StatusOK, settings)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var upd model.StoreSettingsUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	settings, err := h.service.Update(r.Context(), &upd)
	if err != nil {
		writeServiceError(w, err, "Failed to update settings", h.logger)
		return
	}
	writeData(w, http.StatusOK, settings)
}

// UploadLogo handles multipart POST /api/admin/settings/logo requests with
// the image in the "logo" field.
func (h *SettingsHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	file, header, ok := formFile(w, r, "logo", h.logger)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()
	defer file.Close()

	upload, err := h.service.UploadLogo(r.Context(), header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		writeServiceError(w, err, "Failed to upload logo", h.logger)
		return
	}
	writeData(w, http.StatusOK, upload)
}

func (h *SettingsHandler) RemoveLogo(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.RemoveLogo(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to remove logo", h.logger)
		return
	}
	writeData(w, http.StatusOK, settings)
}
