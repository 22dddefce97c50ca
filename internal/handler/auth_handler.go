package handler

import (
	"net/http"
	"time"

	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// AuthHandler handles admin login and logout.
type AuthHandler struct {
	service      service.AuthService
	cookieSecure bool
	logger       zerolog.Logger
}

// NewAuthHandler creates a new auth handler. cookieSecure marks the session
// cookie Secure, which browsers require outside localhost.
func NewAuthHandler(service service.AuthService, cookieSecure bool, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service:      service,
		cookieSecure: cookieSecure,
		logger:       logger.With().Str("handler", "auth").Logger(),
	}
}

// RegisterRoutes registers login and logout, which sit beside the
// protected admin routes but outside the session check.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
}

// Login handles POST /api/admin/login requests. The token is returned in
// the body and set as an HttpOnly cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	session, err := h.service.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, "Login failed", h.logger)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeData(w, http.StatusOK, session)
}

// Logout handles POST /api/admin/logout requests.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeMessage(w, "Logged out successfully")
}
