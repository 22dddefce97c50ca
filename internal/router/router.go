package router

import (
	"net/http"
	"strings"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Product  *handler.ProductHandler
	Category *handler.CategoryHandler
	Order    *handler.OrderHandler
	Customer *handler.CustomerHandler
	Promo    *handler.PromoHandler
	Settings *handler.SettingsHandler
	Auth     *handler.AuthHandler
}

// Options configures the parts of the router that depend on deployment.
type Options struct {
	AllowedOrigins []string

	// MediaDir and MediaBaseURL expose locally stored uploads. Leave MediaDir
	// empty when media lives on S3.
	MediaDir     string
	MediaBaseURL string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, authenticator middleware.Authenticator, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> RequestID -> Logging -> CORS
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		h.Product.RegisterRoutes(r)
		h.Category.RegisterRoutes(r)
		h.Order.RegisterRoutes(r)
		h.Promo.RegisterRoutes(r)
		h.Settings.RegisterRoutes(r)

		r.Route("/admin", func(r chi.Router) {
			h.Auth.RegisterRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminAuth(authenticator, logger))

				h.Product.RegisterAdminRoutes(r)
				h.Category.RegisterAdminRoutes(r)
				h.Order.RegisterAdminRoutes(r)
				h.Customer.RegisterAdminRoutes(r)
				h.Promo.RegisterAdminRoutes(r)
				h.Settings.RegisterAdminRoutes(r)
			})
		})
	})

	if opts.MediaDir != "" && strings.HasPrefix(opts.MediaBaseURL, "/") {
		prefix := strings.TrimRight(opts.MediaBaseURL, "/")
		fs := http.StripPrefix(prefix, http.FileServer(http.Dir(opts.MediaDir)))
		r.Get(prefix+"/*", fs.ServeHTTP)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"error":"Not found"}`))
	})

	return r
}
