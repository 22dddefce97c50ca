package handler

import (
	"net/http"
	"strings"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// RegisterRoutes registers the storefront product endpoints.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.List)
	r.Get("/products/paginated", h.ListPage)
	r.Get("/products/{id}", h.GetByID)
}

// RegisterAdminRoutes registers the back-office product endpoints.
func (h *ProductHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/products", h.Create)
	r.Post("/upload", h.UploadImage)
	r.Get("/products/stock", h.LowStock)
	r.Get("/products/stock/paginated", h.StockPage)
	r.Put("/products/stock", h.AdjustStock)
	r.Put("/products/{id}", h.Update)
	r.Delete("/products/{id}", h.Delete)
}

func productFilter(r *http.Request) model.ProductFilter {
	q := r.URL.Query()
	return model.ProductFilter{
		CategorySlug: strings.TrimSpace(q.Get("category")),
		Search:       strings.TrimSpace(q.Get("search")),
	}
}

// List handles GET /api/products requests with limit/offset pagination.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := productFilter(r)
	filter.Limit = queryInt(r, "limit", 0)
	filter.Offset = queryInt(r, "offset", 0)

	if filter.Limit < 0 {
		writeError(w, http.StatusBadRequest, "limit must be non-negative", h.logger)
		return
	}
	if filter.Offset < 0 {
		writeError(w, http.StatusBadRequest, "offset must be non-negative", h.logger)
		return
	}

	products, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch products", h.logger)
		return
	}

	writeData(w, http.StatusOK, products)
}

// ListPage handles GET /api/products/paginated requests.
func (h *ProductHandler) ListPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListPage(r.Context(), productFilter(r), queryInt(r, "page", 1), queryInt(r, "limit", 0))
	if err != nil {
		writeServiceError(w, err, "Failed to fetch products", h.logger)
		return
	}

	writeData(w, http.StatusOK, page)
}

// GetByID handles GET /api/products/{id} requests. A non-numeric {id} is
// looked up as a slug.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, slug, ok := pathIDOrSlug(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid product ID", h.logger)
		return
	}

	var (
		product *model.Product
		err     error
	)
	if slug != "" {
		product, err = h.service.GetBySlug(r.Context(), slug)
	} else {
		product, err = h.service.GetByID(r.Context(), id)
	}
	if err != nil {
		writeServiceError(w, err, "Failed to fetch product", h.logger)
		return
	}

	writeData(w, http.StatusOK, product)
}

// Create handles POST /api/admin/products requests.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	product, err := h.service.Create(r.Context(), &in)
	if err != nil {
		writeServiceError(w, err, "Failed to create product", h.logger)
		return
	}

	writeData(w, http.StatusCreated, product)
}

// Update handles PUT /api/admin/products/{id} requests.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid product ID", h.logger)
		return
	}

	var in model.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	product, err := h.service.Update(r.Context(), id, &in)
	if err != nil {
		writeServiceError(w, err, "Failed to update product", h.logger)
		return
	}

	writeData(w, http.StatusOK, product)
}

// Delete handles DELETE /api/admin/products/{id} requests.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid product ID", h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "Failed to delete product", h.logger)
		return
	}

	writeMessage(w, "Product deleted successfully")
}

// LowStock handles GET /api/admin/products/stock requests.
func (h *ProductHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListLowStock(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to fetch low stock products", h.logger)
		return
	}

	writeData(w, http.StatusOK, products)
}

// AdjustStock handles PUT /api/admin/products/stock requests.
func (h *ProductHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var adj model.StockAdjustment
	if err := decodeJSON(w, r, &adj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	product, err := h.service.AdjustStock(r.Context(), &adj)
	if err != nil {
		writeServiceError(w, err, "Failed to update stock", h.logger)
		return
	}

	writeData(w, http.StatusOK, product)
}

// StockPage handles GET /api/admin/products/stock/paginated requests.
func (h *ProductHandler) StockPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListStock(r.Context(), listQuery(r))
	if err != nil {
		writeServiceError(w, err, "Failed to fetch products", h.logger)
		return
	}

	writeData(w, http.StatusOK, page)
}

// UploadImage handles multipart POST /api/admin/upload requests with the
// image in the "file" field.
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	file, header, ok := formFile(w, r, "file", h.logger)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()
	defer file.Close()

	upload, err := h.service.UploadImage(r.Context(), header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		writeServiceError(w, err, "Failed to upload file", h.logger)
		return
	}

	writeData(w, http.StatusOK, upload)
}
