package handler

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/media"
	"storefront/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeData wraps data in the success envelope.
func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, model.Response{Success: true, Data: data})
}

// writeMessage answers with a success envelope that only carries a message.
func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, model.Response{Success: true, Message: message})
}

// writeError writes an error envelope with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.Response{Success: false, Error: message})
}

// statusFor maps a domain error code to an HTTP status.
func statusFor(code string) int {
	switch code {
	case model.ErrCodeValidation, model.ErrCodeInsufficientStock:
		return http.StatusBadRequest
	case model.ErrCodeProductNotFound, model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError answers with the status of a domain error, or a generic
// 500 that hides infrastructure details.
func writeServiceError(w http.ResponseWriter, err error, fallback string, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status := statusFor(domainErr.Code)
		message := domainErr.Message
		if status == http.StatusInternalServerError {
			message = fallback
		}
		writeError(w, status, message, logger.With().Err(err).Logger())
		return
	}
	writeError(w, http.StatusInternalServerError, fallback, logger.With().Err(err).Logger())
}

// maxBodySize bounds JSON request bodies.
const maxBodySize = 1 << 20

// decodeJSON decodes the request body into v, reading at most maxBodySize
// bytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	return json.NewDecoder(r.Body).Decode(v)
}

// multipart overhead allowed on top of the image itself
const uploadSlack = 1 << 20

// formFile parses a multipart upload capped at the image size limit and
// returns the file in field. When ok is false the error response has been
// written. Otherwise the caller closes the file and removes the form.
func formFile(w http.ResponseWriter, r *http.Request, field string, logger zerolog.Logger) (multipart.File, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, media.MaxImageSize+uploadSlack)
	if err := r.ParseMultipartForm(media.MaxImageSize + uploadSlack); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, "File too large. Maximum size is 5MB.", logger)
			return nil, nil, false
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart form", logger)
		return nil, nil, false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		r.MultipartForm.RemoveAll()
		writeError(w, http.StatusBadRequest, "No file uploaded", logger)
		return nil, nil, false
	}
	return file, header, true
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// pathIDOrSlug reads the {id} URL parameter, which is either a numeric ID
// or a slug. ok is false for a numeric value that is not a valid ID.
func pathIDOrSlug(r *http.Request) (id int64, slug string, ok bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		return 0, "", false
	}
	if strings.Trim(raw, "0123456789") != "" {
		return 0, raw, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, "", false
	}
	return id, "", true
}

// listQuery reads the search, sort, order, page and limit parameters of a
// back-office table.
func listQuery(r *http.Request) model.ListQuery {
	q := r.URL.Query()
	return model.ListQuery{
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
		Desc:   strings.EqualFold(q.Get("order"), "desc"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 0),
	}
}

// queryInt reads an integer query parameter, returning def when absent or
// malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
