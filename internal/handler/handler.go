package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/model"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxJSONBodyBytes = 1 << 20

// Options holds settings shared by every handler.
type Options struct {
	// ExposeInternalErrors puts the cause of 500 responses in the body. Development only.
	ExposeInternalErrors bool
	MaxUploadBytes       int64
}

// responder carries what handlers need to write responses.
type responder struct {
	opts   Options
	logger zerolog.Logger
}

type messageResponse struct {
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// The status is already sent; nothing useful left to tell the client.
		return
	}
}

// statusFor maps a domain error kind to its HTTP status.
func statusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindUnauthorized:
		return http.StatusUnauthorized
	case model.KindForbidden:
		return http.StatusForbidden
	case model.KindConflict, model.KindCartFrozen, model.KindInvalidState:
		return http.StatusConflict
	case model.KindPaymentDeclined:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// errorBody builds the response body and status for err.
func (h responder) errorBody(r *http.Request, err error) (int, model.ErrorResponse) {
	correlationID := chimw.GetReqID(r.Context())

	var de *model.DomainError
	if errors.As(err, &de) {
		return statusFor(de.Kind), model.ErrorResponse{
			Error:         de.Code,
			Message:       de.Message,
			CorrelationID: correlationID,
			Details:       de.Details,
		}
	}

	h.logger.Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", correlationID).
		Msg("request failed")

	message := "Internal server error"
	if h.opts.ExposeInternalErrors {
		message = err.Error()
	}
	return http.StatusInternalServerError, model.ErrorResponse{
		Error:         model.ErrCodeInternalError,
		Message:       message,
		CorrelationID: correlationID,
	}
}

// writeError writes err as the standard error body.
func (h responder) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := h.errorBody(r, err)
	if status < http.StatusInternalServerError {
		h.logger.Debug().Str("error", body.Error).Int("status", status).Str("path", r.URL.Path).Msg("request rejected")
	}
	writeJSON(w, status, body)
}

// badRequest writes a 400 with a fixed code, for input that never reaches a service.
func (h responder) badRequest(w http.ResponseWriter, r *http.Request, code, message string) {
	writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: chimw.GetReqID(r.Context()),
	})
}

// decodeJSON reads a JSON body into dst, writing a 400 on failure.
func (h responder) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			h.badRequest(w, r, model.ErrCodeInvalidJSON, "Request body is required")
			return false
		}
		h.badRequest(w, r, model.ErrCodeInvalidJSON, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

// pathID parses the named chi URL parameter as a UUID, writing a 400 on failure.
func (h responder) pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		h.badRequest(w, r, model.ErrCodeInvalidIdentifier, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// caller returns the authenticated identity, writing a 401 when there is none.
func (h responder) caller(w http.ResponseWriter, r *http.Request) (model.Identity, bool) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		h.writeError(w, r, model.ErrUnauthenticated)
		return model.Identity{}, false
	}
	return identity, true
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidQuery(name, "must be an integer")
	}
	return n, nil
}

// paging reads page and limit; zero values fall back to service defaults.
func paging(r *http.Request) (int, int, error) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// parseMultipart limits and parses a multipart body, writing a 400 on failure.
func (h responder) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, model.NewValidationError("Upload is too large"))
			return false
		}
		h.badRequest(w, r, model.ErrCodeInvalidJSON, "Invalid multipart form")
		return false
	}
	return true
}

// readUploads loads the files posted under field. Only images are accepted.
func readUploads(r *http.Request, field string) ([]model.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	uploads := make([]model.Upload, 0, len(headers))
	for _, fh := range headers {
		upload, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(upload.ContentType, "image/") {
			return nil, model.NewValidationError("Only image uploads are accepted",
				model.FieldError{Field: field, Message: fh.Filename + " is not an image"})
		}
		uploads = append(uploads, upload)
	}
	return uploads, nil
}

func readUpload(fh *multipart.FileHeader) (model.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return model.Upload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return model.Upload{}, err
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return model.Upload{Filename: fh.Filename, ContentType: contentType, Data: data}, nil
}

// formValue returns a pointer to the posted value, or nil when the field is absent.
func formValue(r *http.Request, name string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[name]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

// NotFound answers requests for unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, model.ErrorResponse{
		Error:         model.ErrCodeNotFound,
		Message:       "Route not found",
		CorrelationID: chimw.GetReqID(r.Context()),
	})
}

// MethodNotAllowed answers known routes called with an unsupported method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, model.ErrorResponse{
		Error:         model.ErrCodeMethodNotAllowed,
		Message:       "Method not allowed",
		CorrelationID: chimw.GetReqID(r.Context()),
	})
}
