package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// CategoryHandler handles category and sub-category requests.
type CategoryHandler struct {
	responder
	service service.CategoryService
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(svc service.CategoryService, opts Options, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		responder: responder{opts: opts, logger: logger.With().Str("handler", "category").Logger()},
		service:   svc,
	}
}

// List handles GET /categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// GetByID handles GET /categories/{id}.
func (h *CategoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	category, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// Create handles POST /categories. Accepts multipart with an optional "image" file, or JSON.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var (
		in    model.CategoryInput
		image *model.Upload
	)

	if isMultipart(r) {
		if !h.parseMultipart(w, r) {
			return
		}
		in.Name = r.FormValue("name")
		in.Description = r.FormValue("description")
		in.Visibility = r.FormValue("visibility")

		var err error
		if image, err = singleImage(r); err != nil {
			h.writeError(w, r, err)
			return
		}
	} else if !h.decodeJSON(w, r, &in) {
		return
	}

	category, err := h.service.CreateCategory(r.Context(), &in, image)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// Update handles PUT /categories/{id}.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var (
		in    model.CategoryUpdate
		image *model.Upload
	)

	if isMultipart(r) {
		if !h.parseMultipart(w, r) {
			return
		}
		in.Name = formValue(r, "name")
		in.Description = formValue(r, "description")
		in.Visibility = formValue(r, "visibility")
		if raw := formValue(r, "removeImage"); raw != nil {
			remove, err := strconv.ParseBool(*raw)
			if err != nil {
				h.writeError(w, r, model.NewValidationError("Invalid form field",
					model.FieldError{Field: "removeImage", Message: "must be true or false"}))
				return
			}
			in.RemoveImage = remove
		}

		var err error
		if image, err = singleImage(r); err != nil {
			h.writeError(w, r, err)
			return
		}
	} else if !h.decodeJSON(w, r, &in) {
		return
	}

	category, err := h.service.UpdateCategory(r.Context(), id, &in, image)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// SoftDelete handles DELETE /categories/{id}/soft.
func (h *CategoryHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.SoftDeleteCategory(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Category soft deleted successfully"})
}

// Delete handles DELETE /categories/{id}.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Category deleted successfully"})
}

// CreateSubCategory handles POST /categories/{id}/subcategories.
func (h *CategoryHandler) CreateSubCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var in model.SubCategoryInput
	if !h.decodeJSON(w, r, &in) {
		return
	}

	sub, err := h.service.CreateSubCategory(r.Context(), categoryID, &in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// ListSubCategories handles GET /categories/{id}/subcategories.
func (h *CategoryHandler) ListSubCategories(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	subs, err := h.service.ListSubCategories(r.Context(), categoryID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// SoftDeleteSubCategory handles DELETE /subcategories/{id}/soft.
func (h *CategoryHandler) SoftDeleteSubCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.SoftDeleteSubCategory(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Sub-category soft deleted successfully"})
}

// singleImage returns the "image" file, if one was posted.
func singleImage(r *http.Request) (*model.Upload, error) {
	uploads, err := readUploads(r, "image")
	if err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, nil
	}
	if len(uploads) > 1 {
		return nil, model.NewValidationError("Only one category image is accepted",
			model.FieldError{Field: "image", Message: "at most 1 file"})
	}
	return &uploads[0], nil
}
