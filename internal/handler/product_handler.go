package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ProductHandler handles product browsing and administration requests.
type ProductHandler struct {
	responder
	service service.CatalogService
}

// NewProductHandler creates a new product handler.
func NewProductHandler(svc service.CatalogService, opts Options, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		responder: responder{opts: opts, logger: logger.With().Str("handler", "product").Logger()},
		service:   svc,
	}
}

// List handles GET /products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	page, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Search handles GET /products/search.
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	page, err := h.service.SearchProducts(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Featured handles GET /products/featured.
func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	page, limit, err := paging(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	products, err := h.service.ListFeatured(r.Context(), page, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// ByCategory handles GET /products/category/{categoryId}.
func (h *ProductHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := h.pathID(w, r, "categoryId")
	if !ok {
		return
	}
	page, limit, err := paging(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	products, err := h.service.ListByCategory(r.Context(), categoryID, page, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// Autocomplete handles GET /products/autocomplete?q=.
func (h *ProductHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	suggestions, err := h.service.Autocomplete(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestions)
}

// GetByID handles GET /products/{id}.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Create handles POST /products. Multipart bodies carry the product as a
// JSON "data" field plus up to five "images" files; the first upload is featured.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.ProductInput
	uploads, ok := h.readProductBody(w, r, &in)
	if !ok {
		return
	}

	product, err := h.service.CreateProduct(r.Context(), &in, uploads)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// Update handles PUT /products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var in model.ProductUpdate
	uploads, ok := h.readProductBody(w, r, &in)
	if !ok {
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, &in, uploads)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// SoftDelete handles DELETE /products/{id}/soft.
func (h *ProductHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.SoftDeleteProduct(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Product soft deleted successfully"})
}

// Delete handles DELETE /products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Product deleted successfully"})
}

// readProductBody decodes dst from either a multipart "data" field or a JSON body.
func (h *ProductHandler) readProductBody(w http.ResponseWriter, r *http.Request, dst interface{}) ([]model.Upload, bool) {
	if !isMultipart(r) {
		return nil, h.decodeJSON(w, r, dst)
	}
	if !h.parseMultipart(w, r) {
		return nil, false
	}

	if data := r.FormValue("data"); data != "" {
		if err := json.Unmarshal([]byte(data), dst); err != nil {
			h.badRequest(w, r, model.ErrCodeInvalidJSON, "Invalid JSON in data field: "+err.Error())
			return nil, false
		}
	}

	uploads, err := readUploads(r, "images")
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	if len(uploads) > model.MaxProductImages {
		h.writeError(w, r, model.NewValidationError("Too many images",
			model.FieldError{Field: "images", Message: "at most 5 files"}))
		return nil, false
	}
	return uploads, true
}

// parseProductFilter reads listing filters from the query string.
func parseProductFilter(r *http.Request) (model.ProductFilter, error) {
	q := r.URL.Query()

	page, limit, err := paging(r)
	if err != nil {
		return model.ProductFilter{}, err
	}
	filter := model.ProductFilter{
		Page:      page,
		Limit:     limit,
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
		Search:    q.Get("q"),
	}
	if filter.Search == "" {
		filter.Search = q.Get("search")
	}

	if raw := q.Get("category"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				return model.ProductFilter{}, invalidQuery("category", "must be a comma-separated list of ids")
			}
			filter.CategoryIDs = append(filter.CategoryIDs, id)
		}
	}
	if raw := q.Get("subCategory"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return model.ProductFilter{}, invalidQuery("subCategory", "must be an id")
		}
		filter.SubCategoryID = &id
	}

	if filter.MinPrice, err = queryDecimal(r, "minPrice"); err != nil {
		return model.ProductFilter{}, err
	}
	if filter.MaxPrice, err = queryDecimal(r, "maxPrice"); err != nil {
		return model.ProductFilter{}, err
	}
	if filter.Featured, err = queryBool(r, "featured"); err != nil {
		return model.ProductFilter{}, err
	}
	if filter.InStock, err = queryBool(r, "inStock"); err != nil {
		return model.ProductFilter{}, err
	}
	return filter, nil
}

func queryDecimal(r *http.Request, name string) (*decimal.Decimal, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, invalidQuery(name, "must be a number")
	}
	return &d, nil
}

func queryBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, invalidQuery(name, "must be true or false")
	}
	return &b, nil
}

func invalidQuery(field, message string) error {
	return model.NewValidationError("Invalid query parameter", model.FieldError{Field: field, Message: message})
}
