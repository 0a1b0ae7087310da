package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	minAutocompleteLength  = 2
	defaultAutocompleteMax = 5
	maxAutocompleteLimit   = 20
)

// catalogService implements CatalogService.
type catalogService struct {
	productRepo     repository.ProductRepository
	categoryRepo    repository.CategoryRepository
	subCategoryRepo repository.SubCategoryRepository
	images          storage.Store
	logger          zerolog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	subCategoryRepo repository.SubCategoryRepository,
	images storage.Store,
	logger zerolog.Logger,
) CatalogService {
	return &catalogService{
		productRepo:     productRepo,
		categoryRepo:    categoryRepo,
		subCategoryRepo: subCategoryRepo,
		images:          images,
		logger:          logger.With().Str("service", "catalog").Logger(),
	}
}

// GetProduct treats soft-deleted and inactive products as missing.
func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil || product.IsDeleted || !product.IsActive {
		return nil, model.ErrProductNotFound
	}
	return product, nil
}

func (s *catalogService) GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Product, error) {
	result := make(map[uuid.UUID]*model.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	for i := range products {
		result[products[i].ID] = &products[i]
	}
	return result, nil
}

func (s *catalogService) ListProducts(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error) {
	filter.Page, filter.Limit = normalisePage(filter.Page, filter.Limit)

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return newProductPage(products, filter, total), nil
}

func (s *catalogService) SearchProducts(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error) {
	filter.Page, filter.Limit = normalisePage(filter.Page, filter.Limit)
	filter.Search = strings.TrimSpace(filter.Search)

	products, total, err := s.productRepo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return newProductPage(products, filter, total), nil
}

func (s *catalogService) ListFeatured(ctx context.Context, page, limit int) (*model.ProductPage, error) {
	featured := true
	return s.ListProducts(ctx, model.ProductFilter{Page: page, Limit: limit, Featured: &featured})
}

func (s *catalogService) ListByCategory(ctx context.Context, categoryID uuid.UUID, page, limit int) (*model.ProductPage, error) {
	return s.ListProducts(ctx, model.ProductFilter{Page: page, Limit: limit, CategoryIDs: []uuid.UUID{categoryID}})
}

func (s *catalogService) Autocomplete(ctx context.Context, q string, limit int) ([]model.ProductSuggestion, error) {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < minAutocompleteLength {
		return []model.ProductSuggestion{}, nil
	}
	if limit < 1 {
		limit = defaultAutocompleteMax
	}
	if limit > maxAutocompleteLimit {
		limit = maxAutocompleteLimit
	}

	suggestions, err := s.productRepo.Autocomplete(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to autocomplete: %w", err)
	}
	return suggestions, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, in *model.ProductInput, uploads []model.Upload) (*model.Product, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := model.ValidateSalePrice(in.Price, in.SalePrice); err != nil {
		return nil, err
	}
	if err := s.checkTaxonomy(ctx, in.CategoryIDs, in.SubCategoryIDs); err != nil {
		return nil, err
	}
	if len(in.Images)+len(uploads) > model.MaxProductImages {
		return nil, tooManyImages()
	}

	stockStatus := in.StockStatus
	if stockStatus == "" {
		stockStatus = model.DeriveStockStatus(in.StockQuantity)
	}
	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}

	now := time.Now().UTC()
	product := &model.Product{
		ID:               uuid.New(),
		Name:             strings.TrimSpace(in.Name),
		Description:      in.Description,
		ShortDescription: in.ShortDescription,
		Price:            in.Price,
		SalePrice:        in.SalePrice,
		SKU:              in.SKU,
		StockQuantity:    in.StockQuantity,
		StockStatus:      stockStatus,
		CategoryIDs:      dedupeIDs(in.CategoryIDs),
		SubCategoryIDs:   dedupeIDs(in.SubCategoryIDs),
		Tags:             in.Tags,
		IsFeatured:       in.IsFeatured,
		IsActive:         isActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	product.Images = model.NormaliseFeatured(append(in.Images, s.uploadImages(ctx, product.Name, uploads)...))

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Int("image_count", len(product.Images)).
		Msg("product created")

	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in *model.ProductUpdate, uploads []model.Upload) (*model.Product, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil || product.IsDeleted {
		return nil, model.ErrProductNotFound
	}

	// The sale price is checked against the new price, or the stored one.
	price := product.Price
	if in.Price != nil {
		price = *in.Price
	}
	salePrice := product.SalePrice
	if in.SalePrice != nil {
		salePrice = in.SalePrice
	}
	if err := model.ValidateSalePrice(price, salePrice); err != nil {
		return nil, err
	}

	if err := s.checkTaxonomy(ctx, in.CategoryIDs, in.SubCategoryIDs); err != nil {
		return nil, err
	}

	images := product.Images
	if in.Images != nil {
		images = in.Images
	}
	if len(images)+len(uploads) > model.MaxProductImages {
		return nil, tooManyImages()
	}

	product.Price = price
	product.SalePrice = salePrice
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.ShortDescription != nil {
		product.ShortDescription = *in.ShortDescription
	}
	if in.SKU != nil {
		product.SKU = in.SKU
	}
	if in.StockQuantity != nil {
		product.StockQuantity = *in.StockQuantity
		product.StockStatus = model.DeriveStockStatus(*in.StockQuantity)
	} else if in.StockStatus != nil {
		product.StockStatus = *in.StockStatus
	}
	if in.CategoryIDs != nil {
		product.CategoryIDs = dedupeIDs(in.CategoryIDs)
	}
	if in.SubCategoryIDs != nil {
		product.SubCategoryIDs = dedupeIDs(in.SubCategoryIDs)
	}
	if in.Tags != nil {
		product.Tags = in.Tags
	}
	if in.IsFeatured != nil {
		product.IsFeatured = *in.IsFeatured
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	product.Images = model.NormaliseFeatured(append(images, s.uploadImages(ctx, product.Name, uploads)...))
	product.UpdatedAt = time.Now().UTC()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *catalogService) SoftDeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return model.ErrProductNotFound
	}
	if product.IsDeleted {
		return model.ErrAlreadyDeleted
	}
	return s.productRepo.SoftDelete(ctx, id)
}

func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !deleted {
		return model.ErrProductNotFound
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product deleted")
	return nil
}

// checkTaxonomy verifies every referenced category and sub-category exists
// and is not soft-deleted.
func (s *catalogService) checkTaxonomy(ctx context.Context, categoryIDs, subCategoryIDs []uuid.UUID) error {
	if ids := dedupeIDs(categoryIDs); len(ids) > 0 {
		count, err := s.categoryRepo.CountActive(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to check categories: %w", err)
		}
		if count != len(ids) {
			return model.ErrCategoryNotFound
		}
	}

	if ids := dedupeIDs(subCategoryIDs); len(ids) > 0 {
		count, err := s.subCategoryRepo.CountActive(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to check sub-categories: %w", err)
		}
		if count != len(ids) {
			return model.ErrSubCategoryNotFound
		}
	}

	return nil
}

func (s *catalogService) uploadImages(ctx context.Context, altText string, uploads []model.Upload) []model.ProductImage {
	if len(uploads) == 0 {
		return nil
	}

	urls := storage.UploadAll(ctx, s.images, uploads, s.logger)
	if len(urls) < len(uploads) {
		s.logger.Warn().
			Int("requested", len(uploads)).
			Int("uploaded", len(urls)).
			Msg("some product images were dropped")
	}

	images := make([]model.ProductImage, len(urls))
	for i, url := range urls {
		images[i] = model.ProductImage{URL: url, AltText: altText}
	}
	return images
}

func newProductPage(products []model.Product, filter model.ProductFilter, total int) *model.ProductPage {
	if products == nil {
		products = []model.Product{}
	}
	return &model.ProductPage{
		Data:       products,
		Pagination: model.NewPagination(filter.Page, filter.Limit, total),
	}
}

func tooManyImages() error {
	return model.NewValidationError(
		fmt.Sprintf("A product can have at most %d images", model.MaxProductImages),
		model.FieldError{Field: "images", Message: fmt.Sprintf("must contain at most %d entries", model.MaxProductImages)},
	)
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
