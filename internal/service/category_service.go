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
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
)

// categoryService implements CategoryService.
type categoryService struct {
	categoryRepo    repository.CategoryRepository
	subCategoryRepo repository.SubCategoryRepository
	images          storage.Store
	logger          zerolog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	subCategoryRepo repository.SubCategoryRepository,
	images storage.Store,
	logger zerolog.Logger,
) CategoryService {
	return &categoryService{
		categoryRepo:    categoryRepo,
		subCategoryRepo: subCategoryRepo,
		images:          images,
		logger:          logger.With().Str("service", "category").Logger(),
	}
}

func (s *categoryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetCategory hides soft-deleted categories.
func (s *categoryService) GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	category, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.IsDeleted {
		return nil, model.ErrCategoryNotFound
	}
	return category, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, in *model.CategoryInput, image *model.Upload) (*model.Category, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	visibility := in.Visibility
	if visibility == "" {
		visibility = model.VisibilityPublic
	}

	now := time.Now().UTC()
	category := &model.Category{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Visibility:  visibility,
		ImageURL:    s.uploadImage(ctx, image),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	category.Slug = slug.Make(category.Name)

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("category_id", category.ID.String()).
		Str("slug", category.Slug).
		Msg("category created")

	return category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uuid.UUID, in *model.CategoryUpdate, image *model.Upload) (*model.Category, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	category, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		category.Name = strings.TrimSpace(*in.Name)
		category.Slug = slug.Make(category.Name)
	}
	if in.Description != nil {
		category.Description = strings.TrimSpace(*in.Description)
	}
	if in.Visibility != nil {
		category.Visibility = *in.Visibility
	}

	// A new image wins over a removal request.
	if url := s.uploadImage(ctx, image); url != nil {
		category.ImageURL = url
	} else if in.RemoveImage {
		category.ImageURL = nil
	}

	category.UpdatedAt = time.Now().UTC()
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *categoryService) SoftDeleteCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if category.IsDeleted {
		return model.ErrAlreadyDeleted
	}
	return s.categoryRepo.SoftDelete(ctx, id)
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.categoryRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if !deleted {
		return model.ErrCategoryNotFound
	}

	s.logger.Info().Str("category_id", id.String()).Msg("category deleted")
	return nil
}

func (s *categoryService) CreateSubCategory(ctx context.Context, categoryID uuid.UUID, in *model.SubCategoryInput) (*model.SubCategory, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	// The parent must not be soft-deleted.
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sub := &model.SubCategory{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(in.Name),
		CategoryID:  categoryID,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.subCategoryRepo.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *categoryService) ListSubCategories(ctx context.Context, categoryID uuid.UUID) ([]model.SubCategory, error) {
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	subs, err := s.subCategoryRepo.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sub-categories: %w", err)
	}
	return subs, nil
}

func (s *categoryService) SoftDeleteSubCategory(ctx context.Context, id uuid.UUID) error {
	sub, err := s.subCategoryRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get sub-category: %w", err)
	}
	if sub == nil {
		return model.ErrSubCategoryNotFound
	}
	if sub.IsDeleted {
		return model.ErrAlreadyDeleted
	}
	return s.subCategoryRepo.SoftDelete(ctx, id)
}

func (s *categoryService) load(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, model.ErrCategoryNotFound
	}
	return category, nil
}

// uploadImage stores image and returns its URL, or nil when there is no
// image or the upload failed.
func (s *categoryService) uploadImage(ctx context.Context, image *model.Upload) *string {
	if image == nil {
		return nil
	}
	urls := storage.UploadAll(ctx, s.images, []model.Upload{*image}, s.logger)
	if len(urls) == 0 {
		return nil
	}
	return &urls[0]
}
