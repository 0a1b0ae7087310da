package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const subCategoryColumns = `id, name, category_id, description, is_deleted, created_at, updated_at`

type subCategoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSubCategoryRepository creates a new PostgreSQL-backed sub-category repository.
func NewSubCategoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) SubCategoryRepository {
	return &subCategoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "subcategory").Logger(),
	}
}

func scanSubCategory(row pgx.Row) (*model.SubCategory, error) {
	var s model.SubCategory
	if err := row.Scan(&s.ID, &s.Name, &s.CategoryID, &s.Description, &s.IsDeleted, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *subCategoryRepository) Create(ctx context.Context, s *model.SubCategory) error {
	query := `
		INSERT INTO sub_categories (id, name, category_id, description, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query, s.ID, s.Name, s.CategoryID, s.Description, s.IsDeleted, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return model.ErrSubCategoryNameExists
		}
		r.logger.Error().Err(err).Str("sub_category_id", s.ID.String()).Msg("failed to create sub-category")
		return fmt.Errorf("failed to create sub-category: %w", err)
	}
	return nil
}

func (r *subCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SubCategory, error) {
	s, err := scanSubCategory(r.pool.QueryRow(ctx, `SELECT `+subCategoryColumns+` FROM sub_categories WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query sub-category: %w", err)
	}
	return s, nil
}

func (r *subCategoryRepository) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.SubCategory, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+subCategoryColumns+` FROM sub_categories
		 WHERE category_id = $1 AND is_deleted = FALSE
		 ORDER BY name ASC`,
		categoryID,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", categoryID.String()).Msg("failed to query sub-categories")
		return nil, fmt.Errorf("failed to query sub-categories: %w", err)
	}
	defer rows.Close()

	subs := []model.SubCategory{}
	for rows.Next() {
		s, err := scanSubCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sub-category: %w", err)
		}
		subs = append(subs, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sub-categories: %w", err)
	}

	return subs, nil
}

func (r *subCategoryRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sub_categories SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1`, id,
	)
	if err != nil {
		return fmt.Errorf("failed to soft delete sub-category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrSubCategoryNotFound
	}
	return nil
}

func (r *subCategoryRepository) CountActive(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `
		SELECT COUNT(DISTINCT s.id)
		FROM sub_categories s
		JOIN categories c ON c.id = s.category_id
		WHERE s.id = ANY($1) AND s.is_deleted = FALSE AND c.is_deleted = FALSE
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, ids).Scan(&count); err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to count sub-categories")
		return 0, fmt.Errorf("failed to count sub-categories: %w", err)
	}
	return count, nil
}
