package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `id, name, description, short_description, price, sale_price, sku, stock_quantity,
	stock_status, category_ids, sub_category_ids, images, tags, is_featured, is_active, is_deleted,
	created_at, updated_at`

// productSortColumns whitelists the sortable columns by their API names.
var productSortColumns = map[string]string{
	"name":      "name",
	"price":     "price",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.ShortDescription, &p.Price, &p.SalePrice, &p.SKU, &p.StockQuantity,
		&p.StockStatus, &p.CategoryIDs, &p.SubCategoryIDs, &p.Images, &p.Tags, &p.IsFeatured, &p.IsActive, &p.IsDeleted,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Images == nil {
		p.Images = []model.ProductImage{}
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows, capacity int) ([]model.Product, error) {
	defer rows.Close()

	products := make([]model.Product, 0, capacity)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func productArgs(p *model.Product) []any {
	images := p.Images
	if images == nil {
		images = []model.ProductImage{}
	}
	return []any{
		p.ID, p.Name, p.Description, p.ShortDescription, p.Price, p.SalePrice, p.SKU, p.StockQuantity,
		p.StockStatus, nonNilUUIDs(p.CategoryIDs), nonNilUUIDs(p.SubCategoryIDs), images, nonNilStrings(p.Tags),
		p.IsFeatured, p.IsActive, p.IsDeleted, p.CreatedAt, p.UpdatedAt,
	}
}

// Create inserts a new product.
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	if _, err := r.pool.Exec(ctx, query, productArgs(p)...); err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return model.ErrSKUExists
		}
		r.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().Str("product_id", p.ID.String()).Msg("product created")

	return nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}

	return collectProducts(rows, len(ids))
}

// Update overwrites every mutable column of the product.
func (r *productRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
		UPDATE products SET
			name = $2, description = $3, short_description = $4, price = $5, sale_price = $6, sku = $7,
			stock_quantity = $8, stock_status = $9, category_ids = $10, sub_category_ids = $11, images = $12,
			tags = $13, is_featured = $14, is_active = $15, is_deleted = $16, updated_at = $17
		WHERE id = $1
	`

	args := productArgs(p)
	// created_at is never rewritten.
	args = append(args[:16], p.UpdatedAt)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return model.ErrSKUExists
		}
		r.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// SoftDelete flags the product as deleted.
func (r *productRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to soft delete product")
		return fmt.Errorf("failed to soft delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

// Delete removes the product row.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return false, fmt.Errorf("failed to delete product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// productQuery accumulates WHERE clauses with numbered placeholders.
type productQuery struct {
	where []string
	args  []any
}

func newProductQuery() *productQuery {
	return &productQuery{where: []string{"is_deleted = FALSE", "is_active = TRUE"}}
}

// add appends a clause; every "?" in clause is replaced by the next placeholder for arg.
func (q *productQuery) add(clause string, arg any) {
	q.args = append(q.args, arg)
	q.where = append(q.where, strings.ReplaceAll(clause, "?", fmt.Sprintf("$%d", len(q.args))))
}

func (q *productQuery) next() string {
	return fmt.Sprintf("$%d", len(q.args)+1)
}

func (q *productQuery) whereSQL() string {
	return " WHERE " + strings.Join(q.where, " AND ")
}

func (q *productQuery) applyFilter(f model.ProductFilter) {
	if len(f.CategoryIDs) > 0 {
		q.add("category_ids && ?", f.CategoryIDs)
	}
	if f.SubCategoryID != nil {
		q.add("? = ANY(sub_category_ids)", *f.SubCategoryID)
	}
	if f.MinPrice != nil {
		q.add("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q.add("price <= ?", *f.MaxPrice)
	}
	if f.Featured != nil {
		q.add("is_featured = ?", *f.Featured)
	}
	if f.InStock != nil {
		if *f.InStock {
			q.where = append(q.where, "stock_status = 'in_stock'")
		} else {
			q.where = append(q.where, "stock_status IN ('out_of_stock', 'on_backorder')")
		}
	}
}

func sortDirection(order string) string {
	if strings.EqualFold(order, "asc") {
		return "ASC"
	}
	return "DESC"
}

func (r *productRepository) page(ctx context.Context, q *productQuery, orderBy string, f model.ProductFilter) ([]model.Product, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+q.whereSQL(), q.args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count products")
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	if total == 0 {
		return []model.Product{}, 0, nil
	}

	limitArg := q.next()
	args := append(q.args, f.Limit)
	offsetArg := fmt.Sprintf("$%d", len(args)+1)
	args = append(args, f.Offset())

	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY %s LIMIT %s OFFSET %s`,
		productColumns, q.whereSQL(), orderBy, limitArg, offsetArg)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}

	products, err := collectProducts(rows, f.Limit)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// List retrieves a filtered, sorted page of products.
func (r *productRepository) List(ctx context.Context, f model.ProductFilter) ([]model.Product, int, error) {
	q := newProductQuery()
	q.applyFilter(f)
	if f.Search != "" {
		q.add("(name ILIKE ? OR description ILIKE ?)", "%"+escapeLike(f.Search)+"%")
	}

	column, ok := productSortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	orderBy := fmt.Sprintf("%s %s, id", column, sortDirection(f.SortOrder))

	return r.page(ctx, q, orderBy, f)
}

// Search ranks matches with PostgreSQL full-text search.
func (r *productRepository) Search(ctx context.Context, f model.ProductFilter) ([]model.Product, int, error) {
	q := newProductQuery()
	q.applyFilter(f)

	orderBy := "created_at DESC, id"
	if f.Search != "" {
		q.add("search_vector @@ plainto_tsquery('english', ?)", f.Search)
		tsArg := fmt.Sprintf("$%d", len(q.args))
		if f.SortBy == "" || f.SortBy == "relevance" {
			orderBy = fmt.Sprintf("ts_rank(search_vector, plainto_tsquery('english', %s)) DESC, id", tsArg)
		}
	}
	if column, ok := productSortColumns[f.SortBy]; ok {
		orderBy = fmt.Sprintf("%s %s, id", column, sortDirection(f.SortOrder))
	}

	return r.page(ctx, q, orderBy, f)
}

// Autocomplete matches product names by prefix.
func (r *productRepository) Autocomplete(ctx context.Context, prefix string, limit int) ([]model.ProductSuggestion, error) {
	query := `
		SELECT id, name
		FROM products
		WHERE is_deleted = FALSE AND is_active = TRUE AND name ILIKE $1
		ORDER BY name ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, escapeLike(prefix)+"%", limit)
	if err != nil {
		r.logger.Error().Err(err).Str("prefix", prefix).Msg("failed to query autocomplete")
		return nil, fmt.Errorf("failed to query autocomplete: %w", err)
	}
	defer rows.Close()

	suggestions := []model.ProductSuggestion{}
	for rows.Next() {
		var s model.ProductSuggestion
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		suggestions = append(suggestions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating suggestions: %w", err)
	}

	return suggestions, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
