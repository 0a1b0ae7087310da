package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockStatus is the availability state shown to shoppers.
type StockStatus string

const (
	StockInStock    StockStatus = "in_stock"
	StockOutOfStock StockStatus = "out_of_stock"
	StockBackorder  StockStatus = "on_backorder"
)

// MaxProductImages caps the number of images attached to one product.
const MaxProductImages = 5

// Product represents an item in the catalogue.
type Product struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	Name             string           `json:"name" db:"name"`
	Description      string           `json:"description" db:"description"`
	ShortDescription string           `json:"shortDescription,omitempty" db:"short_description"`
	Price            decimal.Decimal  `json:"price" db:"price"`
	SalePrice        *decimal.Decimal `json:"salePrice,omitempty" db:"sale_price"`
	SKU              *string          `json:"sku,omitempty" db:"sku"`
	StockQuantity    int              `json:"stockQuantity" db:"stock_quantity"`
	StockStatus      StockStatus      `json:"stockStatus" db:"stock_status"`
	CategoryIDs      []uuid.UUID      `json:"categoryIds" db:"category_ids"`
	SubCategoryIDs   []uuid.UUID      `json:"subCategoryIds" db:"sub_category_ids"`
	Images           []ProductImage   `json:"images" db:"images"`
	Tags             []string         `json:"tags" db:"tags"`
	IsFeatured       bool             `json:"isFeatured" db:"is_featured"`
	IsActive         bool             `json:"isActive" db:"is_active"`
	IsDeleted        bool             `json:"isDeleted" db:"is_deleted"`
	CreatedAt        time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time        `json:"updatedAt" db:"updated_at"`
}

// ProductImage is one stored image of a product.
type ProductImage struct {
	URL        string `json:"url"`
	AltText    string `json:"altText,omitempty"`
	IsFeatured bool   `json:"isFeatured"`
}

// OnSale reports whether a sale price below the regular price is set.
func (p *Product) OnSale() bool {
	return p.SalePrice != nil && p.SalePrice.LessThan(p.Price)
}

// EffectivePrice is the unit price a shopper pays right now.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// FeaturedImage returns the featured image URL, or the first one, or "".
func (p *Product) FeaturedImage() string {
	for _, img := range p.Images {
		if img.IsFeatured {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}

// DeriveStockStatus maps a quantity to in_stock / out_of_stock.
func DeriveStockStatus(quantity int) StockStatus {
	if quantity > 0 {
		return StockInStock
	}
	return StockOutOfStock
}

// NormaliseFeatured ensures exactly one image is featured when any exist,
// keeping the first flagged one and defaulting to the first image.
func NormaliseFeatured(images []ProductImage) []ProductImage {
	featured := -1
	for i := range images {
		if images[i].IsFeatured && featured == -1 {
			featured = i
		}
		images[i].IsFeatured = false
	}
	if len(images) == 0 {
		return images
	}
	if featured == -1 {
		featured = 0
	}
	images[featured].IsFeatured = true
	return images
}

// ValidateSalePrice enforces salePrice < price when a sale price is present.
func ValidateSalePrice(price decimal.Decimal, salePrice *decimal.Decimal) error {
	if salePrice == nil {
		return nil
	}
	if salePrice.IsNegative() || !salePrice.LessThan(price) {
		return ErrInvalidSalePrice
	}
	return nil
}

// ProductInput is the admin payload for creating a product.
type ProductInput struct {
	Name             string           `json:"name" validate:"required,min=3,max=100"`
	Description      string           `json:"description" validate:"required,min=10"`
	ShortDescription string           `json:"shortDescription" validate:"max=200"`
	Price            decimal.Decimal  `json:"price" validate:"decimal_gte0"`
	SalePrice        *decimal.Decimal `json:"salePrice" validate:"omitempty,decimal_gte0"`
	SKU              *string          `json:"sku" validate:"omitempty,max=100"`
	StockQuantity    int              `json:"stockQuantity" validate:"gte=0"`
	StockStatus      StockStatus      `json:"stockStatus" validate:"omitempty,oneof=in_stock out_of_stock on_backorder"`
	CategoryIDs      []uuid.UUID      `json:"categoryIds" validate:"required,min=1"`
	SubCategoryIDs   []uuid.UUID      `json:"subCategoryIds"`
	Images           []ProductImage   `json:"images" validate:"max=5,dive"`
	Tags             []string         `json:"tags"`
	IsFeatured       bool             `json:"isFeatured"`
	IsActive         *bool            `json:"isActive"`
}

// ProductUpdate is the admin payload for a partial product update; nil fields are left unchanged.
type ProductUpdate struct {
	Name             *string          `json:"name" validate:"omitempty,min=3,max=100"`
	Description      *string          `json:"description" validate:"omitempty,min=10"`
	ShortDescription *string          `json:"shortDescription" validate:"omitempty,max=200"`
	Price            *decimal.Decimal `json:"price" validate:"omitempty,decimal_gte0"`
	SalePrice        *decimal.Decimal `json:"salePrice" validate:"omitempty,decimal_gte0"`
	SKU              *string          `json:"sku" validate:"omitempty,max=100"`
	StockQuantity    *int             `json:"stockQuantity" validate:"omitempty,gte=0"`
	StockStatus      *StockStatus     `json:"stockStatus" validate:"omitempty,oneof=in_stock out_of_stock on_backorder"`
	CategoryIDs      []uuid.UUID      `json:"categoryIds" validate:"omitempty,min=1"`
	SubCategoryIDs   []uuid.UUID      `json:"subCategoryIds"`
	Images           []ProductImage   `json:"images" validate:"omitempty,max=5,dive"`
	Tags             []string         `json:"tags"`
	IsFeatured       *bool            `json:"isFeatured"`
	IsActive         *bool            `json:"isActive"`
}

// ProductFilter selects products for list and search endpoints.
type ProductFilter struct {
	Page          int
	Limit         int
	CategoryIDs   []uuid.UUID
	SubCategoryID *uuid.UUID
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	Search        string
	Featured      *bool
	InStock       *bool
	SortBy        string
	SortOrder     string
}

// Offset converts the 1-based page into a row offset.
func (f ProductFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// ProductSuggestion is an autocomplete hit.
type ProductSuggestion struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes page counts for a listing.
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if total > 0 && limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, TotalItems: total, TotalPages: totalPages}
}

// ProductPage is a paginated list of products.
type ProductPage struct {
	Data       []Product  `json:"data"`
	Pagination Pagination `json:"pagination"`
}
