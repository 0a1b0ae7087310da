package model

import (
	"time"

	"github.com/google/uuid"
)

// Visibility values accepted for a category.
const (
	VisibilityPublic = "public"
	VisibilityHidden = "hidden"
)

// Category groups products at the top level of the catalogue.
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	ImageURL    *string   `json:"imageUrl,omitempty" db:"image_url"`
	Visibility  string    `json:"visibility" db:"visibility"`
	IsDeleted   bool      `json:"isDeleted" db:"is_deleted"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// SubCategory belongs to exactly one Category.
type SubCategory struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	CategoryID  uuid.UUID `json:"categoryId" db:"category_id"`
	Description string    `json:"description" db:"description"`
	IsDeleted   bool      `json:"isDeleted" db:"is_deleted"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// CategoryInput is the admin payload for creating a category.
type CategoryInput struct {
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"required,min=5"`
	Visibility  string `json:"visibility" validate:"omitempty,oneof=public hidden"`
}

// CategoryUpdate carries the fields an admin may change; nil fields are left alone.
type CategoryUpdate struct {
	Name        *string `json:"name" validate:"omitempty,min=3,max=100"`
	Description *string `json:"description" validate:"omitempty,min=5"`
	Visibility  *string `json:"visibility" validate:"omitempty,oneof=public hidden"`
	RemoveImage bool    `json:"removeImage"`
}

// SubCategoryInput is the admin payload for creating a sub-category.
type SubCategoryInput struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// Upload is a file received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}
