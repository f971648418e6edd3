package types

import "time"

// Category groups products in the catalog.
type Category struct {
	// ID is the unique identifier of the category.
	ID int `json:"id" db:"id"`

	// Name is the human-readable name of the category. Must be non-empty.
	Name string `json:"name" db:"name"`

	// Description is an optional free-form description.
	Description string `json:"description" db:"description"`

	// CreatedAt is the timestamp at which the category was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the category.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Product represents a single catalog entry.
type Product struct {
	// ID is the unique identifier of the product.
	ID int `json:"id" db:"id"`

	// Name is the product name. Must be non-empty.
	Name string `json:"name" db:"name"`

	// Description contains the product description.
	Description string `json:"description" db:"description"`

	// Price is the product price.
	Price float64 `json:"price" db:"price"`

	// Image is the object storage key of the product image, empty when
	// no image has been uploaded.
	Image string `json:"image" db:"image"`

	// CategoryID references the category the product belongs to.
	CategoryID int `json:"category_id" db:"category_id"`

	// IsActive marks the product as available for purchase.
	IsActive bool `json:"is_active" db:"is_active"`

	// AddedDate is the timestamp at which the product entered the catalog.
	AddedDate time.Time `json:"added_date" db:"added_date"`

	// UpdatedAt is the timestamp of the most recent update to the product.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ProductFilter carries optional search predicates for product lookups.
// Nil fields are ignored when building the query.
type ProductFilter struct {
	CategoryID *int
	Name       *string
	PriceLow   *float64
	PriceHigh  *float64
}
