package services

import "errors"

var (
	// ErrInvalidRegistration is returned when registration fields are
	// blank after trimming.
	ErrInvalidRegistration = errors.New("registration data is missing or incomplete")

	// ErrInvalidCredentials is returned on unknown username or password
	// mismatch during login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNameRequired is returned when a catalog entity is saved without
	// a name.
	ErrNameRequired = errors.New("name must not be empty")

	// ErrCategoryRequired is returned when a product references no
	// category or a nonexistent one.
	ErrCategoryRequired = errors.New("product requires an existing category")

	// ErrCategoryHasActiveProducts blocks deleting a category that still
	// contains active products.
	ErrCategoryHasActiveProducts = errors.New("category still contains active products")

	// ErrNoObjectStorage is returned from image operations when no object
	// storage backend is configured.
	ErrNoObjectStorage = errors.New("object storage is not configured")
)
