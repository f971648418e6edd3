package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/restcatalog/apiserver/internal/events"
	"github.com/restcatalog/apiserver/internal/storage"
	"github.com/restcatalog/apiserver/internal/store"
	"github.com/restcatalog/apiserver/types"
)

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	Get(ctx context.Context, id int) (types.Product, error)
	Search(ctx context.Context, filter types.ProductFilter) ([]types.Product, error)
	Create(ctx context.Context, product types.Product) (types.Product, error)
	Update(ctx context.Context, product types.Product) (types.Product, error)
	UpdateImage(ctx context.Context, id int, imageKey string) error
	Delete(ctx context.Context, id int) error
}

// CategoryChecker reports whether a category exists.
type CategoryChecker interface {
	Exists(ctx context.Context, id int) (bool, error)
}

// ProductService encapsulates product use-cases, including image objects
// held in external storage.
type ProductService struct {
	repo       ProductRepository
	categories CategoryChecker
	storage    *storage.Storage
	events     *events.Publisher
}

func NewProductService(
	repo ProductRepository,
	categories CategoryChecker,
	objectStorage *storage.Storage,
	publisher *events.Publisher,
) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
		storage:    objectStorage,
		events:     publisher,
	}
}

func (s *ProductService) Get(ctx context.Context, id int) (types.Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *ProductService) Search(ctx context.Context, filter types.ProductFilter) ([]types.Product, error) {
	return s.repo.Search(ctx, filter)
}

func (s *ProductService) Save(ctx context.Context, product types.Product) (types.Product, error) {
	if err := s.validate(ctx, &product); err != nil {
		return types.Product{}, err
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return types.Product{}, err
	}
	s.events.Publish(ctx, events.EntityProduct, events.ActionCreated, created.ID)
	return created, nil
}

func (s *ProductService) Update(ctx context.Context, id int, product types.Product) (types.Product, error) {
	if err := s.validate(ctx, &product); err != nil {
		return types.Product{}, err
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Product{}, err
	}

	product.ID = id
	// The image key is owned by the upload endpoint, never by updates.
	product.Image = existing.Image
	product.AddedDate = existing.AddedDate

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return types.Product{}, err
	}
	s.events.Publish(ctx, events.EntityProduct, events.ActionUpdated, updated.ID)
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, id int) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if existing.Image != "" && s.storage != nil {
		if err := s.storage.Delete(ctx, existing.Image); err != nil {
			log.Printf("products: delete image %s: %v", existing.Image, err)
		}
	}

	s.events.Publish(ctx, events.EntityProduct, events.ActionDeleted, id)
	return nil
}

// UploadImage stores a new image object for the product and records its
// key. The previous object, if any, is removed afterwards.
func (s *ProductService) UploadImage(ctx context.Context, id int, r io.Reader, size int64, contentType, filename string) (string, error) {
	if s.storage == nil {
		return "", ErrNoObjectStorage
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("products/%d/%s%s", id, uuid.NewString(), path.Ext(filename))
	if err := s.storage.Put(ctx, key, r, size, contentType); err != nil {
		return "", err
	}

	if err := s.repo.UpdateImage(ctx, id, key); err != nil {
		return "", err
	}

	if existing.Image != "" {
		if err := s.storage.Delete(ctx, existing.Image); err != nil {
			log.Printf("products: delete image %s: %v", existing.Image, err)
		}
	}

	s.events.Publish(ctx, events.EntityProduct, events.ActionUpdated, id)
	return key, nil
}

// Image opens a reader for the product's stored image.
func (s *ProductService) Image(ctx context.Context, id int) (io.ReadCloser, error) {
	if s.storage == nil {
		return nil, ErrNoObjectStorage
	}

	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.Image == "" {
		return nil, store.ErrNotFound
	}
	return s.storage.Get(ctx, product.Image)
}

func (s *ProductService) validate(ctx context.Context, product *types.Product) error {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return ErrNameRequired
	}
	if product.CategoryID == 0 {
		return fmt.Errorf("no category selected: %w", ErrCategoryRequired)
	}
	exists, err := s.categories.Exists(ctx, product.CategoryID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("category %d does not exist: %w", product.CategoryID, ErrCategoryRequired)
	}
	return nil
}
