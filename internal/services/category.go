package services

import (
	"context"
	"strings"

	"github.com/restcatalog/apiserver/internal/events"
	"github.com/restcatalog/apiserver/types"
)

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]types.Category, error)
	Get(ctx context.Context, id int) (types.Category, error)
	Exists(ctx context.Context, id int) (bool, error)
	Create(ctx context.Context, category types.Category) (types.Category, error)
	Update(ctx context.Context, category types.Category) (types.Category, error)
	Delete(ctx context.Context, id int) error
}

// ActiveProductCounter reports how many active products a category holds.
type ActiveProductCounter interface {
	CountActiveByCategory(ctx context.Context, categoryID int) (int, error)
}

// CategoryService encapsulates category use-cases.
type CategoryService struct {
	repo     CategoryRepository
	products ActiveProductCounter
	events   *events.Publisher
}

func NewCategoryService(repo CategoryRepository, products ActiveProductCounter, publisher *events.Publisher) *CategoryService {
	return &CategoryService{repo: repo, products: products, events: publisher}
}

func (s *CategoryService) List(ctx context.Context) ([]types.Category, error) {
	return s.repo.List(ctx)
}

func (s *CategoryService) Save(ctx context.Context, category types.Category) (types.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return types.Category{}, ErrNameRequired
	}

	created, err := s.repo.Create(ctx, category)
	if err != nil {
		return types.Category{}, err
	}
	s.events.Publish(ctx, events.EntityCategory, events.ActionCreated, created.ID)
	return created, nil
}

func (s *CategoryService) Update(ctx context.Context, id int, category types.Category) (types.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return types.Category{}, ErrNameRequired
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Category{}, err
	}

	existing.Name = category.Name
	existing.Description = category.Description

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return types.Category{}, err
	}
	s.events.Publish(ctx, events.EntityCategory, events.ActionUpdated, updated.ID)
	return updated, nil
}

// Delete removes a category. A category still holding active products
// cannot be deleted.
func (s *CategoryService) Delete(ctx context.Context, id int) error {
	active, err := s.products.CountActiveByCategory(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrCategoryHasActiveProducts
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Publish(ctx, events.EntityCategory, events.ActionDeleted, id)
	return nil
}
