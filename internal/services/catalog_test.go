package services

import (
	"context"
	"testing"

	"github.com/restcatalog/apiserver/internal/store"
	"github.com/restcatalog/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCatalog struct {
	categories map[int]types.Category
	products   map[int]types.Product
	nextID     int
}

func newMemoryCatalog() *memoryCatalog {
	return &memoryCatalog{
		categories: map[int]types.Category{},
		products:   map[int]types.Product{},
		nextID:     1,
	}
}

func (m *memoryCatalog) List(ctx context.Context) ([]types.Category, error) {
	out := make([]types.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (m *memoryCatalog) Get(ctx context.Context, id int) (types.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return types.Category{}, store.ErrNotFound
	}
	return c, nil
}

func (m *memoryCatalog) Exists(ctx context.Context, id int) (bool, error) {
	_, ok := m.categories[id]
	return ok, nil
}

func (m *memoryCatalog) Create(ctx context.Context, category types.Category) (types.Category, error) {
	category.ID = m.nextID
	m.nextID++
	m.categories[category.ID] = category
	return category, nil
}

func (m *memoryCatalog) Update(ctx context.Context, category types.Category) (types.Category, error) {
	if _, ok := m.categories[category.ID]; !ok {
		return types.Category{}, store.ErrNotFound
	}
	m.categories[category.ID] = category
	return category, nil
}

func (m *memoryCatalog) Delete(ctx context.Context, id int) error {
	if _, ok := m.categories[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *memoryCatalog) CountActiveByCategory(ctx context.Context, categoryID int) (int, error) {
	count := 0
	for _, p := range m.products {
		if p.CategoryID == categoryID && p.IsActive {
			count++
		}
	}
	return count, nil
}

func (m *memoryCatalog) GetProduct(ctx context.Context, id int) (types.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return types.Product{}, store.ErrNotFound
	}
	return p, nil
}

func (m *memoryCatalog) Search(ctx context.Context, filter types.ProductFilter) ([]types.Product, error) {
	out := make([]types.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *memoryCatalog) CreateProduct(ctx context.Context, product types.Product) (types.Product, error) {
	product.ID = m.nextID
	m.nextID++
	m.products[product.ID] = product
	return product, nil
}

func (m *memoryCatalog) UpdateProduct(ctx context.Context, product types.Product) (types.Product, error) {
	if _, ok := m.products[product.ID]; !ok {
		return types.Product{}, store.ErrNotFound
	}
	m.products[product.ID] = product
	return product, nil
}

func (m *memoryCatalog) UpdateImage(ctx context.Context, id int, imageKey string) error {
	p, ok := m.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Image = imageKey
	m.products[id] = p
	return nil
}

func (m *memoryCatalog) DeleteProduct(ctx context.Context, id int) error {
	if _, ok := m.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

// productRepoAdapter maps the catalog fake onto ProductRepository, whose
// method names collide with the category side of the fake.
type productRepoAdapter struct{ *memoryCatalog }

func (a productRepoAdapter) Get(ctx context.Context, id int) (types.Product, error) {
	return a.GetProduct(ctx, id)
}

func (a productRepoAdapter) Create(ctx context.Context, product types.Product) (types.Product, error) {
	return a.CreateProduct(ctx, product)
}

func (a productRepoAdapter) Update(ctx context.Context, product types.Product) (types.Product, error) {
	return a.UpdateProduct(ctx, product)
}

func (a productRepoAdapter) Delete(ctx context.Context, id int) error {
	return a.DeleteProduct(ctx, id)
}

func TestCategorySaveRequiresName(t *testing.T) {
	catalog := newMemoryCatalog()
	service := NewCategoryService(catalog, catalog, nil)

	_, err := service.Save(context.Background(), types.Category{Name: "  "})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestCategoryDeleteBlockedByActiveProducts(t *testing.T) {
	ctx := context.Background()
	catalog := newMemoryCatalog()
	service := NewCategoryService(catalog, catalog, nil)

	created, err := service.Save(ctx, types.Category{Name: "drinks"})
	require.NoError(t, err)

	_, err = catalog.CreateProduct(ctx, types.Product{
		Name: "cola", CategoryID: created.ID, IsActive: true,
	})
	require.NoError(t, err)

	err = service.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, ErrCategoryHasActiveProducts)

	// Inactive products do not block deletion.
	for id, p := range catalog.products {
		p.IsActive = false
		catalog.products[id] = p
	}
	require.NoError(t, service.Delete(ctx, created.ID))
}

func TestCategoryUpdatePreservesIdentity(t *testing.T) {
	ctx := context.Background()
	catalog := newMemoryCatalog()
	service := NewCategoryService(catalog, catalog, nil)

	created, err := service.Save(ctx, types.Category{Name: "drinks", Description: "old"})
	require.NoError(t, err)

	updated, err := service.Update(ctx, created.ID, types.Category{Name: "beverages", Description: "new"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "beverages", updated.Name)
	assert.Equal(t, "new", updated.Description)

	_, err = service.Update(ctx, 999, types.Category{Name: "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestProductSaveValidatesCategory(t *testing.T) {
	ctx := context.Background()
	catalog := newMemoryCatalog()
	service := NewProductService(productRepoAdapter{catalog}, catalog, nil, nil)

	_, err := service.Save(ctx, types.Product{Name: "cola"})
	assert.ErrorIs(t, err, ErrCategoryRequired)

	_, err = service.Save(ctx, types.Product{Name: "cola", CategoryID: 42})
	assert.ErrorIs(t, err, ErrCategoryRequired)

	_, err = service.Save(ctx, types.Product{CategoryID: 1})
	assert.ErrorIs(t, err, ErrNameRequired)

	category, err := catalog.Create(ctx, types.Category{Name: "drinks"})
	require.NoError(t, err)

	created, err := service.Save(ctx, types.Product{Name: "cola", CategoryID: category.ID})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
}

func TestProductUpdatePreservesImage(t *testing.T) {
	ctx := context.Background()
	catalog := newMemoryCatalog()
	service := NewProductService(productRepoAdapter{catalog}, catalog, nil, nil)

	category, err := catalog.Create(ctx, types.Category{Name: "drinks"})
	require.NoError(t, err)

	created, err := service.Save(ctx, types.Product{Name: "cola", CategoryID: category.ID})
	require.NoError(t, err)
	require.NoError(t, catalog.UpdateImage(ctx, created.ID, "products/1/img.png"))

	updated, err := service.Update(ctx, created.ID, types.Product{
		Name: "cola zero", CategoryID: category.ID, Image: "client-supplied.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "products/1/img.png", updated.Image)
	assert.Equal(t, "cola zero", updated.Name)
}

func TestProductImageWithoutStorage(t *testing.T) {
	ctx := context.Background()
	catalog := newMemoryCatalog()
	service := NewProductService(productRepoAdapter{catalog}, catalog, nil, nil)

	_, err := service.UploadImage(ctx, 1, nil, 0, "image/png", "a.png")
	assert.ErrorIs(t, err, ErrNoObjectStorage)

	_, err = service.Image(ctx, 1)
	assert.ErrorIs(t, err, ErrNoObjectStorage)
}
