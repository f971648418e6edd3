package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/restcatalog/apiserver/internal/auth"
	"github.com/restcatalog/apiserver/internal/services"
	"github.com/restcatalog/apiserver/internal/store"
	"github.com/restcatalog/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserRepo struct {
	users  map[string]types.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[string]types.User{}, nextID: 1}
}

func (s *stubUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (types.User, error) {
	u, ok := s.users[username]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *stubUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, ok := s.users[username]
	return ok, nil
}

func (s *stubUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	user.ID = s.nextID
	s.nextID++
	s.users[user.Username] = user
	return user, nil
}

func (s *stubUserRepo) List(ctx context.Context) ([]types.User, error) {
	out := make([]types.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

type stubCategoryRepo struct {
	categories map[int]types.Category
	nextID     int
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{categories: map[int]types.Category{}, nextID: 1}
}

func (s *stubCategoryRepo) List(ctx context.Context) ([]types.Category, error) {
	out := make([]types.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	return out, nil
}

func (s *stubCategoryRepo) Get(ctx context.Context, id int) (types.Category, error) {
	c, ok := s.categories[id]
	if !ok {
		return types.Category{}, store.ErrNotFound
	}
	return c, nil
}

func (s *stubCategoryRepo) Exists(ctx context.Context, id int) (bool, error) {
	_, ok := s.categories[id]
	return ok, nil
}

func (s *stubCategoryRepo) Create(ctx context.Context, category types.Category) (types.Category, error) {
	category.ID = s.nextID
	s.nextID++
	s.categories[category.ID] = category
	return category, nil
}

func (s *stubCategoryRepo) Update(ctx context.Context, category types.Category) (types.Category, error) {
	if _, ok := s.categories[category.ID]; !ok {
		return types.Category{}, store.ErrNotFound
	}
	s.categories[category.ID] = category
	return category, nil
}

func (s *stubCategoryRepo) Delete(ctx context.Context, id int) error {
	if _, ok := s.categories[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

func (s *stubCategoryRepo) CountActiveByCategory(ctx context.Context, categoryID int) (int, error) {
	return 0, nil
}

// newTestRouter wires the same middleware chain and access table the
// server uses, backed by in-memory repositories.
func newTestRouter(t *testing.T, users *stubUserRepo) http.Handler {
	t.Helper()

	tokens := auth.NewTokenService([]byte("0123456789abcdef0123456789abcdef"))
	authenticator := auth.NewAuthenticator(tokens, auth.NewResolver(users))
	policy := auth.NewPolicy(
		auth.Rule{Pattern: "/auth/login", Public: true},
		auth.Rule{Pattern: "/auth/register", Public: true},
		auth.Rule{Pattern: "/healthz", Public: true},
		auth.Rule{Pattern: "/category/all", Roles: []types.Role{types.RoleUser, types.RoleAdmin}},
		auth.Rule{Pattern: "/auth/*", Roles: []types.Role{types.RoleAdmin}},
		auth.Rule{Pattern: "/category/*", Roles: []types.Role{types.RoleAdmin}},
	)

	categories := newStubCategoryRepo()
	authService := services.NewAuthService(users, tokens)
	categoryService := services.NewCategoryService(categories, categories, nil)

	router := chi.NewRouter()
	router.Use(authenticator.Middleware(), policy.Middleware())
	router.Get("/healthz", Healthz)
	router.Route("/auth", func(r chi.Router) { AuthRouter(r, authService) })
	router.Route("/category", func(r chi.Router) { CategoryRouter(r, categoryService) })
	return router
}

func doJSON(t *testing.T, handler http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRequestPipeline(t *testing.T) {
	users := newStubUserRepo()
	router := newTestRouter(t, users)

	// Registration is public.
	rec := doJSON(t, router, http.MethodPost, "/auth/register", "",
		`{"username": "alice", "password": "pw123", "email": "alice@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	// Re-registering the same username conflicts and names it.
	rec = doJSON(t, router, http.MethodPost, "/auth/register", "",
		`{"username": "alice", "password": "other", "email": "fresh@example.com"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	var conflict DomainErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conflict))
	assert.Contains(t, conflict.Message, "alice")
	assert.NotEmpty(t, conflict.Timestamp)

	// Login yields a token.
	rec = doJSON(t, router, http.MethodPost, "/auth/login", "",
		`{"username": "alice", "password": "pw123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var login LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	// Wrong password is rejected with 401.
	rec = doJSON(t, router, http.MethodPost, "/auth/login", "",
		`{"username": "alice", "password": "wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A USER token reads the shared catalog route.
	rec = doJSON(t, router, http.MethodGet, "/category/all", login.Token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// The same token cannot reach an admin-only route.
	rec = doJSON(t, router, http.MethodPost, "/category/create", login.Token,
		`{"name": "drinks"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Access denied")

	// Protected routes without a token get the canonical 401 body.
	rec = doJSON(t, router, http.MethodGet, "/category/all", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error": "Invalid access. Please authenticate."}`, rec.Body.String())

	// Public routes ignore a garbage token entirely.
	rec = doJSON(t, router, http.MethodGet, "/healthz", "not-a-token", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminPipeline(t *testing.T) {
	users := newStubUserRepo()
	router := newTestRouter(t, users)

	// Seed an admin directly; registration only ever creates USER accounts.
	hash, err := auth.HashPassword("admin-pw")
	require.NoError(t, err)
	_, err = users.Create(context.Background(), types.User{
		Username: "root", Email: "root@example.com", Role: types.RoleAdmin, PasswordHash: hash,
	})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPost, "/auth/login", "",
		`{"username": "root", "password": "admin-pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var login LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	rec = doJSON(t, router, http.MethodPost, "/category/create", login.Token, `{"name": "drinks"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/category/all", login.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var categories []types.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categories))
	require.Len(t, categories, 1)
	assert.Equal(t, "drinks", categories[0].Name)

	rec = doJSON(t, router, http.MethodGet, "/auth/users", login.Token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/category/delete/1", login.Token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/category/all", login.Token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
