package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/restcatalog/apiserver/internal/services"
	"github.com/restcatalog/apiserver/internal/store"
	"github.com/restcatalog/apiserver/types"
)

// CategoryHandler provides HTTP handlers for categories.
type CategoryHandler struct {
	categoryService *services.CategoryService
}

// NewCategoryHandler constructs a handler with the provided service.
func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CategoryRouter registers category routes on the given router.
func CategoryRouter(r chi.Router, categoryService *services.CategoryService) {
	handler := NewCategoryHandler(categoryService)

	r.Get("/all", handler.ListCategories)
	r.Post("/create", handler.CreateCategory)
	r.Patch("/update/{categoryID}", handler.UpdateCategory)
	r.Delete("/delete/{categoryID}", handler.DeleteCategory)
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	if len(categories) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	_, err := h.categoryService.Save(r.Context(), types.Category{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, services.ErrNameRequired) {
			writeDomainError(w, http.StatusBadRequest, "category name must not be empty")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create category")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseCategoryID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	_, err = h.categoryService.Update(r.Context(), id, types.Category{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNameRequired):
			writeDomainError(w, http.StatusBadRequest, "category name must not be empty")
		case errors.Is(err, store.ErrNotFound):
			writeDomainError(w, http.StatusNotFound, "category not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update category")
		}
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseCategoryID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.categoryService.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, services.ErrCategoryHasActiveProducts):
			writeDomainError(w, http.StatusConflict, "cannot delete a category that still has active products")
		case errors.Is(err, store.ErrNotFound):
			writeDomainError(w, http.StatusNotFound, "category not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to delete category")
		}
		return
	}
	w.WriteHeader(http.StatusOK)
}

func parseCategoryID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "categoryID"))
	if err != nil || id < 1 {
		return 0, errors.New("invalid category id")
	}
	return id, nil
}
