package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/restcatalog/apiserver/internal/services"
	"github.com/restcatalog/apiserver/internal/store"
	"github.com/restcatalog/apiserver/types"
)

const (
	maxImageMemory = 32 << 20
	formFieldImage = "image"
)

// ProductHandler provides HTTP handlers for products.
type ProductHandler struct {
	productService *services.ProductService
}

// NewProductHandler constructs a handler with the provided service.
func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ProductRouter registers product routes on the given router.
func ProductRouter(r chi.Router, productService *services.ProductService) {
	handler := NewProductHandler(productService)

	r.Get("/search", handler.SearchProducts)
	r.Post("/create", handler.CreateProduct)
	r.Patch("/update/{productID}", handler.UpdateProduct)
	r.Delete("/delete/{productID}", handler.DeleteProduct)
	r.Post("/{productID}/image", handler.UploadProductImage)
	r.Get("/{productID}/image", handler.GetProductImage)
}

type ProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	CategoryID  int     `json:"category_id"`
	IsActive    bool    `json:"is_active"`
}

// SearchProducts returns products matching optional query criteria:
// categoryId, name, priceLow, priceHigh.
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	products, err := h.productService.Search(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search products")
		return
	}
	if len(products) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	_, err := h.productService.Save(r.Context(), productFromRequest(req))
	if err != nil {
		if errors.Is(err, services.ErrNameRequired) || errors.Is(err, services.ErrCategoryRequired) {
			writeDomainError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create product")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	_, err = h.productService.Update(r.Context(), id, productFromRequest(req))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNameRequired), errors.Is(err, services.ErrCategoryRequired):
			writeDomainError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrNotFound):
			writeDomainError(w, http.StatusNotFound, "product not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update product")
		}
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeDomainError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// UploadProductImage stores an image for the product in object storage.
func (h *ProductHandler) UploadProductImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxImageMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile(formFieldImage)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	key, err := h.productService.UploadImage(
		r.Context(),
		id,
		file,
		header.Size,
		header.Header.Get("Content-Type"),
		header.Filename,
	)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeDomainError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, services.ErrNoObjectStorage):
			writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
		default:
			writeError(w, http.StatusInternalServerError, "failed to upload image")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"image": key})
}

// GetProductImage streams the product's stored image.
func (h *ProductHandler) GetProductImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reader, err := h.productService.Image(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeDomainError(w, http.StatusNotFound, "product image not found")
		case errors.Is(err, services.ErrNoObjectStorage):
			writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
		default:
			writeError(w, http.StatusInternalServerError, "failed to fetch image")
		}
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, reader)
}

func productFromRequest(req ProductRequest) types.Product {
	return types.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		IsActive:    req.IsActive,
	}
}

func parseProductID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "productID"))
	if err != nil || id < 1 {
		return 0, errors.New("invalid product id")
	}
	return id, nil
}

func parseProductFilter(r *http.Request) (types.ProductFilter, error) {
	var filter types.ProductFilter
	query := r.URL.Query()

	if raw := strings.TrimSpace(query.Get("categoryId")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			return types.ProductFilter{}, errors.New("invalid categoryId")
		}
		filter.CategoryID = &id
	}
	if raw := strings.TrimSpace(query.Get("name")); raw != "" {
		filter.Name = &raw
	}
	if raw := strings.TrimSpace(query.Get("priceLow")); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return types.ProductFilter{}, errors.New("invalid priceLow")
		}
		filter.PriceLow = &price
	}
	if raw := strings.TrimSpace(query.Get("priceHigh")); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return types.ProductFilter{}, errors.New("invalid priceHigh")
		}
		filter.PriceHigh = &price
	}
	return filter, nil
}
