package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/example/inventory-keeper/internal/api/middleware"
	"github.com/example/inventory-keeper/internal/infrastructure/store"
	"github.com/example/inventory-keeper/internal/model"
)

// ProductHandlers handles product CRUD requests.
type ProductHandlers struct {
	store store.RecordStore
}

// NewProductHandlers creates a new ProductHandlers instance
func NewProductHandlers(recordStore store.RecordStore) *ProductHandlers {
	return &ProductHandlers{store: recordStore}
}

// ProductRequest is the create/update request body.
type ProductRequest struct {
	Name              string   `json:"name"`
	CategoryID        string   `json:"categoryId"`
	Price             *float64 `json:"price"`
	MinStockThreshold *int     `json:"minStockThreshold"`
	Description       *string  `json:"description"`
}

func (req *ProductRequest) validate() []FieldError {
	var details []FieldError
	if req.Name == "" {
		details = append(details, FieldError{Field: "name", Message: "商品名は必須です"})
	}
	if _, err := uuid.Parse(req.CategoryID); err != nil {
		details = append(details, FieldError{Field: "categoryId", Message: "カテゴリを選択してください"})
	}
	if req.Price == nil || *req.Price < 0 {
		details = append(details, FieldError{Field: "price", Message: "価格は0以上で入力してください"})
	}
	if req.MinStockThreshold == nil || *req.MinStockThreshold < 0 {
		details = append(details, FieldError{Field: "minStockThreshold", Message: "在庫下限値は0以上で入力してください"})
	}
	return details
}

// List returns all products newest-first, each with its category.
func (h *ProductHandlers) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		log.Printf("[API] Error listing products: %v", err)
		respondError(w, "商品の取得に失敗しました", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *ProductHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/products/")
	product, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("[API] Error getting product %s: %v", id, err)
		}
		respondError(w, "商品が見つかりません", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (h *ProductHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "入力データが正しくありません", http.StatusBadRequest)
		return
	}
	if details := req.validate(); len(details) > 0 {
		respondValidationError(w, details)
		return
	}

	userID := middleware.GetUserID(r.Context())
	product, err := h.store.CreateProduct(r.Context(), &model.Product{
		Name:              req.Name,
		CategoryID:        &req.CategoryID,
		Price:             *req.Price,
		MinStockThreshold: *req.MinStockThreshold,
		Description:       req.Description,
		CreatedBy:         &userID,
		UpdatedBy:         &userID,
	})
	if err != nil {
		log.Printf("[API] Error creating product: %v", err)
		respondError(w, "商品の作成に失敗しました", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"product": product})
}

func (h *ProductHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/products/")

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "入力データが正しくありません", http.StatusBadRequest)
		return
	}
	if details := req.validate(); len(details) > 0 {
		respondValidationError(w, details)
		return
	}

	userID := middleware.GetUserID(r.Context())
	product, err := h.store.UpdateProduct(r.Context(), id, store.ProductPatch{
		Name:              req.Name,
		CategoryID:        &req.CategoryID,
		Price:             *req.Price,
		MinStockThreshold: *req.MinStockThreshold,
		Description:       req.Description,
		UpdatedBy:         &userID,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, "商品が見つかりません", http.StatusNotFound)
			return
		}
		log.Printf("[API] Error updating product %s: %v", id, err)
		respondError(w, "商品の更新に失敗しました", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (h *ProductHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/products/")

	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, "商品が見つかりません", http.StatusNotFound)
			return
		}
		log.Printf("[API] Error deleting product %s: %v", id, err)
		respondError(w, "商品の削除に失敗しました", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "商品を削除しました"})
}
