package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/example/inventory-keeper/internal/infrastructure/store"
	"github.com/example/inventory-keeper/internal/model"
)

// CategoryHandlers handles category CRUD requests.
type CategoryHandlers struct {
	store store.RecordStore
}

// NewCategoryHandlers creates a new CategoryHandlers instance
func NewCategoryHandlers(recordStore store.RecordStore) *CategoryHandlers {
	return &CategoryHandlers{store: recordStore}
}

// CategoryRequest is the create/update request body.
type CategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// List returns all categories in name order.
func (h *CategoryHandlers) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		log.Printf("[API] Error listing categories: %v", err)
		respondError(w, "カテゴリの取得に失敗しました", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *CategoryHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "入力データが正しくありません", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		respondValidationError(w, []FieldError{
			{Field: "name", Message: "カテゴリ名は必須です"},
		})
		return
	}

	category, err := h.store.CreateCategory(r.Context(), &model.Category{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		log.Printf("[API] Error creating category: %v", err)
		respondError(w, "カテゴリの作成に失敗しました", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"category": category})
}

func (h *CategoryHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/categories/")

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "入力データが正しくありません", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		respondValidationError(w, []FieldError{
			{Field: "name", Message: "カテゴリ名は必須です"},
		})
		return
	}

	category, err := h.store.UpdateCategory(r.Context(), id, req.Name, req.Description)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, "カテゴリが見つかりません", http.StatusNotFound)
			return
		}
		log.Printf("[API] Error updating category %s: %v", id, err)
		respondError(w, "カテゴリの更新に失敗しました", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"category": category})
}

// Delete removes a category. Products referencing it are detached, not
// deleted.
func (h *CategoryHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/categories/")

	if err := h.store.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, "カテゴリが見つかりません", http.StatusNotFound)
			return
		}
		log.Printf("[API] Error deleting category %s: %v", id, err)
		respondError(w, "カテゴリの削除に失敗しました", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "カテゴリを削除しました"})
}
