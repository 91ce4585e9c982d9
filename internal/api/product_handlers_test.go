package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/inventory-keeper/internal/model"
)

func TestCreateProduct_Success(t *testing.T) {
	env := newTestEnv(t)
	env.store.Categories[testCategoryID] = &model.Category{ID: testCategoryID, Name: "文房具"}

	rec := env.do(t, http.MethodPost, "/api/products", map[string]any{
		"name":              "ボールペン",
		"categoryId":        testCategoryID,
		"price":             150,
		"minStockThreshold": 20,
		"description":       "黒・0.5mm",
	}, true)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Product model.Product `json:"product"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ボールペン", resp.Product.Name)
	assert.NotEmpty(t, resp.Product.ProductCode)
	assert.Equal(t, 0, resp.Product.CurrentStock)
	require.NotNil(t, resp.Product.CreatedBy)
	assert.Equal(t, testUserID, *resp.Product.CreatedBy)
	require.NotNil(t, resp.Product.Category)
	assert.Equal(t, "文房具", resp.Product.Category.Name)
}

func TestCreateProduct_ValidationDetails(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/products", map[string]any{
		"name":              "",
		"categoryId":        "not-a-uuid",
		"price":             -1,
		"minStockThreshold": -5,
	}, true)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error   string       `json:"error"`
		Details []FieldError `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "入力データが正しくありません", resp.Error)
	require.Len(t, resp.Details, 4)

	fields := make([]string, 0, len(resp.Details))
	for _, d := range resp.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"name", "categoryId", "price", "minStockThreshold"}, fields)
}

func TestGetProduct_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/products/missing", nil, true)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "商品が見つかりません")
}

func TestUpdateProduct_Success(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(10, 5)

	rec := env.do(t, http.MethodPut, "/api/products/"+testProductID, map[string]any{
		"name":              "改名した商品",
		"categoryId":        testCategoryID,
		"price":             800,
		"minStockThreshold": 10,
	}, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "改名した商品", env.store.Products[testProductID].Name)
	assert.Equal(t, float64(800), env.store.Products[testProductID].Price)
	// Stock is untouched by product edits
	assert.Equal(t, 10, env.store.Products[testProductID].CurrentStock)
}

func TestDeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(10, 5)

	rec := env.do(t, http.MethodDelete, "/api/products/"+testProductID, nil, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "商品を削除しました")
	assert.Empty(t, env.store.Products)
}

func TestListProducts_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/products", nil, false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCategoryLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/categories", map[string]any{
		"name":        "事務用品",
		"description": "オフィス消耗品",
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Category model.Category `json:"category"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.Category.ID)

	rec = env.do(t, http.MethodPut, "/api/categories/"+created.Category.ID, map[string]any{
		"name": "事務用品・文具",
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/categories", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "事務用品・文具")

	rec = env.do(t, http.MethodDelete, "/api/categories/"+created.Category.ID, nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.store.Categories)
}

func TestDeleteCategory_DetachesProducts(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(10, 5)

	rec := env.do(t, http.MethodDelete, "/api/categories/"+testCategoryID, nil, true)

	require.Equal(t, http.StatusOK, rec.Code)
	// Product survives, reference cleared
	require.Contains(t, env.store.Products, testProductID)
	assert.Nil(t, env.store.Products[testProductID].CategoryID)
}

func TestCreateCategory_MissingName(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/categories", map[string]any{"name": ""}, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "カテゴリ名は必須です")
}
