package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/inventory-keeper/internal/auth"
	"github.com/example/inventory-keeper/internal/infrastructure/store/mocks"
	"github.com/example/inventory-keeper/internal/inventory"
	"github.com/example/inventory-keeper/internal/model"
)

const (
	testProductID  = "11111111-2222-3333-4444-555555555555"
	testCategoryID = "99999999-8888-7777-6666-555555555555"
	testUserID     = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"
)

type testEnv struct {
	router http.Handler
	store  *mocks.RecordStore
	token  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	recordStore := mocks.NewRecordStore()
	tokens := auth.NewTokenService("test-secret-key-for-handler-tests", 15*time.Minute, 7*24*time.Hour)

	processor := inventory.NewProcessor(recordStore, nil)
	router := NewRouter(RouterConfig{
		AuthHandlers:      NewAuthHandlers(recordStore, tokens),
		ProductHandlers:   NewProductHandlers(recordStore),
		CategoryHandlers:  NewCategoryHandlers(recordStore),
		InventoryHandlers: NewInventoryHandlers(processor),
		DashboardHandlers: NewDashboardHandlers(recordStore),
		Verifier:          tokens,
	})

	token, _, err := tokens.IssueAccessToken(testUserID, "tester@example.com", "テスト担当者")
	require.NoError(t, err)

	return &testEnv{router: router, store: recordStore, token: token}
}

func (e *testEnv) seedProduct(stock, threshold int) {
	e.store.Categories[testCategoryID] = &model.Category{ID: testCategoryID, Name: "文房具"}
	categoryID := testCategoryID
	e.store.Products[testProductID] = &model.Product{
		ID:                testProductID,
		ProductCode:       "P-TEST0001",
		Name:              "テスト商品",
		CategoryID:        &categoryID,
		Price:             500,
		CurrentStock:      stock,
		MinStockThreshold: threshold,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateMovement_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(10, 5)

	rec := env.do(t, http.MethodPost, "/api/inventory", map[string]any{
		"productId":       testProductID,
		"transactionType": "IN",
		"quantity":        5,
	}, false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "認証が必要です")
	assert.Equal(t, 10, env.store.Products[testProductID].CurrentStock)
}

func TestCreateMovement_StockIn(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(10, 5)

	rec := env.do(t, http.MethodPost, "/api/inventory", map[string]any{
		"productId":       testProductID,
		"transactionType": "IN",
		"quantity":        5,
		"notes":           "定期入荷",
	}, true)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Transaction model.Transaction `json:"transaction"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.TransactionIn, resp.Transaction.TransactionType)
	assert.Equal(t, 5, resp.Transaction.Quantity)
	require.NotNil(t, resp.Transaction.UserID)
	assert.Equal(t, testUserID, *resp.Transaction.UserID)
	require.NotNil(t, resp.Transaction.Product)
	assert.Equal(t, 15, resp.Transaction.Product.CurrentStock)
	require.NotNil(t, resp.Transaction.Product.Category)
	assert.Equal(t, "文房具", resp.Transaction.Product.Category.Name)

	assert.Equal(t, 15, env.store.Products[testProductID].CurrentStock)
}

func TestCreateMovement_InsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(3, 0)

	rec := env.do(t, http.MethodPost, "/api/inventory", map[string]any{
		"productId":       testProductID,
		"transactionType": "OUT",
		"quantity":        5,
	}, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "在庫数が不足しています")
	assert.Contains(t, rec.Body.String(), "現在在庫: 3")
	assert.Contains(t, rec.Body.String(), "出庫予定: 5")
	assert.Equal(t, 3, env.store.Products[testProductID].CurrentStock)
}

func TestCreateMovement_StockOutToZero(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(3, 0)

	rec := env.do(t, http.MethodPost, "/api/inventory", map[string]any{
		"productId":       testProductID,
		"transactionType": "OUT",
		"quantity":        3,
	}, true)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 0, env.store.Products[testProductID].CurrentStock)
}

func TestCreateMovement_UnknownProduct(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/inventory", map[string]any{
		"productId":       "does-not-exist",
		"transactionType": "OUT",
		"quantity":        1,
	}, true)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "商品が見つかりません")
	assert.Empty(t, env.store.Transactions)
}

func TestCreateMovement_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(10, 5)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"invalid type", map[string]any{"productId": testProductID, "transactionType": "MOVE", "quantity": 1}},
		{"zero quantity", map[string]any{"productId": testProductID, "transactionType": "IN", "quantity": 0}},
		{"missing quantity", map[string]any{"productId": testProductID, "transactionType": "IN"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/inventory", tt.body, true)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "入力データが正しくありません")
			assert.Contains(t, rec.Body.String(), "details")
		})
	}
	assert.Empty(t, env.store.Transactions)
}

func TestListMovements_FilterAndEnrichment(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(10, 5)

	base := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)
	env.store.Transactions["t1"] = &model.Transaction{
		ID: "t1", ProductID: testProductID, TransactionType: model.TransactionIn,
		Quantity: 4, TransactionDate: base,
	}
	env.store.Transactions["t2"] = &model.Transaction{
		ID: "t2", ProductID: testProductID, TransactionType: model.TransactionOut,
		Quantity: 2, TransactionDate: base.Add(time.Hour),
	}

	rec := env.do(t, http.MethodGet, "/api/inventory", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Transactions []model.Transaction `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Transactions, 2)
	assert.Equal(t, "t2", resp.Transactions[0].ID)
	require.NotNil(t, resp.Transactions[0].Product)
	assert.Equal(t, "テスト商品", resp.Transactions[0].Product.Name)

	rec = env.do(t, http.MethodGet, "/api/inventory?transactionType=OUT", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, "t2", resp.Transactions[0].ID)

	rec = env.do(t, http.MethodGet, "/api/inventory?endDate=2026-08-02T09%3A30%3A00Z", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, "t1", resp.Transactions[0].ID)
}
