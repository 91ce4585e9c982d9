package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/example/inventory-keeper/internal/api/middleware"
	"github.com/example/inventory-keeper/internal/infrastructure/store"
	"github.com/example/inventory-keeper/internal/inventory"
	"github.com/example/inventory-keeper/internal/model"
)

// InventoryHandlers exposes the transaction processor over HTTP.
type InventoryHandlers struct {
	processor *inventory.Processor
}

// NewInventoryHandlers creates a new InventoryHandlers instance
func NewInventoryHandlers(processor *inventory.Processor) *InventoryHandlers {
	return &InventoryHandlers{processor: processor}
}

// MovementRequestBody is the POST /api/inventory request body.
type MovementRequestBody struct {
	ProductID       string  `json:"productId"`
	TransactionType string  `json:"transactionType"`
	Quantity        *int    `json:"quantity"`
	Notes           *string `json:"notes"`
}

// List returns movement history, newest-first, enriched with product
// and category. Filters: productId, transactionType, startDate,
// endDate, limit.
func (h *InventoryHandlers) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := store.TransactionFilter{
		ProductID: q.Get("productId"),
	}
	if t := model.TransactionType(q.Get("transactionType")); t.Valid() {
		filter.TransactionType = t
	}
	if start, ok := parseDate(q.Get("startDate")); ok {
		filter.StartDate = &start
	}
	if end, ok := parseDate(q.Get("endDate")); ok {
		filter.EndDate = &end
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}

	transactions, err := h.processor.List(r.Context(), filter)
	if err != nil {
		log.Printf("[API] Error listing transactions: %v", err)
		respondError(w, "履歴の取得に失敗しました", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"transactions": transactions})
}

// Create records one stock movement.
func (h *InventoryHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req MovementRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "入力データが正しくありません", http.StatusBadRequest)
		return
	}

	var details []FieldError
	if !model.TransactionType(req.TransactionType).Valid() {
		details = append(details, FieldError{Field: "transactionType", Message: "入出庫種別を選択してください"})
	}
	if req.Quantity == nil {
		details = append(details, FieldError{Field: "quantity", Message: "数量を入力してください"})
	} else if *req.Quantity < 1 {
		details = append(details, FieldError{Field: "quantity", Message: "数量は1以上で入力してください"})
	}
	if len(details) > 0 {
		respondValidationError(w, details)
		return
	}

	transaction, err := h.processor.Process(r.Context(), inventory.MovementRequest{
		ProductID:       req.ProductID,
		TransactionType: model.TransactionType(req.TransactionType),
		Quantity:        *req.Quantity,
		Notes:           req.Notes,
		ActingUser:      middleware.GetUserID(r.Context()),
	})
	if err != nil {
		h.respondProcessError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"transaction": transaction})
}

func (h *InventoryHandlers) respondProcessError(w http.ResponseWriter, err error) {
	var insufficient *inventory.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		respondError(w, fmt.Sprintf("在庫数が不足しています。現在在庫: %d, 出庫予定: %d",
			insufficient.CurrentStock, insufficient.Requested), http.StatusBadRequest)
	case errors.Is(err, inventory.ErrProductNotFound):
		respondError(w, "商品が見つかりません", http.StatusNotFound)
	case errors.Is(err, inventory.ErrInvalidTransactionType):
		respondError(w, "無効な取引種別です", http.StatusBadRequest)
	case errors.Is(err, inventory.ErrInvalidQuantity):
		respondError(w, "数量は1以上で入力してください", http.StatusBadRequest)
	case errors.Is(err, inventory.ErrRecordHistory):
		respondError(w, "履歴の記録に失敗しました", http.StatusInternalServerError)
	case errors.Is(err, inventory.ErrUpdateStock):
		respondError(w, "在庫の更新に失敗しました", http.StatusInternalServerError)
	case errors.Is(err, inventory.ErrFetchResult):
		respondError(w, "履歴の取得に失敗しました", http.StatusInternalServerError)
	default:
		log.Printf("[API] Unexpected movement error: %v", err)
		respondError(w, "サーバーエラーが発生しました", http.StatusInternalServerError)
	}
}

// parseDate accepts RFC 3339 timestamps or bare dates.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
