package api

import (
	"log"
	"net/http"

	"github.com/example/inventory-keeper/internal/infrastructure/store"
	"github.com/example/inventory-keeper/internal/model"
)

// DashboardHandlers serves the stock-overview aggregates.
type DashboardHandlers struct {
	store store.RecordStore
}

// NewDashboardHandlers creates a new DashboardHandlers instance
func NewDashboardHandlers(recordStore store.RecordStore) *DashboardHandlers {
	return &DashboardHandlers{store: recordStore}
}

// DashboardOverview summarizes all products.
type DashboardOverview struct {
	TotalProducts int `json:"totalProducts"`
	TotalStock    int `json:"totalStock"`
	OutOfStock    int `json:"outOfStock"`
	LowStock      int `json:"lowStock"`
}

// Stats returns the overview plus per-category aggregates. A product
// counts as out of stock at zero, and as low stock when positive but at
// or below its threshold.
func (h *DashboardHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	levels, err := h.store.ProductStockLevels(r.Context())
	if err != nil {
		log.Printf("[API] Error loading stock levels: %v", err)
		respondError(w, "データの取得に失敗しました", http.StatusInternalServerError)
		return
	}

	categoryStats, err := h.store.CategoryStockStats(r.Context())
	if err != nil {
		log.Printf("[API] Error loading category stats: %v", err)
		respondError(w, "データの取得に失敗しました", http.StatusInternalServerError)
		return
	}
	if categoryStats == nil {
		categoryStats = []model.CategoryStockStat{}
	}

	overview := DashboardOverview{TotalProducts: len(levels)}
	for _, l := range levels {
		overview.TotalStock += l.CurrentStock
		switch {
		case l.CurrentStock == 0:
			overview.OutOfStock++
		case l.CurrentStock <= l.MinStockThreshold:
			overview.LowStock++
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"overview":      overview,
		"categoryStats": categoryStats,
	})
}
