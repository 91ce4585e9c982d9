package model

import "time"

// TransactionType is the direction of a stock movement.
type TransactionType string

const (
	TransactionIn  TransactionType = "IN"
	TransactionOut TransactionType = "OUT"
)

// Valid reports whether t is one of the accepted movement kinds.
func (t TransactionType) Valid() bool {
	return t == TransactionIn || t == TransactionOut
}

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session is a persisted refresh-token session.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"-"`
	UserAgent        string    `json:"user_agent"`
	IPAddress        string    `json:"ip_address"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
}

// Category groups products. Deleting a category never deletes its
// products; their category reference is cleared instead.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product is a stocked item. CurrentStock is maintained exclusively
// through inventory transactions and is never negative at rest.
type Product struct {
	ID                string    `json:"id"`
	ProductCode       string    `json:"product_code"`
	Name              string    `json:"name"`
	CategoryID        *string   `json:"category_id"`
	Price             float64   `json:"price"`
	CurrentStock      int       `json:"current_stock"`
	MinStockThreshold int       `json:"min_stock_threshold"`
	Description       *string   `json:"description"`
	CreatedBy         *string   `json:"created_by"`
	UpdatedBy         *string   `json:"updated_by"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Category is populated on enriched reads.
	Category *Category `json:"categories,omitempty"`
}

// Transaction is one recorded stock movement. Rows are immutable once
// written; the only delete path is the compensating rollback when the
// follow-up stock update fails.
type Transaction struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	UserID          *string         `json:"user_id"`
	TransactionType TransactionType `json:"transaction_type"`
	Quantity        int             `json:"quantity"`
	Notes           *string         `json:"notes"`
	TransactionDate time.Time       `json:"transaction_date"`
	CreatedAt       time.Time       `json:"created_at"`

	// Product (with its category) is populated on enriched reads.
	Product *Product `json:"products,omitempty"`
}

// StockLevel is the slice of a product the dashboard aggregates over.
type StockLevel struct {
	ProductID         string
	CurrentStock      int
	MinStockThreshold int
}

// CategoryStockStat is the per-category dashboard aggregate.
type CategoryStockStat struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	TotalProducts int    `json:"totalProducts"`
	TotalStock    int    `json:"totalStock"`
	LowStockCount int    `json:"lowStockCount"`
}
