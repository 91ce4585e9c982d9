package store

import (
	"context"
	"errors"
	"time"

	"github.com/example/inventory-keeper/internal/model"
)

// ErrNotFound is returned when a selectOne-style lookup matches no row.
var ErrNotFound = errors.New("record not found")

// TransactionFilter narrows a transaction listing. Zero values mean
// "no filter"; Limit falls back to DefaultTransactionLimit.
type TransactionFilter struct {
	ProductID       string
	TransactionType model.TransactionType
	StartDate       *time.Time
	EndDate         *time.Time
	Limit           int
}

// DefaultTransactionLimit caps GET /api/inventory when no limit is given.
const DefaultTransactionLimit = 50

// ProductPatch carries the mutable product fields for an update.
type ProductPatch struct {
	Name              string
	CategoryID        *string
	Price             float64
	MinStockThreshold int
	Description       *string
	UpdatedBy         *string
}

// RecordStore is the table-oriented persistence capability the rest of
// the application is written against. PostgresStore is the production
// implementation; mocks.RecordStore backs the tests.
type RecordStore interface {
	// Products
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	CreateProduct(ctx context.Context, p *model.Product) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	// AdjustProductStock applies delta to current_stock only when the
	// result stays non-negative, reporting whether a row was updated.
	AdjustProductStock(ctx context.Context, id string, delta int, updatedBy *string) (bool, error)
	ProductStockLevels(ctx context.Context) ([]model.StockLevel, error)

	// Categories
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	CreateCategory(ctx context.Context, c *model.Category) (*model.Category, error)
	UpdateCategory(ctx context.Context, id, name string, description *string) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	CategoryStockStats(ctx context.Context) ([]model.CategoryStockStat, error)

	// Inventory transactions
	InsertTransaction(ctx context.Context, tx *model.Transaction) (*model.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)

	// Users & sessions
	CreateUser(ctx context.Context, u *model.User) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	SaveSession(ctx context.Context, s *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	DeleteSessionsByUser(ctx context.Context, userID string) error
}
