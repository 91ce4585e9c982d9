package mocks

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/example/inventory-keeper/internal/infrastructure/store"
	"github.com/example/inventory-keeper/internal/model"
)

// RecordStore is an in-memory mock implementation of store.RecordStore
// for testing. Individual operations can be forced to fail through the
// Fail* fields, and mutating calls are recorded for assertions.
type RecordStore struct {
	mu sync.Mutex

	Products     map[string]*model.Product
	Categories   map[string]*model.Category
	Transactions map[string]*model.Transaction
	Users        map[string]*model.User
	Sessions     map[string]*model.Session

	// Failure injection
	FailInsertTransaction error
	FailAdjustStock       error
	FailDeleteTransaction error
	FailGetTransaction    error

	// Call tracking
	InsertTransactionCalls []model.Transaction
	DeleteTransactionCalls []string
	AdjustStockCalls       []AdjustStockCall

	nextID int
}

// AdjustStockCall records parameters passed to AdjustProductStock
type AdjustStockCall struct {
	ProductID string
	Delta     int
}

// NewRecordStore creates a new empty mock store
func NewRecordStore() *RecordStore {
	return &RecordStore{
		Products:     make(map[string]*model.Product),
		Categories:   make(map[string]*model.Category),
		Transactions: make(map[string]*model.Transaction),
		Users:        make(map[string]*model.User),
		Sessions:     make(map[string]*model.Session),
	}
}

func (m *RecordStore) genID() string {
	m.nextID++
	return "mock-" + strconv.Itoa(m.nextID)
}

// Products

func (m *RecordStore) ListProducts(ctx context.Context) ([]model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	products := make([]model.Product, 0, len(m.Products))
	for _, p := range m.Products {
		products = append(products, *m.enrichProduct(p))
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (m *RecordStore) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return m.enrichProduct(p), nil
}

func (m *RecordStore) enrichProduct(p *model.Product) *model.Product {
	cp := *p
	if cp.CategoryID != nil {
		if c, ok := m.Categories[*cp.CategoryID]; ok {
			cat := *c
			cp.Category = &cat
		}
	}
	return &cp
}

func (m *RecordStore) CreateProduct(ctx context.Context, p *model.Product) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	if cp.ID == "" {
		cp.ID = m.genID()
	}
	if cp.ProductCode == "" {
		cp.ProductCode = "P-" + cp.ID
	}
	m.Products[cp.ID] = &cp
	return m.enrichProduct(&cp), nil
}

func (m *RecordStore) UpdateProduct(ctx context.Context, id string, patch store.ProductPatch) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.Name = patch.Name
	p.CategoryID = patch.CategoryID
	p.Price = patch.Price
	p.MinStockThreshold = patch.MinStockThreshold
	p.Description = patch.Description
	p.UpdatedBy = patch.UpdatedBy
	return m.enrichProduct(p), nil
}

func (m *RecordStore) DeleteProduct(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Products[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.Products, id)
	return nil
}

func (m *RecordStore) AdjustProductStock(ctx context.Context, id string, delta int, updatedBy *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AdjustStockCalls = append(m.AdjustStockCalls, AdjustStockCall{ProductID: id, Delta: delta})
	if m.FailAdjustStock != nil {
		return false, m.FailAdjustStock
	}
	p, ok := m.Products[id]
	if !ok || p.CurrentStock+delta < 0 {
		return false, nil
	}
	p.CurrentStock += delta
	if updatedBy != nil {
		p.UpdatedBy = updatedBy
	}
	return true, nil
}

func (m *RecordStore) ProductStockLevels(ctx context.Context) ([]model.StockLevel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	levels := make([]model.StockLevel, 0, len(m.Products))
	for _, p := range m.Products {
		levels = append(levels, model.StockLevel{
			ProductID:         p.ID,
			CurrentStock:      p.CurrentStock,
			MinStockThreshold: p.MinStockThreshold,
		})
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].ProductID < levels[j].ProductID })
	return levels, nil
}

// Categories

func (m *RecordStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	categories := make([]model.Category, 0, len(m.Categories))
	for _, c := range m.Categories {
		categories = append(categories, *c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (m *RecordStore) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *RecordStore) CreateCategory(ctx context.Context, c *model.Category) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	if cp.ID == "" {
		cp.ID = m.genID()
	}
	m.Categories[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *RecordStore) UpdateCategory(ctx context.Context, id, name string, description *string) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c.Name = name
	c.Description = description
	cp := *c
	return &cp, nil
}

func (m *RecordStore) DeleteCategory(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Categories[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.Categories, id)
	for _, p := range m.Products {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
		}
	}
	return nil
}

func (m *RecordStore) CategoryStockStats(ctx context.Context) ([]model.CategoryStockStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := make([]model.CategoryStockStat, 0, len(m.Categories))
	for _, c := range m.Categories {
		st := model.CategoryStockStat{ID: c.ID, Name: c.Name}
		for _, p := range m.Products {
			if p.CategoryID == nil || *p.CategoryID != c.ID {
				continue
			}
			st.TotalProducts++
			st.TotalStock += p.CurrentStock
			if p.CurrentStock <= p.MinStockThreshold {
				st.LowStockCount++
			}
		}
		stats = append(stats, st)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats, nil
}

// Inventory transactions

func (m *RecordStore) InsertTransaction(ctx context.Context, tx *model.Transaction) (*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailInsertTransaction != nil {
		return nil, m.FailInsertTransaction
	}
	cp := *tx
	if cp.ID == "" {
		cp.ID = m.genID()
	}
	m.InsertTransactionCalls = append(m.InsertTransactionCalls, cp)
	stored := cp
	m.Transactions[cp.ID] = &stored
	return &cp, nil
}

func (m *RecordStore) DeleteTransaction(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteTransactionCalls = append(m.DeleteTransactionCalls, id)
	if m.FailDeleteTransaction != nil {
		return m.FailDeleteTransaction
	}
	delete(m.Transactions, id)
	return nil
}

func (m *RecordStore) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailGetTransaction != nil {
		return nil, m.FailGetTransaction
	}
	tx, ok := m.Transactions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *tx
	if p, ok := m.Products[cp.ProductID]; ok {
		cp.Product = m.enrichProduct(p)
	}
	return &cp, nil
}

func (m *RecordStore) ListTransactions(ctx context.Context, filter store.TransactionFilter) ([]model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var txs []model.Transaction
	for _, tx := range m.Transactions {
		if filter.ProductID != "" && tx.ProductID != filter.ProductID {
			continue
		}
		if filter.TransactionType.Valid() && tx.TransactionType != filter.TransactionType {
			continue
		}
		if filter.StartDate != nil && tx.TransactionDate.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && tx.TransactionDate.After(*filter.EndDate) {
			continue
		}
		cp := *tx
		if p, ok := m.Products[cp.ProductID]; ok {
			cp.Product = m.enrichProduct(p)
		}
		txs = append(txs, cp)
	}
	sort.Slice(txs, func(i, j int) bool {
		return txs[i].TransactionDate.After(txs[j].TransactionDate)
	})
	limit := filter.Limit
	if limit <= 0 {
		limit = store.DefaultTransactionLimit
	}
	if len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}

// Users & sessions

func (m *RecordStore) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	if cp.ID == "" {
		cp.ID = m.genID()
	}
	m.Users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *RecordStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *RecordStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *RecordStore) SaveSession(ctx context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.Sessions[cp.ID] = &cp
	return nil
}

func (m *RecordStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *RecordStore) DeleteSessionsByUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.Sessions {
		if s.UserID == userID {
			delete(m.Sessions, id)
		}
	}
	return nil
}
