package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/example/inventory-keeper/internal/model"
)

// ConnectPostgres establishes a connection to PostgreSQL
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// PostgresStore implements RecordStore on top of PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed record store
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const productColumns = `p.id, p.product_code, p.name, p.category_id, p.price,
	p.current_stock, p.min_stock_threshold, p.description,
	p.created_by, p.updated_by, p.created_at, p.updated_at,
	c.id, c.name`

func scanProduct(row interface{ Scan(...any) error }) (*model.Product, error) {
	var p model.Product
	var catID, catName sql.NullString
	err := row.Scan(
		&p.ID, &p.ProductCode, &p.Name, &p.CategoryID, &p.Price,
		&p.CurrentStock, &p.MinStockThreshold, &p.Description,
		&p.CreatedBy, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt,
		&catID, &catName,
	)
	if err != nil {
		return nil, err
	}
	if catID.Valid {
		p.Category = &model.Category{ID: catID.String, Name: catName.String}
	}
	return &p, nil
}

// Products

func (s *PostgresStore) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *PostgresStore) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) CreateProduct(ctx context.Context, p *model.Product) (*model.Product, error) {
	id := p.ID
	if id == "" {
		id = uuid.New().String()
	}
	code := p.ProductCode
	if code == "" {
		code = "P-" + strings.ToUpper(id[:8])
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, product_code, name, category_id, price,
			current_stock, min_stock_threshold, description,
			created_by, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())`,
		id, code, p.Name, p.CategoryID, p.Price,
		p.CurrentStock, p.MinStockThreshold, p.Description,
		p.CreatedBy, p.UpdatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return s.GetProduct(ctx, id)
}

func (s *PostgresStore) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*model.Product, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1, category_id = $2, price = $3,
			min_stock_threshold = $4, description = $5,
			updated_by = $6, updated_at = NOW()
		WHERE id = $7`,
		patch.Name, patch.CategoryID, patch.Price,
		patch.MinStockThreshold, patch.Description,
		patch.UpdatedBy, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetProduct(ctx, id)
}

func (s *PostgresStore) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustProductStock applies delta with a non-negative guard in a single
// statement. A zero rows-affected result means the guard rejected the
// movement (or the product vanished); the caller distinguishes the two.
func (s *PostgresStore) AdjustProductStock(ctx context.Context, id string, delta int, updatedBy *string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET current_stock = current_stock + $1,
			updated_by = COALESCE($2, updated_by),
			updated_at = NOW()
		WHERE id = $3 AND current_stock + $1 >= 0`,
		delta, updatedBy, id,
	)
	if err != nil {
		return false, fmt.Errorf("adjust stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("adjust stock: %w", err)
	}
	return n > 0, nil
}

func (s *PostgresStore) ProductStockLevels(ctx context.Context) ([]model.StockLevel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, current_stock, min_stock_threshold FROM products`)
	if err != nil {
		return nil, fmt.Errorf("stock levels: %w", err)
	}
	defer rows.Close()

	var levels []model.StockLevel
	for rows.Next() {
		var l model.StockLevel
		if err := rows.Scan(&l.ProductID, &l.CurrentStock, &l.MinStockThreshold); err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		levels = append(levels, l)
	}
	return levels, rows.Err()
}

// Categories

func (s *PostgresStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM categories
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *PostgresStore) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) CreateCategory(ctx context.Context, c *model.Category) (*model.Category, error) {
	id := c.ID
	if id == "" {
		id = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())`,
		id, c.Name, c.Description,
	)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return s.GetCategory(ctx, id)
}

func (s *PostgresStore) UpdateCategory(ctx context.Context, id, name string, description *string) (*model.Category, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE categories
		SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3`,
		name, description, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetCategory(ctx, id)
}

// DeleteCategory removes a category. Products keep existing; their
// category_id is cleared rather than cascading the delete.
func (s *PostgresStore) DeleteCategory(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE products SET category_id = NULL, updated_at = NOW()
		WHERE category_id = $1`, id); err != nil {
		return fmt.Errorf("detach products: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (s *PostgresStore) CategoryStockStats(ctx context.Context) ([]model.CategoryStockStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name,
			COUNT(p.id),
			COALESCE(SUM(p.current_stock), 0),
			COUNT(p.id) FILTER (WHERE p.current_stock <= p.min_stock_threshold)
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		GROUP BY c.id, c.name
		ORDER BY c.name`)
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	defer rows.Close()

	var stats []model.CategoryStockStat
	for rows.Next() {
		var st model.CategoryStockStat
		if err := rows.Scan(&st.ID, &st.Name, &st.TotalProducts, &st.TotalStock, &st.LowStockCount); err != nil {
			return nil, fmt.Errorf("scan category stat: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// Inventory transactions

const transactionColumns = `t.id, t.product_id, t.user_id, t.transaction_type,
	t.quantity, t.notes, t.transaction_date, t.created_at`

func (s *PostgresStore) InsertTransaction(ctx context.Context, tx *model.Transaction) (*model.Transaction, error) {
	id := tx.ID
	if id == "" {
		id = uuid.New().String()
	}
	inserted := *tx
	inserted.ID = id
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory_transactions
			(id, product_id, user_id, transaction_type, quantity, notes,
			 transaction_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
		id, tx.ProductID, tx.UserID, tx.TransactionType, tx.Quantity,
		tx.Notes, tx.TransactionDate,
	)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	return &inserted, nil
}

func (s *PostgresStore) DeleteTransaction(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM inventory_transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// GetTransaction returns one transaction enriched with its product and
// the product's category.
func (s *PostgresStore) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`, `+productColumns+`
		FROM inventory_transactions t
		JOIN products p ON p.id = t.product_id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE t.id = $1`, id)
	tx, err := scanEnrichedTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (s *PostgresStore) ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.ProductID != "" {
		add("t.product_id = $%d", filter.ProductID)
	}
	if filter.TransactionType.Valid() {
		add("t.transaction_type = $%d", string(filter.TransactionType))
	}
	if filter.StartDate != nil {
		add("t.transaction_date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("t.transaction_date <= $%d", *filter.EndDate)
	}

	query := `
		SELECT ` + transactionColumns + `, ` + productColumns + `
		FROM inventory_transactions t
		JOIN products p ON p.id = t.product_id
		LEFT JOIN categories c ON c.id = p.category_id`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultTransactionLimit
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY t.transaction_date DESC LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []model.Transaction
	for rows.Next() {
		tx, err := scanEnrichedTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}

func scanEnrichedTransaction(row interface{ Scan(...any) error }) (*model.Transaction, error) {
	var tx model.Transaction
	var p model.Product
	var catID, catName sql.NullString
	err := row.Scan(
		&tx.ID, &tx.ProductID, &tx.UserID, &tx.TransactionType,
		&tx.Quantity, &tx.Notes, &tx.TransactionDate, &tx.CreatedAt,
		&p.ID, &p.ProductCode, &p.Name, &p.CategoryID, &p.Price,
		&p.CurrentStock, &p.MinStockThreshold, &p.Description,
		&p.CreatedBy, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt,
		&catID, &catName,
	)
	if err != nil {
		return nil, err
	}
	if catID.Valid {
		p.Category = &model.Category{ID: catID.String, Name: catName.String}
	}
	tx.Product = &p
	return &tx, nil
}

// Users & sessions

func (s *PostgresStore) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	id := u.ID
	if id == "" {
		id = uuid.New().String()
	}
	created := *u
	created.ID = id
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at`,
		id, u.Email, u.Name, u.PasswordHash,
	).Scan(&created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.getUserBy(ctx, "id", id)
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUserBy(ctx, "email", email)
}

func (s *PostgresStore) getUserBy(ctx context.Context, column, value string) (*model.User, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, created_at, updated_at
		FROM users WHERE `+column+` = $1`, value,
	).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) SaveSession(ctx context.Context, sess *model.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions
			(id, user_id, refresh_token_hash, user_agent, ip_address,
			 expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (id) DO UPDATE
		SET refresh_token_hash = EXCLUDED.refresh_token_hash,
			expires_at = EXCLUDED.expires_at`,
		sess.ID, sess.UserID, sess.RefreshTokenHash, sess.UserAgent,
		sess.IPAddress, sess.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var sess model.Session
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, refresh_token_hash, user_agent, ip_address,
			expires_at, created_at
		FROM sessions WHERE id = $1`, id,
	).Scan(&sess.ID, &sess.UserID, &sess.RefreshTokenHash, &sess.UserAgent,
		&sess.IPAddress, &sess.ExpiresAt, &sess.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

func (s *PostgresStore) DeleteSessionsByUser(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}
