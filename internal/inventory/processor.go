package inventory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/example/inventory-keeper/internal/infrastructure/store"
	"github.com/example/inventory-keeper/internal/model"
)

var (
	ErrProductNotFound        = errors.New("product not found")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidQuantity        = errors.New("quantity must be at least 1")
	ErrRecordHistory          = errors.New("failed to record transaction history")
	ErrUpdateStock            = errors.New("failed to update stock")
	ErrFetchResult            = errors.New("failed to fetch recorded transaction")
)

// InsufficientStockError rejects an OUT movement that would drive stock
// negative. It carries the numbers the caller needs to correct the
// request.
type InsufficientStockError struct {
	CurrentStock int
	Requested    int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: current %d, requested %d", e.CurrentStock, e.Requested)
}

// canonicalUserID matches the 8-4-4-4-12 hexadecimal grouping. Acting
// users that don't match are stored as NULL, not rejected.
var canonicalUserID = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// Publisher sends domain events to the event bus. Publishing is
// best-effort; the processor never fails a movement over it.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// MovementRequest is one requested stock movement.
type MovementRequest struct {
	ProductID       string
	TransactionType model.TransactionType
	Quantity        int
	Notes           *string
	ActingUser      string
}

// Processor validates stock movements and applies them to the record
// store: one history row plus one conditional stock update per accepted
// movement.
type Processor struct {
	store     store.RecordStore
	publisher Publisher
	now       func() time.Time
}

// NewProcessor creates a Processor. publisher may be nil.
func NewProcessor(recordStore store.RecordStore, publisher Publisher) *Processor {
	return &Processor{
		store:     recordStore,
		publisher: publisher,
		now:       time.Now,
	}
}

// Process applies one movement. On success it returns the recorded
// transaction enriched with its product and category.
//
// The write sequence is: insert the history row, then adjust the
// product stock with a conditional update that refuses to go negative.
// If the adjustment fails or is refused, the history row is deleted
// again (best effort) and the movement is reported as failed. The
// conditional update is what keeps two concurrent OUT movements from
// both draining the same stock.
func (p *Processor) Process(ctx context.Context, req MovementRequest) (*model.Transaction, error) {
	if !req.TransactionType.Valid() {
		return nil, ErrInvalidTransactionType
	}
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := p.store.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrProductNotFound, err)
	}

	delta := req.Quantity
	if req.TransactionType == model.TransactionOut {
		delta = -req.Quantity
		if product.CurrentStock-req.Quantity < 0 {
			return nil, &InsufficientStockError{
				CurrentStock: product.CurrentStock,
				Requested:    req.Quantity,
			}
		}
	}

	userID := p.actingUserID(req.ActingUser)
	now := p.now()

	recorded, err := p.store.InsertTransaction(ctx, &model.Transaction{
		ProductID:       req.ProductID,
		UserID:          userID,
		TransactionType: req.TransactionType,
		Quantity:        req.Quantity,
		Notes:           req.Notes,
		TransactionDate: now,
		CreatedAt:       now,
	})
	if err != nil {
		log.Printf("[Inventory] history insert failed for product %s: %v", req.ProductID, err)
		return nil, fmt.Errorf("%w: %v", ErrRecordHistory, err)
	}

	applied, err := p.store.AdjustProductStock(ctx, req.ProductID, delta, userID)
	if err != nil {
		p.compensate(ctx, recorded.ID)
		log.Printf("[Inventory] stock update failed for product %s: %v", req.ProductID, err)
		return nil, fmt.Errorf("%w: %v", ErrUpdateStock, err)
	}
	if !applied {
		// The guard refused: a concurrent movement consumed the stock
		// between the pre-check and the update, or the product is gone.
		p.compensate(ctx, recorded.ID)
		fresh, err := p.store.GetProduct(ctx, req.ProductID)
		if err != nil {
			return nil, ErrProductNotFound
		}
		return nil, &InsufficientStockError{
			CurrentStock: fresh.CurrentStock,
			Requested:    req.Quantity,
		}
	}

	enriched, err := p.store.GetTransaction(ctx, recorded.ID)
	if err != nil {
		// The movement itself is committed at this point.
		log.Printf("[Inventory] enriched re-read failed for transaction %s: %v", recorded.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrFetchResult, err)
	}

	p.publishMovement(ctx, enriched)

	return enriched, nil
}

// List returns movements newest-first, enriched with product and
// category, narrowed by the filter.
func (p *Processor) List(ctx context.Context, filter store.TransactionFilter) ([]model.Transaction, error) {
	return p.store.ListTransactions(ctx, filter)
}

// actingUserID keeps the acting user only when it has the canonical
// UUID shape. Anything else becomes NULL.
func (p *Processor) actingUserID(raw string) *string {
	if !canonicalUserID.MatchString(raw) {
		return nil
	}
	return &raw
}

// compensate deletes the history row written before a failed stock
// update. Failure here leaves an orphaned row behind; it is logged and
// swallowed.
func (p *Processor) compensate(ctx context.Context, transactionID string) {
	if err := p.store.DeleteTransaction(ctx, transactionID); err != nil {
		log.Printf("[Inventory] WARNING: compensating delete failed for transaction %s, orphaned history row remains: %v", transactionID, err)
	}
}

func (p *Processor) publishMovement(ctx context.Context, tx *model.Transaction) {
	if p.publisher == nil || tx.Product == nil {
		return
	}
	event := StockMovementRecorded{
		Type:              EventStockMovementRecorded,
		TransactionID:     tx.ID,
		ProductID:         tx.ProductID,
		ProductName:       tx.Product.Name,
		TransactionType:   string(tx.TransactionType),
		Quantity:          tx.Quantity,
		ResultingStock:    tx.Product.CurrentStock,
		MinStockThreshold: tx.Product.MinStockThreshold,
		OccurredAt:        tx.TransactionDate,
	}
	if err := p.publisher.Publish(ctx, tx.ProductID, event); err != nil {
		log.Printf("[Inventory] failed to publish movement event for product %s: %v", tx.ProductID, err)
	}
}
