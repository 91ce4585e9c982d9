package inventory

import "time"

// EventStockMovementRecorded is the event type published after every
// applied movement.
const EventStockMovementRecorded = "StockMovementRecorded"

// StockMovementRecorded is emitted on the event bus once a movement has
// been durably applied. ResultingStock and MinStockThreshold let
// consumers detect low-stock conditions without a store round trip.
type StockMovementRecorded struct {
	Type              string    `json:"type"`
	TransactionID     string    `json:"transaction_id"`
	ProductID         string    `json:"product_id"`
	ProductName       string    `json:"product_name"`
	TransactionType   string    `json:"transaction_type"`
	Quantity          int       `json:"quantity"`
	ResultingStock    int       `json:"resulting_stock"`
	MinStockThreshold int       `json:"min_stock_threshold"`
	OccurredAt        time.Time `json:"occurred_at"`
}
