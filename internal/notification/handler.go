package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/inventory-keeper/internal/inventory"
)

// AlertSender sends low-stock alerts. *email.Service satisfies it.
type AlertSender interface {
	SendLowStockAlert(to, productName string, currentStock, threshold int) error
}

// Handler watches stock-movement events and raises low-stock alerts.
type Handler struct {
	sender  AlertSender
	alertTo string
}

// NewHandler creates a new notification handler
func NewHandler(sender AlertSender, alertTo string) *Handler {
	return &Handler{sender: sender, alertTo: alertTo}
}

// HandleEvent processes one event from the bus. Only movements that
// leave the product at or below its threshold produce an alert.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event inventory.StockMovementRecorded
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	if event.Type != inventory.EventStockMovementRecorded {
		return nil
	}

	if event.ResultingStock > event.MinStockThreshold {
		return nil
	}

	log.Printf("[Notifier] Low stock for product %s (%s): %d <= %d",
		event.ProductID, event.ProductName, event.ResultingStock, event.MinStockThreshold)

	if err := h.sender.SendLowStockAlert(h.alertTo, event.ProductName, event.ResultingStock, event.MinStockThreshold); err != nil {
		log.Printf("[Notifier] Failed to send low-stock alert for %s: %v", event.ProductID, err)
		return err
	}

	log.Printf("[Notifier] Low-stock alert sent for product %s", event.ProductID)
	return nil
}
