package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid"

	"github.com/vasiliy-maslov/shop-orders/internal/order"
)

const (
	EventOrderCreated = "OrderCreated"

	eventVersion = 1
)

type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

type OrderItemPayload struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	LinePrice string `json:"line_price"`
}

type OrderCreatedPayload struct {
	OrderID string             `json:"order_id"`
	UserID  string             `json:"user_id"`
	Status  string             `json:"status"`
	Total   string             `json:"total"`
	Items   []OrderItemPayload `json:"items"`
}

// NewOrderCreated wraps a placed order into a versioned event envelope.
func NewOrderCreated(o *order.Order, producer string) (Envelope, error) {
	items := make([]OrderItemPayload, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemPayload{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			LinePrice: it.Price.String(),
		})
	}

	payload, err := json.Marshal(OrderCreatedPayload{
		OrderID: o.ID.String(),
		UserID:  o.UserID.String(),
		Status:  o.Status.String(),
		Total:   o.Total.String(),
		Items:   items,
	})
	if err != nil {
		return Envelope{}, fmt.Errorf("events: failed to marshal payload: %w", err)
	}

	eventID, err := uuid.NewV4()
	if err != nil {
		return Envelope{}, fmt.Errorf("events: failed to generate event ID: %w", err)
	}

	return Envelope{
		EventID:      eventID.String(),
		EventType:    EventOrderCreated,
		EventVersion: eventVersion,
		OccurredAt:   time.Now().UTC(),
		Producer:     producer,
		Payload:      payload,
	}, nil
}
