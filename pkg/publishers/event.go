package publishers

import (
	"time"

	"github.com/samvad-hq/upgates-go/pkg/upgates"
)

// Event represents the payload published downstream for one observed order revision.
type Event struct {
	OrderNumber    string        `json:"order_number"`
	OrderID        int64         `json:"order_id,omitempty"`
	Status         string        `json:"status,omitempty"`
	StatusID       int64         `json:"status_id,omitempty"`
	LastUpdateTime string        `json:"last_update_time,omitempty"`
	Revision       string        `json:"revision"`
	Order          upgates.Order `json:"order"`
	CollectedAt    time.Time     `json:"collected_at"`
}

// NewOrderEvent constructs an Event for the given order.
func NewOrderEvent(order upgates.Order) Event {
	return Event{
		OrderNumber:    order.OrderNumber,
		OrderID:        order.OrderID,
		Status:         order.Status,
		StatusID:       order.StatusID,
		LastUpdateTime: order.LastUpdateTime,
		Revision:       Revision(order),
		Order:          order,
		CollectedAt:    time.Now().UTC(),
	}
}

// Revision identifies one observed state of an order.
func Revision(order upgates.Order) string {
	return order.OrderNumber + "@" + order.LastUpdateTime
}

// attributes are the routing attributes attached to queue and topic messages.
func (e Event) attributes() map[string]string {
	attrs := map[string]string{"order_number": e.OrderNumber}
	if e.Status != "" {
		attrs["status"] = e.Status
	}
	return attrs
}
