package checkout

import (
	"github.com/petalworks/shop-miniapp/internal/cart"
)

// OrderItemInput is the snapshot of one cart line at submission time.
type OrderItemInput struct {
	ProductID    int64  `json:"product_id" validate:"required"`
	ProductName  string `json:"product_name" validate:"required"`
	ProductPrice int64  `json:"product_price" validate:"gte=0"`
	Quantity     int    `json:"quantity" validate:"gte=1"`
}

// OrderInput is the order-creation payload. Branch fields are pointers so
// the inactive branch is omitted from the wire body entirely.
type OrderInput struct {
	UserID       int64            `json:"user_id" validate:"required"`
	DeliveryType DeliveryType     `json:"delivery_type" validate:"required,oneof=pickup delivery"`
	StoreID      *int64           `json:"store_id,omitempty"`
	PickupTime   *string          `json:"pickup_time,omitempty"`
	Address      *string          `json:"address,omitempty"`
	Items        []OrderItemInput `json:"items" validate:"min=1,dive"`
}

// OrderItem is a created order line as returned by the server.
type OrderItem struct {
	ID           int64  `json:"id"`
	OrderID      int64  `json:"order_id"`
	ProductID    int64  `json:"product_id"`
	ProductName  string `json:"product_name"`
	ProductPrice int64  `json:"product_price"`
	Quantity     int    `json:"quantity"`
}

// Order is the server-owned result of a submission, immutable to the
// client. TotalAmount is the authoritative total the confirmation screen
// and host payload use; the client-side summary total is display only.
type Order struct {
	ID           int64        `json:"id"`
	UserID       int64        `json:"user_id"`
	Status       string       `json:"status"`
	DeliveryType DeliveryType `json:"delivery_type"`
	Address      *string      `json:"address,omitempty"`
	PickupTime   *string      `json:"pickup_time,omitempty"`
	StoreID      *int64       `json:"store_id,omitempty"`
	TotalAmount  int64        `json:"total_amount"`
	Items        []OrderItem  `json:"items"`
}

// HostResult is the structured payload delivered to the host runtime after
// a successful order so the enclosing chat flow can close the mini-app and
// confirm the order.
type HostResult struct {
	Action       string       `json:"action"`
	OrderID      int64        `json:"order_id"`
	DeliveryType DeliveryType `json:"delivery_type"`
	Total        int64        `json:"total"`
}

// snapshotItems copies the cart lines into the submission payload.
func snapshotItems(c *cart.Cart) []OrderItemInput {
	if c == nil {
		return nil
	}
	items := make([]OrderItemInput, 0, len(c.Items))
	for _, line := range c.Items {
		items = append(items, OrderItemInput{
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			ProductPrice: line.ProductPrice,
			Quantity:     line.Quantity,
		})
	}
	return items
}
