package cart

// CartItem is one server-owned line in the cart. Product name and price are
// snapshotted onto the line so the cart renders without catalog lookups.
// Quantity never falls to 0; dropping below 1 removes the line instead.
type CartItem struct {
	ID           int64  `json:"id"`
	CartID       int64  `json:"cart_id"`
	ProductID    int64  `json:"product_id"`
	ProductName  string `json:"product_name"`
	ProductPrice int64  `json:"product_price"`
	Quantity     int    `json:"quantity"`
}

// Cart is the client's cache of the server-owned per-user cart. Item order
// is display order. The copy has no authority: every mutation is a remote
// round trip followed by a badge update or a full reload.
type Cart struct {
	ID     int64      `json:"id"`
	UserID int64      `json:"user_id"`
	Items  []CartItem `json:"items"`
}

// TotalQuantity is the badge value: the sum of quantities over all lines.
func (c *Cart) TotalQuantity() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Subtotal is the display total in integer currency units. The server
// recomputes the authoritative amount at order creation.
func (c *Cart) Subtotal() int64 {
	if c == nil {
		return 0
	}
	var total int64
	for _, item := range c.Items {
		total += item.ProductPrice * int64(item.Quantity)
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// ItemInput is the payload posted when adding a line.
type ItemInput struct {
	ProductID    int64  `json:"product_id"`
	ProductName  string `json:"product_name"`
	ProductPrice int64  `json:"product_price"`
	Quantity     int    `json:"quantity"`
}
