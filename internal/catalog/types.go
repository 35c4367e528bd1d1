package catalog

// Category is a server-owned catalog grouping, read-only to the client.
type Category struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// Product is a server-owned catalog entry. Price is in integer currency
// units; the client never does fractional money arithmetic.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Price       int64   `json:"price"`
	ImageURL    *string `json:"image_url,omitempty"`
	CategoryID  int64   `json:"category_id"`
}

// Store is a pickup location. The list is cached client-side once per
// session.
type Store struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Address   *string `json:"address,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Phone     *string `json:"phone,omitempty"`
}

// Availability is the stock of one product at one store. Fetched per
// product view, never cached.
type Availability struct {
	ProductID int64 `json:"product_id"`
	StoreID   int64 `json:"store_id"`
	Quantity  int   `json:"quantity"`
	Store     Store `json:"store"`
}

// InStock reports whether any store has stock.
func InStock(availability []Availability) bool {
	for _, entry := range availability {
		if entry.Quantity > 0 {
			return true
		}
	}
	return false
}
