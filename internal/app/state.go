package app

import (
	"slices"

	"github.com/petalworks/shop-miniapp/internal/cart"
	"github.com/petalworks/shop-miniapp/internal/catalog"
	"github.com/petalworks/shop-miniapp/internal/checkout"
)

// View identifies one of the four app views.
type View string

const (
	ViewCatalog       View = "catalog"
	ViewProductDetail View = "productDetail"
	ViewCart          View = "cart"
	ViewCheckout      View = "checkout"
)

// Snapshot is a copy of the application state handed to the render layer
// after every change. Rendering is a pure function of a snapshot; the
// render layer never mutates shared state through it.
type Snapshot struct {
	View         View
	PreviousView View

	Categories       []catalog.Category
	Products         []catalog.Product
	SelectedCategory *int64
	SelectedProduct  *catalog.Product
	Availability     []catalog.Availability

	Cart  cart.Cart
	Badge int

	Draft        checkout.Draft
	Confirmation *checkout.Order

	Initialized bool
}

// Renderer observes state changes. Implementations draw the current view
// from the snapshot alone (render-from-state, not incremental patching).
type Renderer interface {
	Render(Snapshot)
}

// Notifier surfaces user-facing notifications outside the main view.
type Notifier interface {
	Toast(message string)
	Success(message string)
}

// NopRenderer discards snapshots; the default for headless runs.
type NopRenderer struct{}

func (NopRenderer) Render(Snapshot) {}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Toast(string)   {}
func (NopNotifier) Success(string) {}

// state is the single mutable application state, owned by App and guarded
// by its mutex.
type state struct {
	view         View
	previousView View

	categories       []catalog.Category
	products         []catalog.Product
	selectedCategory *int64
	selectedProduct  *catalog.Product
	availability     []catalog.Availability

	confirmation *checkout.Order

	initialized bool
}

func (s *state) snapshot(c *cart.Cart, badge int, draft *checkout.Draft) Snapshot {
	snap := Snapshot{
		View:         s.view,
		PreviousView: s.previousView,
		Categories:   slices.Clone(s.categories),
		Products:     slices.Clone(s.products),
		Availability: slices.Clone(s.availability),
		Badge:        badge,
		Initialized:  s.initialized,
	}
	if s.confirmation != nil {
		order := *s.confirmation
		order.Items = slices.Clone(order.Items)
		snap.Confirmation = &order
	}
	if s.selectedCategory != nil {
		id := *s.selectedCategory
		snap.SelectedCategory = &id
	}
	if s.selectedProduct != nil {
		product := *s.selectedProduct
		snap.SelectedProduct = &product
	}
	if c != nil {
		snap.Cart = *c
		snap.Cart.Items = slices.Clone(c.Items)
	}
	if draft != nil {
		snap.Draft = *draft
	}
	return snap
}
