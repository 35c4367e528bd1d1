package app

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/petalworks/shop-miniapp/internal/analytics"
	"github.com/petalworks/shop-miniapp/internal/cart"
	"github.com/petalworks/shop-miniapp/internal/catalog"
	"github.com/petalworks/shop-miniapp/internal/checkout"
	"github.com/petalworks/shop-miniapp/internal/hostbridge"
	"github.com/petalworks/shop-miniapp/internal/orders"
	pkgerrors "github.com/petalworks/shop-miniapp/pkg/errors"
	"github.com/petalworks/shop-miniapp/pkg/logger"
)

// App is the top-level controller: it owns the application state, drives
// navigation, and dispatches into the catalog loader, cart synchronizer,
// and checkout orchestrator. All methods are safe for concurrent use; the
// internal mutex stands in for the single UI thread of the original
// runtime, and network calls happen outside it so views stay interactive
// while requests are in flight.
type App struct {
	bridge    hostbridge.Bridge
	catalog   catalog.Service
	cart      *cart.Synchronizer
	orders    orders.Service
	checkout  *checkout.Orchestrator
	analytics analytics.Recorder
	logger    *logger.Logger
	renderer  Renderer
	notifier  Notifier

	mu    sync.Mutex
	state state
	draft *checkout.Draft
	// epoch advances on every navigation; async loads capture it at start
	// and drop their writes when the user has since moved elsewhere.
	epoch uint64
}

// Params wire the app together.
type Params struct {
	Bridge    hostbridge.Bridge
	Catalog   catalog.Service
	Cart      *cart.Synchronizer
	Orders    orders.Service
	Checkout  *checkout.Orchestrator
	Analytics analytics.Recorder
	Logger    *logger.Logger
	Renderer  Renderer
	Notifier  Notifier
}

// New builds the controller. Renderer and Notifier default to no-ops so
// the core runs headless.
func New(params Params) (*App, error) {
	if params.Bridge == nil {
		return nil, fmt.Errorf("host bridge required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart synchronizer required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if params.Checkout == nil {
		return nil, fmt.Errorf("checkout orchestrator required")
	}
	if params.Analytics == nil {
		params.Analytics = analytics.Nop{}
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Renderer == nil {
		params.Renderer = NopRenderer{}
	}
	if params.Notifier == nil {
		params.Notifier = NopNotifier{}
	}

	a := &App{
		bridge:    params.Bridge,
		catalog:   params.Catalog,
		cart:      params.Cart,
		orders:    params.Orders,
		checkout:  params.Checkout,
		analytics: params.Analytics,
		logger:    params.Logger,
		renderer:  params.Renderer,
		notifier:  params.Notifier,
		draft:     checkout.NewDraft(nil),
	}
	a.state.view = ViewCatalog
	a.state.previousView = ViewCatalog
	return a, nil
}

// Initialize performs the initial parallel data load and signals the host
// that the first paint is ready. A failure is fatal to the first paint:
// the caller shows a full-screen error and re-runs Initialize from
// scratch on retry.
func (a *App) Initialize(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)

	var categories []catalog.Category
	var products []catalog.Product

	group.Go(func() error {
		loaded, err := a.catalog.ListCategories(groupCtx)
		if err != nil {
			return err
		}
		categories = loaded
		return nil
	})
	group.Go(func() error {
		loaded, err := a.catalog.ListProducts(groupCtx, nil)
		if err != nil {
			return err
		}
		products = loaded
		return nil
	})
	group.Go(func() error {
		return a.cart.RefreshBadge(groupCtx)
	})

	if err := group.Wait(); err != nil {
		a.logger.Error(ctx, "initialization failed", err)
		return err
	}

	a.mu.Lock()
	a.state.categories = categories
	a.state.products = products
	a.state.initialized = true
	a.mu.Unlock()

	a.bridge.Ready()
	a.bridge.Expand()
	a.bridge.OnBackButton(func() {
		a.GoBack(context.WithoutCancel(ctx))
	})
	a.applyChrome(ViewCatalog)
	a.render()
	return nil
}

// Snapshot returns a copy of the current state.
func (a *App) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.snapshot(a.cart.Cart(), a.cart.Badge(), a.draft)
}

// SelectCategory filters the product grid; nil clears the filter.
func (a *App) SelectCategory(ctx context.Context, categoryID *int64) error {
	epoch := a.currentEpoch()

	products, err := a.catalog.ListProducts(ctx, categoryID)
	if err != nil {
		a.notifier.Toast(pkgerrors.UserMessage(err))
		return err
	}

	a.mu.Lock()
	if a.epoch == epoch {
		a.state.products = products
		a.state.selectedCategory = categoryID
	}
	a.mu.Unlock()
	a.render()
	return nil
}

// AddToCart posts one line for the given product. Feedback is optimistic:
// the badge refreshes in the background while the user keeps browsing.
func (a *App) AddToCart(ctx context.Context, product catalog.Product, quantity int) error {
	err := a.cart.AddItem(ctx, cart.ItemInput{
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductPrice: product.Price,
		Quantity:     quantity,
	})
	if err != nil {
		a.notifier.Toast(pkgerrors.UserMessage(err))
		return err
	}
	a.notifier.Success("Added to cart")
	a.render()
	return nil
}

// ChangeItemQuantity applies a +1/-1 style adjustment. Dropping below one
// removes the line instead; a quantity-0 line never exists.
func (a *App) ChangeItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	var err error
	if quantity < 1 {
		_, err = a.cart.RemoveItem(ctx, itemID)
	} else {
		_, err = a.cart.UpdateItemQuantity(ctx, itemID, quantity)
	}
	if err != nil {
		a.notifier.Toast(pkgerrors.UserMessage(err))
		return err
	}
	a.render()
	return nil
}

// RemoveItem deletes a cart line.
func (a *App) RemoveItem(ctx context.Context, itemID int64) error {
	if _, err := a.cart.RemoveItem(ctx, itemID); err != nil {
		a.notifier.Toast(pkgerrors.UserMessage(err))
		return err
	}
	a.render()
	return nil
}

// OrderHistory lists the current user's past orders, newest first. An
// unresolved user yields an empty history without a request.
func (a *App) OrderHistory(ctx context.Context) ([]checkout.Order, error) {
	history, err := a.orders.ListForUser(ctx)
	if err != nil {
		a.notifier.Toast(pkgerrors.UserMessage(err))
		return nil, err
	}
	return history, nil
}

func (a *App) render() {
	a.renderer.Render(a.Snapshot())
}

func (a *App) currentEpoch() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.epoch
}
