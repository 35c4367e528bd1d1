package app

import (
	"context"

	"github.com/petalworks/shop-miniapp/internal/analytics"
	"github.com/petalworks/shop-miniapp/internal/catalog"
	pkgerrors "github.com/petalworks/shop-miniapp/pkg/errors"
)

// NavigateTo swaps the visible view, records the previous one, updates the
// host chrome, and runs the view's entry action: entering the cart reloads
// it in full, entering checkout re-renders the draft. Leaving checkout
// discards the draft and any confirmation.
func (a *App) NavigateTo(ctx context.Context, view View) {
	ctx = a.logger.WithView(ctx, string(view))

	a.mu.Lock()
	leavingCheckout := a.state.view == ViewCheckout && view != ViewCheckout
	a.state.previousView = a.state.view
	a.state.view = view
	a.epoch++
	if leavingCheckout {
		a.draft.Reset()
		a.state.confirmation = nil
	}
	a.mu.Unlock()

	a.applyChrome(view)

	switch view {
	case ViewCart:
		if _, err := a.cart.Load(ctx); err != nil {
			a.logger.Error(ctx, "cart reload on entry failed", err)
			a.notifier.Toast(pkgerrors.UserMessage(err))
		}
	case ViewCheckout:
		// Draft re-render only; the summary projects the cached cart.
	}

	a.render()
}

// GoBack follows the fixed two-level back map: product detail returns to
// the catalog, checkout returns to the cart, everything else lands on the
// catalog. Back presses from the catalog are no-ops.
func (a *App) GoBack(ctx context.Context) {
	a.mu.Lock()
	current := a.state.view
	a.mu.Unlock()

	switch current {
	case ViewCatalog:
		return
	case ViewProductDetail:
		a.NavigateTo(ctx, ViewCatalog)
	case ViewCheckout:
		a.NavigateTo(ctx, ViewCart)
	default:
		a.NavigateTo(ctx, ViewCatalog)
	}
}

// SelectProduct loads a product with its per-store availability and enters
// the detail view. An entry failure is never left half-rendered: it
// surfaces a toast and forces the catalog. The view event is recorded
// best-effort. A load resolving after the user has navigated elsewhere is
// dropped.
func (a *App) SelectProduct(ctx context.Context, productID int64) error {
	epoch := a.currentEpoch()

	product, err := a.catalog.GetProduct(ctx, productID)
	if err == nil {
		var availability []catalog.Availability
		availability, err = a.catalog.GetAvailability(ctx, productID)
		if err == nil {
			a.mu.Lock()
			stale := a.epoch != epoch
			if !stale {
				a.state.selectedProduct = product
				a.state.availability = availability
			}
			a.mu.Unlock()
			if stale {
				return nil
			}

			userID, _ := a.userID()
			a.analytics.Record(ctx, analytics.Event{
				EventType: analytics.EventProductView,
				UserID:    userID,
				ProductID: productID,
			})
			a.NavigateTo(ctx, ViewProductDetail)
			return nil
		}
	}

	a.logger.Error(ctx, "product detail load failed", err)
	a.notifier.Toast(pkgerrors.UserMessage(err))
	a.NavigateTo(ctx, ViewCatalog)
	return err
}

// applyChrome syncs host button state with the target view. Every view
// hides the main button by default; only checkout re-shows it, bound to
// submit. The back button tracks the two views that have somewhere to go
// back to.
func (a *App) applyChrome(view View) {
	a.bridge.OffMainButton()
	a.bridge.HideMainButton()

	switch view {
	case ViewProductDetail:
		a.bridge.ShowBackButton()
	case ViewCheckout:
		a.bridge.ShowBackButton()
		a.bridge.SetMainButtonText("Place order")
		a.bridge.OnMainButton(func() {
			a.SubmitOrder(context.Background())
		})
		a.bridge.EnableMainButton()
		a.bridge.ShowMainButton()
	default:
		a.bridge.HideBackButton()
	}
}

func (a *App) userID() (int64, bool) {
	return a.bridge.UserID()
}
