package app

import (
	"context"
	"strings"

	"github.com/petalworks/shop-miniapp/internal/catalog"
	"github.com/petalworks/shop-miniapp/internal/checkout"
	pkgerrors "github.com/petalworks/shop-miniapp/pkg/errors"
)

// SetDeliveryType switches the checkout branch. The other branch's inputs
// stay in the draft, so toggling back restores what the user had entered.
func (a *App) SetDeliveryType(deliveryType checkout.DeliveryType) {
	a.mu.Lock()
	a.draft.SetDeliveryType(deliveryType)
	a.mu.Unlock()
	a.render()
}

// SelectStore picks the pickup store.
func (a *App) SelectStore(storeID int64) {
	a.mu.Lock()
	a.draft.StoreID = &storeID
	a.mu.Unlock()
	a.render()
}

// SetPickupDate sets the pickup date (YYYY-MM-DD). Validation happens at
// submission so partial typing never produces toasts.
func (a *App) SetPickupDate(date string) {
	a.mu.Lock()
	a.draft.PickupDate = strings.TrimSpace(date)
	a.mu.Unlock()
	a.render()
}

// SetPickupTime sets the pickup time-of-day (HH:MM).
func (a *App) SetPickupTime(timeOfDay string) {
	a.mu.Lock()
	a.draft.PickupTime = strings.TrimSpace(timeOfDay)
	a.mu.Unlock()
	a.render()
}

// SetAddress sets the delivery address.
func (a *App) SetAddress(address string) {
	a.mu.Lock()
	a.draft.Address = address
	a.mu.Unlock()
	a.render()
}

// Stores returns the pickup store list for checkout step 3, lazily loaded
// once and cached for the session.
func (a *App) Stores(ctx context.Context) ([]catalog.Store, error) {
	stores, err := a.catalog.ListStores(ctx)
	if err != nil {
		a.notifier.Toast(pkgerrors.UserMessage(err))
		return nil, err
	}
	return stores, nil
}

// SubmitOrder runs the one irreversible write of the flow. On success the
// cached cart and draft are emptied, the badge zeroes, and the checkout
// view switches to the confirmation carrying the server's order id. On
// failure everything is left untouched for a retry.
func (a *App) SubmitOrder(ctx context.Context) error {
	userID, ok := a.userID()
	if !ok {
		err := pkgerrors.New(pkgerrors.CodeNoUser, "sign in through the chat app to place an order")
		a.notifier.Toast(pkgerrors.UserMessage(err))
		return err
	}

	a.mu.Lock()
	draft := a.draft
	a.mu.Unlock()

	order, err := a.checkout.Submit(ctx, userID, a.cart.Cart(), draft)
	if err != nil {
		a.notifier.Toast(pkgerrors.UserMessage(err))
		return err
	}

	a.mu.Lock()
	a.state.confirmation = order
	a.draft.Reset()
	a.mu.Unlock()
	a.cart.Reset()

	a.notifier.Success("Order placed")
	a.render()
	return nil
}
