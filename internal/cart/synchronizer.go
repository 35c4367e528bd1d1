package cart

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	pkgerrors "github.com/petalworks/shop-miniapp/pkg/errors"
	"github.com/petalworks/shop-miniapp/pkg/logger"
)

type gatewayClient interface {
	Do(ctx context.Context, method, path string, body, out any) error
	Get(ctx context.Context, path string, out any) error
}

// UserResolver yields the current chat user, reporting false when the host
// provides none. Without a user every mutation path is disabled and the
// cart renders as an explicit empty state.
type UserResolver func() (int64, bool)

// Synchronizer owns the client's cached copy of the server cart and the
// derived badge count. Mutations go through the gateway; the badge is
// republished after every mutation that succeeds.
type Synchronizer struct {
	gateway gatewayClient
	logger  *logger.Logger
	user    UserResolver
	onBadge func(count int)

	mu      sync.Mutex
	cart    *Cart
	badge   int
	pending map[string]struct{}
	wg      sync.WaitGroup
}

// Params configure the synchronizer. OnBadge may be nil.
type Params struct {
	Gateway gatewayClient
	Logger  *logger.Logger
	User    UserResolver
	OnBadge func(count int)
}

// NewSynchronizer builds the cart synchronizer.
func NewSynchronizer(params Params) (*Synchronizer, error) {
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.User == nil {
		return nil, fmt.Errorf("user resolver required")
	}
	onBadge := params.OnBadge
	if onBadge == nil {
		onBadge = func(int) {}
	}
	return &Synchronizer{
		gateway: params.Gateway,
		logger:  params.Logger,
		user:    params.User,
		onBadge: onBadge,
		pending: map[string]struct{}{},
	}, nil
}

// Cart returns the cached copy. Treat it as stale until the next Load.
func (s *Synchronizer) Cart() *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

// Badge returns the last published badge count.
func (s *Synchronizer) Badge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.badge
}

// Load fetches the user's cart and replaces the cached copy. Absence of a
// resolvable user yields an explicit empty cart, not an error.
func (s *Synchronizer) Load(ctx context.Context) (*Cart, error) {
	userID, ok := s.user()
	if !ok {
		empty := &Cart{}
		s.publish(empty)
		return empty, nil
	}

	var loaded Cart
	path := fmt.Sprintf("/orders/cart/%d/", userID)
	if err := s.gateway.Get(s.logger.WithUserID(ctx, userID), path, &loaded); err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			empty := &Cart{UserID: userID}
			s.publish(empty)
			return empty, nil
		}
		return nil, err
	}
	s.publish(&loaded)
	return &loaded, nil
}

// AddItem posts a new line. On success the badge is refreshed on its own
// goroutine so the add feedback stays immediate; the full cart is re-synced
// the next time the cart view loads.
func (s *Synchronizer) AddItem(ctx context.Context, input ItemInput) error {
	userID, ok := s.user()
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNoUser, "sign in through the chat app to add items")
	}
	if input.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	key := fmt.Sprintf("product:%d", input.ProductID)
	if !s.begin(key) {
		return pkgerrors.New(pkgerrors.CodeConflict, "this product is already being updated")
	}
	defer s.end(key)

	path := fmt.Sprintf("/orders/cart/%d/items/", userID)
	if err := s.gateway.Do(s.logger.WithUserID(ctx, userID), http.MethodPost, path, input, nil); err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.RefreshBadge(context.WithoutCancel(ctx)); err != nil {
			s.logger.Error(ctx, "badge refresh after add failed", err)
		}
	}()
	return nil
}

// Flush waits for any in-flight background badge refreshes to settle.
func (s *Synchronizer) Flush() {
	s.wg.Wait()
}

// UpdateItemQuantity sets a line's quantity, which must stay at least 1;
// the caller removes the line instead when decrementing below that. On
// success the full cart is reloaded so totals are exact.
func (s *Synchronizer) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) (*Cart, error) {
	userID, ok := s.user()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNoUser, "sign in through the chat app to change the cart")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	key := fmt.Sprintf("item:%d", itemID)
	if !s.begin(key) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "this item is already being updated")
	}
	defer s.end(key)

	path := fmt.Sprintf("/orders/cart/%d/items/%d/", userID, itemID)
	body := struct {
		Quantity int `json:"quantity"`
	}{Quantity: quantity}
	if err := s.gateway.Do(s.logger.WithUserID(ctx, userID), http.MethodPut, path, body, nil); err != nil {
		return nil, err
	}
	return s.Load(ctx)
}

// RemoveItem deletes a line, then reloads the cart and republishes the
// badge.
func (s *Synchronizer) RemoveItem(ctx context.Context, itemID int64) (*Cart, error) {
	userID, ok := s.user()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNoUser, "sign in through the chat app to change the cart")
	}

	key := fmt.Sprintf("item:%d", itemID)
	if !s.begin(key) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "this item is already being updated")
	}
	defer s.end(key)

	path := fmt.Sprintf("/orders/cart/%d/items/%d/", userID, itemID)
	if err := s.gateway.Do(s.logger.WithUserID(ctx, userID), http.MethodDelete, path, nil, nil); err != nil {
		return nil, err
	}
	return s.Load(ctx)
}

// RefreshBadge fetches the cart independently and recomputes the badge. A
// missing cart counts as zero, not an error.
func (s *Synchronizer) RefreshBadge(ctx context.Context) error {
	userID, ok := s.user()
	if !ok {
		s.setBadge(0)
		return nil
	}

	var loaded Cart
	path := fmt.Sprintf("/orders/cart/%d/", userID)
	if err := s.gateway.Get(ctx, path, &loaded); err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			s.setBadge(0)
			return nil
		}
		return err
	}
	s.setBadge(loaded.TotalQuantity())
	return nil
}

// Reset drops the cached cart and zeroes the badge. Used after a
// successful order creation empties the server cart.
func (s *Synchronizer) Reset() {
	s.publish(&Cart{})
}

func (s *Synchronizer) publish(cart *Cart) {
	s.mu.Lock()
	s.cart = cart
	s.badge = cart.TotalQuantity()
	badge := s.badge
	s.mu.Unlock()
	s.onBadge(badge)
}

func (s *Synchronizer) setBadge(count int) {
	s.mu.Lock()
	s.badge = count
	s.mu.Unlock()
	s.onBadge(count)
}

// begin marks a per-item mutation as in flight. Overlapping mutations on
// the same line are rejected instead of racing; the last-write-wins
// ambiguity of concurrent updates is not worth the broken totals.
func (s *Synchronizer) begin(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, inFlight := s.pending[key]; inFlight {
		return false
	}
	s.pending[key] = struct{}{}
	return true
}

func (s *Synchronizer) end(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, key)
}
