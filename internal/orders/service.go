package orders

import (
	"context"
	"fmt"

	"github.com/petalworks/shop-miniapp/internal/checkout"
)

type gatewayClient interface {
	Get(ctx context.Context, path string, out any) error
}

// UserResolver yields the current chat user, false when there is none.
type UserResolver func() (int64, bool)

// Service reads back created orders: the confirmation screen and the
// order-history listing. Orders are immutable to the client.
type Service interface {
	Get(ctx context.Context, orderID int64) (*checkout.Order, error)
	ListForUser(ctx context.Context) ([]checkout.Order, error)
}

type service struct {
	gateway gatewayClient
	user    UserResolver
}

// NewService builds the order read-back service.
func NewService(gateway gatewayClient, user UserResolver) (Service, error) {
	if gateway == nil {
		return nil, fmt.Errorf("gateway required")
	}
	if user == nil {
		return nil, fmt.Errorf("user resolver required")
	}
	return &service{gateway: gateway, user: user}, nil
}

func (s *service) Get(ctx context.Context, orderID int64) (*checkout.Order, error) {
	var order checkout.Order
	path := fmt.Sprintf("/orders/orders/%d/", orderID)
	if err := s.gateway.Get(ctx, path, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListForUser returns the current user's orders, newest first per the
// backend ordering. Without a resolvable user it returns an empty list
// and issues no request. The history route carries no trailing slash;
// the backend routes it that way, unlike the rest of the order service.
func (s *service) ListForUser(ctx context.Context) ([]checkout.Order, error) {
	userID, ok := s.user()
	if !ok {
		return nil, nil
	}
	var orders []checkout.Order
	path := fmt.Sprintf("/orders/orders/user/%d", userID)
	if err := s.gateway.Get(ctx, path, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
