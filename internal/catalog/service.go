package catalog

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

type gatewayClient interface {
	Get(ctx context.Context, path string, out any) error
}

// Service loads catalog data. Pure read-through: the only local state is
// the session-scoped store list cache.
type Service interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListProducts(ctx context.Context, categoryID *int64) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	GetAvailability(ctx context.Context, productID int64) ([]Availability, error)
	ListStores(ctx context.Context) ([]Store, error)
}

type service struct {
	gateway gatewayClient

	mu           sync.Mutex
	stores       []Store
	storesLoaded bool
}

// NewService builds a catalog loader over the gateway.
func NewService(gateway gatewayClient) (Service, error) {
	if gateway == nil {
		return nil, fmt.Errorf("gateway required")
	}
	return &service{gateway: gateway}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := s.gateway.Get(ctx, "/catalog/categories/", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *service) ListProducts(ctx context.Context, categoryID *int64) ([]Product, error) {
	path := "/catalog/products/"
	if categoryID != nil {
		path += "?category_id=" + strconv.FormatInt(*categoryID, 10)
	}
	var products []Product
	if err := s.gateway.Get(ctx, path, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var product Product
	path := fmt.Sprintf("/catalog/products/%d/", id)
	if err := s.gateway.Get(ctx, path, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *service) GetAvailability(ctx context.Context, productID int64) ([]Availability, error) {
	var availability []Availability
	path := fmt.Sprintf("/catalog/products/%d/availability/", productID)
	if err := s.gateway.Get(ctx, path, &availability); err != nil {
		return nil, err
	}
	return availability, nil
}

// ListStores returns the store list, fetching it at most once per session.
// A fetch failure is returned without poisoning the cache so the next call
// retries.
func (s *service) ListStores(ctx context.Context) ([]Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.storesLoaded {
		return s.stores, nil
	}

	var stores []Store
	if err := s.gateway.Get(ctx, "/catalog/stores/", &stores); err != nil {
		return nil, err
	}
	s.stores = stores
	s.storesLoaded = true
	return s.stores, nil
}
