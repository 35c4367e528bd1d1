package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

// stubGateway serves canned JSON per path and counts calls.
type stubGateway struct {
	responses map[string]string
	calls     map[string]int
	err       error
}

func newStubGateway(responses map[string]string) *stubGateway {
	return &stubGateway{responses: responses, calls: map[string]int{}}
}

func (s *stubGateway) Get(_ context.Context, path string, out any) error {
	s.calls[path]++
	if s.err != nil {
		return s.err
	}
	raw, ok := s.responses[path]
	if !ok {
		return errors.New("unexpected path " + path)
	}
	return json.Unmarshal([]byte(raw), out)
}

func TestNewServiceRequiresGateway(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error creating service without gateway")
	}
}

func TestListProductsFiltersByCategory(t *testing.T) {
	gw := newStubGateway(map[string]string{
		"/catalog/products/":               `[{"id":1,"name":"Rose","price":500,"category_id":1},{"id":2,"name":"Tulip","price":300,"category_id":2}]`,
		"/catalog/products/?category_id=2": `[{"id":2,"name":"Tulip","price":300,"category_id":2}]`,
	})
	svc, err := NewService(gw)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	all, err := svc.ListProducts(context.Background(), nil)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 products, got %d", len(all))
	}

	categoryID := int64(2)
	filtered, err := svc.ListProducts(context.Background(), &categoryID)
	if err != nil {
		t.Fatalf("list filtered products: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Name != "Tulip" {
		t.Fatalf("expected only Tulip, got %+v", filtered)
	}
}

func TestGetProductAndAvailability(t *testing.T) {
	gw := newStubGateway(map[string]string{
		"/catalog/products/5/":              `{"id":5,"name":"Peony","price":700,"category_id":1}`,
		"/catalog/products/5/availability/": `[{"product_id":5,"store_id":1,"quantity":3,"store":{"id":1,"name":"Center"}},{"product_id":5,"store_id":2,"quantity":0,"store":{"id":2,"name":"North"}}]`,
	})
	svc, err := NewService(gw)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	product, err := svc.GetProduct(context.Background(), 5)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Name != "Peony" || product.Price != 700 {
		t.Fatalf("unexpected product %+v", product)
	}

	availability, err := svc.GetAvailability(context.Background(), 5)
	if err != nil {
		t.Fatalf("get availability: %v", err)
	}
	if len(availability) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(availability))
	}
	if !InStock(availability) {
		t.Fatal("expected product in stock")
	}
	if InStock(availability[1:]) {
		t.Fatal("zero-quantity entry must not count as stock")
	}
}

func TestListStoresCachedOncePerSession(t *testing.T) {
	gw := newStubGateway(map[string]string{
		"/catalog/stores/": `[{"id":1,"name":"Center","latitude":55.75,"longitude":37.61}]`,
	})
	svc, err := NewService(gw)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	for i := 0; i < 3; i++ {
		stores, err := svc.ListStores(context.Background())
		if err != nil {
			t.Fatalf("list stores: %v", err)
		}
		if len(stores) != 1 || stores[0].Name != "Center" {
			t.Fatalf("unexpected stores %+v", stores)
		}
	}
	if gw.calls["/catalog/stores/"] != 1 {
		t.Fatalf("expected a single fetch, got %d", gw.calls["/catalog/stores/"])
	}
}

func TestListStoresFailureDoesNotPoisonCache(t *testing.T) {
	gw := newStubGateway(map[string]string{
		"/catalog/stores/": `[{"id":1,"name":"Center"}]`,
	})
	gw.err = errors.New("backend down")
	svc, err := NewService(gw)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.ListStores(context.Background()); err == nil {
		t.Fatal("expected error while backend down")
	}

	gw.err = nil
	stores, err := svc.ListStores(context.Background())
	if err != nil {
		t.Fatalf("list stores after recovery: %v", err)
	}
	if len(stores) != 1 {
		t.Fatalf("expected stores after recovery, got %+v", stores)
	}
	if gw.calls["/catalog/stores/"] != 2 {
		t.Fatalf("expected retry to hit the backend, got %d calls", gw.calls["/catalog/stores/"])
	}
}
