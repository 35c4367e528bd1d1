package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/petalworks/shop-miniapp/pkg/logger"
)

type stubGateway struct {
	mu     sync.Mutex
	paths  []string
	bodies []any
	err    error
	block  chan struct{}
}

func (s *stubGateway) Do(ctx context.Context, _, path string, body, _ any) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, path)
	s.bodies = append(s.bodies, body)
	return s.err
}

func newTestRecorder(t *testing.T, gw *stubGateway) Recorder {
	t.Helper()
	r, err := NewRecorder(gw, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestRecordPostsEvent(t *testing.T) {
	gw := &stubGateway{}
	r := newTestRecorder(t, gw)

	r.Record(context.Background(), Event{EventType: EventProductView, UserID: 7, ProductID: 4})
	r.Flush()

	if len(gw.paths) != 1 || gw.paths[0] != "/analytics/events/" {
		t.Fatalf("unexpected requests: %v", gw.paths)
	}
	event := gw.bodies[0].(Event)
	if event.EventType != EventProductView || event.ProductID != 4 {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestRecordDoesNotBlockCaller(t *testing.T) {
	gw := &stubGateway{block: make(chan struct{})}
	r := newTestRecorder(t, gw)

	// the gateway is held until well after Record returns; a synchronous
	// delivery would hang here
	r.Record(context.Background(), Event{EventType: EventProductView, ProductID: 4})

	close(gw.block)
	r.Flush()

	if len(gw.paths) != 1 {
		t.Fatalf("expected the event to be delivered, got %v", gw.paths)
	}
}

func TestRecordSurvivesCallerCancellation(t *testing.T) {
	gw := &stubGateway{block: make(chan struct{})}
	r := newTestRecorder(t, gw)

	ctx, cancel := context.WithCancel(context.Background())
	r.Record(ctx, Event{EventType: EventProductView, ProductID: 4})
	cancel()

	close(gw.block)
	r.Flush()

	if len(gw.paths) != 1 {
		t.Fatalf("event must outlive the primary flow's context, got %v", gw.paths)
	}
}

func TestRecordSwallowsGatewayErrors(t *testing.T) {
	gw := &stubGateway{err: errors.New("analytics service down")}
	r := newTestRecorder(t, gw)

	// must not panic or surface the failure
	r.Record(context.Background(), Event{EventType: EventProductView})
	r.Flush()
}
