package analytics

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/petalworks/shop-miniapp/pkg/logger"
)

type gatewayClient interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

// Event is one behavioral event sent to the analytics service.
type Event struct {
	EventType string `json:"event_type"`
	UserID    int64  `json:"user_id,omitempty"`
	ProductID int64  `json:"product_id,omitempty"`
}

const EventProductView = "product_view"

// Recorder is a best-effort notification port. Record returns immediately;
// delivery happens in the background and errors are logged, never
// propagated: analytics must not affect primary flows.
type Recorder interface {
	Record(ctx context.Context, event Event)
	// Flush waits for in-flight deliveries. Call before shutdown.
	Flush()
}

type recorder struct {
	gateway gatewayClient
	logger  *logger.Logger
	wg      sync.WaitGroup
}

// NewRecorder builds the fire-and-forget analytics recorder.
func NewRecorder(gateway gatewayClient, logg *logger.Logger) (Recorder, error) {
	if gateway == nil {
		return nil, fmt.Errorf("gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &recorder{gateway: gateway, logger: logg}, nil
}

// Record dispatches the event on its own goroutine so a slow analytics
// backend never stalls the caller. The delivery outlives the caller's
// context; cancellation of the primary flow does not drop the event.
func (r *recorder) Record(ctx context.Context, event Event) {
	ctx = context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.gateway.Do(ctx, http.MethodPost, "/analytics/events/", event, nil); err != nil {
			r.logger.Warn(r.logger.WithField(ctx, "event_type", event.EventType),
				"analytics event dropped: "+err.Error())
		}
	}()
}

func (r *recorder) Flush() {
	r.wg.Wait()
}

// Nop discards every event. Useful for tests and headless runs.
type Nop struct{}

func (Nop) Record(context.Context, Event) {}
func (Nop) Flush()                        {}
