package checkout

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petalworks/shop-miniapp/internal/cart"
	"github.com/petalworks/shop-miniapp/internal/hostbridge"
	pkgerrors "github.com/petalworks/shop-miniapp/pkg/errors"
	"github.com/petalworks/shop-miniapp/pkg/logger"
)

// recordingBridge logs every host capability call in order.
type recordingBridge struct {
	mu    sync.Mutex
	calls []string
	sent  []string
}

func (r *recordingBridge) record(call string) {
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()
}

func (r *recordingBridge) bridge() hostbridge.Bridge {
	return hostbridge.New(&hostbridge.Funcs{
		ShowMainButtonFunc:         func() { r.record("show") },
		HideMainButtonFunc:         func() { r.record("hide") },
		EnableMainButtonFunc:       func() { r.record("enable") },
		DisableMainButtonFunc:      func() { r.record("disable") },
		ShowMainButtonProgressFunc: func() { r.record("progress_on") },
		HideMainButtonProgressFunc: func() { r.record("progress_off") },
		SendDataFunc: func(payload string) {
			r.record("send")
			r.mu.Lock()
			r.sent = append(r.sent, payload)
			r.mu.Unlock()
		},
	})
}

type stubOrderGateway struct {
	mu       sync.Mutex
	requests []string
	bodies   []any
	created  Order
	failNext error
	block    chan struct{}
	// blocked receives once when a request reaches the block gate, so a
	// test can wait until the submission is actually in flight.
	blocked chan struct{}
}

func (g *stubOrderGateway) Do(_ context.Context, method, path string, body, out any) error {
	if g.block != nil {
		if g.blocked != nil {
			g.blocked <- struct{}{}
		}
		<-g.block
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, method+" "+path)
	g.bodies = append(g.bodies, body)
	if g.failNext != nil {
		err := g.failNext
		g.failNext = nil
		return err
	}
	if out != nil {
		raw, err := json.Marshal(g.created)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, out)
	}
	return nil
}

func testCart() *cart.Cart {
	return &cart.Cart{Items: []cart.CartItem{
		{ID: 1, ProductID: 4, ProductName: "Peony bouquet", ProductPrice: 1000, Quantity: 2},
		{ID: 2, ProductID: 7, ProductName: "Tulip bundle", ProductPrice: 500, Quantity: 1},
	}}
}

func newTestOrchestrator(t *testing.T, gateway *stubOrderGateway, bridge hostbridge.Bridge) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(Params{
		Gateway: gateway,
		Bridge:  bridge,
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
	})
	require.NoError(t, err)
	return o
}

func TestValidateDraftReportsAllPickupFailuresTogether(t *testing.T) {
	draft := NewDraft(fixedClock("2024-05-01 09:00"))
	draft.PickupDate = ""

	err := ValidateDraft(&cart.Cart{}, draft)
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	message := pkgerrors.UserMessage(err)
	assert.Contains(t, message, "cart is empty")
	assert.Contains(t, message, "select a pickup store")
	assert.Contains(t, message, "select a pickup time")
	assert.Contains(t, message, "select a pickup date")
}

func TestValidateDraftRejectsPastPickupDate(t *testing.T) {
	draft := NewDraft(fixedClock("2024-05-01 09:00"))
	storeID := int64(3)
	draft.StoreID = &storeID
	draft.PickupTime = "14:30"
	draft.PickupDate = "2024-04-30"

	err := ValidateDraft(testCart(), draft)
	require.Error(t, err)
	assert.Contains(t, pkgerrors.UserMessage(err), "cannot be in the past")

	draft.PickupDate = "2024-05-01"
	assert.NoError(t, ValidateDraft(testCart(), draft), "today is the minimum, not yesterday")
}

func TestValidateDraftRequiresDeliveryAddress(t *testing.T) {
	draft := NewDraft(fixedClock("2024-05-01 09:00"))
	draft.SetDeliveryType(DeliveryCourier)
	draft.Address = "   "

	err := ValidateDraft(testCart(), draft)
	require.Error(t, err)
	assert.Contains(t, pkgerrors.UserMessage(err), "delivery address")

	draft.Address = "1 Rose Street"
	assert.NoError(t, ValidateDraft(testCart(), draft))
}

func TestSubmitRejectsInvalidDraftWithoutNetworkCall(t *testing.T) {
	gateway := &stubOrderGateway{}
	o := newTestOrchestrator(t, gateway, hostbridge.Noop{})

	_, err := o.Submit(context.Background(), 7, testCart(), NewDraft(fixedClock("2024-05-01 09:00")))
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	assert.Empty(t, gateway.requests, "validation failures never reach the wire")
}

func TestSubmitWithoutUserIsRejected(t *testing.T) {
	gateway := &stubOrderGateway{}
	o := newTestOrchestrator(t, gateway, hostbridge.Noop{})

	_, err := o.Submit(context.Background(), 0, testCart(), NewDraft(fixedClock("2024-05-01 09:00")))
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNoUser))
	assert.Empty(t, gateway.requests)
}

func TestSubmitPickupOrderDeliversServerResultToHost(t *testing.T) {
	gateway := &stubOrderGateway{created: Order{
		ID:           42,
		UserID:       7,
		Status:       "created",
		DeliveryType: DeliveryPickup,
		TotalAmount:  2500,
	}}
	recorder := &recordingBridge{}
	o := newTestOrchestrator(t, gateway, recorder.bridge())

	draft := NewDraft(fixedClock("2024-05-01 09:00"))
	storeID := int64(3)
	draft.StoreID = &storeID
	draft.PickupDate = "2024-05-02"
	draft.PickupTime = "14:30"

	order, err := o.Submit(context.Background(), 7, testCart(), draft)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, int64(2500), order.TotalAmount, "confirmation shows the server-computed total")

	require.Equal(t, []string{"POST /orders/orders/"}, gateway.requests)
	input, ok := gateway.bodies[0].(OrderInput)
	require.True(t, ok)
	assert.Equal(t, int64(7), input.UserID)
	require.NotNil(t, input.PickupTime)
	assert.Equal(t, "2024-05-02 14:30", *input.PickupTime)
	assert.Nil(t, input.Address, "inactive branch stays off the wire")
	assert.Len(t, input.Items, 2)

	require.Len(t, recorder.sent, 1)
	assert.JSONEq(t, `{"action":"order_created","order_id":42,"delivery_type":"pickup","total":2500}`, recorder.sent[0])
	assert.Equal(t, []string{"disable", "progress_on", "send", "hide", "progress_off", "enable"}, recorder.calls)
}

func TestSubmitDeliveryOrderSendsTrimmedAddress(t *testing.T) {
	gateway := &stubOrderGateway{created: Order{ID: 43, DeliveryType: DeliveryCourier, TotalAmount: 500}}
	o := newTestOrchestrator(t, gateway, hostbridge.Noop{})

	draft := NewDraft(fixedClock("2024-05-01 09:00"))
	draft.SetDeliveryType(DeliveryCourier)
	draft.Address = "  1 Rose Street  "

	_, err := o.Submit(context.Background(), 7, testCart(), draft)
	require.NoError(t, err)

	input := gateway.bodies[0].(OrderInput)
	require.NotNil(t, input.Address)
	assert.Equal(t, "1 Rose Street", *input.Address)
	assert.Nil(t, input.StoreID)
	assert.Nil(t, input.PickupTime)
}

func TestSubmitFailureReEnablesButtonAndSendsNothing(t *testing.T) {
	gateway := &stubOrderGateway{failNext: pkgerrors.New(pkgerrors.CodeDependency, "order service unavailable")}
	recorder := &recordingBridge{}
	o := newTestOrchestrator(t, gateway, recorder.bridge())

	draft := NewDraft(fixedClock("2024-05-01 09:00"))
	draft.SetDeliveryType(DeliveryCourier)
	draft.Address = "1 Rose Street"

	_, err := o.Submit(context.Background(), 7, testCart(), draft)
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeDependency))

	assert.Empty(t, recorder.sent, "no host result on failure")
	assert.Equal(t, []string{"disable", "progress_on", "progress_off", "enable"}, recorder.calls,
		"button re-enabled, never hidden, after a failed submission")
	assert.Equal(t, "1 Rose Street", draft.Address, "draft untouched so the user can retry")
}

func TestSubmitIsSingleFlight(t *testing.T) {
	gateway := &stubOrderGateway{block: make(chan struct{}), blocked: make(chan struct{}), created: Order{ID: 44, DeliveryType: DeliveryCourier}}
	o := newTestOrchestrator(t, gateway, hostbridge.Noop{})

	draft := NewDraft(fixedClock("2024-05-01 09:00"))
	draft.SetDeliveryType(DeliveryCourier)
	draft.Address = "1 Rose Street"

	done := make(chan error, 1)
	go func() {
		_, err := o.Submit(context.Background(), 7, testCart(), draft)
		done <- err
	}()
	<-gateway.blocked // first submission is now in flight

	require.Eventually(t, func() bool {
		_, err := o.Submit(context.Background(), 7, testCart(), draft)
		return pkgerrors.Is(err, pkgerrors.CodeConflict)
	}, time.Second, time.Millisecond, "second press while in flight must be rejected")

	close(gateway.block)
	require.NoError(t, <-done)

	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	assert.Len(t, gateway.requests, 1, "exactly one order created")
}
