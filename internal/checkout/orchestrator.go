package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"

	"github.com/petalworks/shop-miniapp/internal/cart"
	"github.com/petalworks/shop-miniapp/internal/hostbridge"
	pkgerrors "github.com/petalworks/shop-miniapp/pkg/errors"
	"github.com/petalworks/shop-miniapp/pkg/logger"
)

type gatewayClient interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Orchestrator drives the checkout form to a single irreversible order
// submission: validate, busy-lock the host main button, assemble the
// payload, submit exactly once, and deliver the outcome to the host.
type Orchestrator struct {
	gateway gatewayClient
	bridge  hostbridge.Bridge
	logger  *logger.Logger

	mu         sync.Mutex
	submitting bool
}

// Params configure the orchestrator.
type Params struct {
	Gateway gatewayClient
	Bridge  hostbridge.Bridge
	Logger  *logger.Logger
}

// NewOrchestrator builds the checkout orchestrator.
func NewOrchestrator(params Params) (*Orchestrator, error) {
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway required")
	}
	if params.Bridge == nil {
		return nil, fmt.Errorf("host bridge required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Orchestrator{
		gateway: params.Gateway,
		bridge:  params.Bridge,
		logger:  params.Logger,
	}, nil
}

// ValidateDraft checks that the cart and the active branch of the draft are
// complete enough to submit. All failures are reported together so the
// user fixes the form in one pass. No network call happens here.
func ValidateDraft(c *cart.Cart, draft *Draft) error {
	if draft == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout has not been started")
	}

	var errs error
	if c.IsEmpty() {
		errs = multierr.Append(errs, fmt.Errorf("cart is empty"))
	}

	switch draft.DeliveryType {
	case DeliveryPickup:
		if draft.StoreID == nil {
			errs = multierr.Append(errs, fmt.Errorf("select a pickup store"))
		}
		if strings.TrimSpace(draft.PickupTime) == "" {
			errs = multierr.Append(errs, fmt.Errorf("select a pickup time"))
		}
		if date := strings.TrimSpace(draft.PickupDate); date == "" {
			errs = multierr.Append(errs, fmt.Errorf("select a pickup date"))
		} else if parsed, err := time.ParseInLocation(pickupDateLayout, date, time.UTC); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("pickup date must look like %s", pickupDateLayout))
		} else if parsed.Before(draft.minDate()) {
			errs = multierr.Append(errs, fmt.Errorf("pickup date cannot be in the past"))
		}
	case DeliveryCourier:
		if strings.TrimSpace(draft.Address) == "" {
			errs = multierr.Append(errs, fmt.Errorf("enter a delivery address"))
		}
	default:
		errs = multierr.Append(errs, fmt.Errorf("choose pickup or delivery"))
	}

	if errs != nil {
		messages := make([]string, 0, len(multierr.Errors(errs)))
		for _, err := range multierr.Errors(errs) {
			messages = append(messages, err.Error())
		}
		return pkgerrors.New(pkgerrors.CodeValidation, strings.Join(messages, "; "))
	}
	return nil
}

// BuildOrderInput assembles the submission payload from the cart snapshot
// and the active draft branch. Call ValidateDraft first.
func BuildOrderInput(userID int64, c *cart.Cart, draft *Draft) OrderInput {
	input := OrderInput{
		UserID:       userID,
		DeliveryType: draft.DeliveryType,
		Items:        snapshotItems(c),
	}
	switch draft.DeliveryType {
	case DeliveryPickup:
		input.StoreID = draft.StoreID
		pickupAt := draft.PickupAt()
		input.PickupTime = &pickupAt
	case DeliveryCourier:
		address := strings.TrimSpace(draft.Address)
		input.Address = &address
	}
	return input
}

// Submit performs the one irreversible remote write of the checkout flow.
// The host main button is disabled with its busy indicator for the
// duration of the call and re-enabled whatever the outcome. On success the
// created order is reported to the host runtime and the main button is
// hidden; the caller resets the cart and draft. On failure the caller's
// draft and cart are left untouched so the user retries without re-entering
// anything.
func (o *Orchestrator) Submit(ctx context.Context, userID int64, c *cart.Cart, draft *Draft) (*Order, error) {
	if userID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNoUser, "sign in through the chat app to place an order")
	}
	if err := ValidateDraft(c, draft); err != nil {
		return nil, err
	}

	if !o.beginSubmit() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order submission already in progress")
	}
	defer o.endSubmit()

	o.bridge.DisableMainButton()
	o.bridge.ShowMainButtonProgress()
	defer func() {
		o.bridge.HideMainButtonProgress()
		o.bridge.EnableMainButton()
	}()

	input := BuildOrderInput(userID, c, draft)
	if err := validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "order payload incomplete")
	}

	ctx = o.logger.WithUserID(ctx, userID)
	var created Order
	if err := o.gateway.Do(ctx, http.MethodPost, "/orders/orders/", input, &created); err != nil {
		o.logger.Error(ctx, "order submission failed", err)
		return nil, err
	}

	o.logger.Info(o.logger.WithField(ctx, "order_id", created.ID), "order created")
	o.notifyHost(ctx, &created)
	o.bridge.HideMainButton()
	return &created, nil
}

// notifyHost delivers the order outcome to the host runtime's result
// channel. The Noop bridge swallows it when no host is present.
func (o *Orchestrator) notifyHost(ctx context.Context, order *Order) {
	payload, err := json.Marshal(HostResult{
		Action:       "order_created",
		OrderID:      order.ID,
		DeliveryType: order.DeliveryType,
		Total:        order.TotalAmount,
	})
	if err != nil {
		o.logger.Error(ctx, "encode host result", err)
		return
	}
	o.bridge.SendData(string(payload))
}

func (o *Orchestrator) beginSubmit() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.submitting {
		return false
	}
	o.submitting = true
	return true
}

func (o *Orchestrator) endSubmit() {
	o.mu.Lock()
	o.submitting = false
	o.mu.Unlock()
}
