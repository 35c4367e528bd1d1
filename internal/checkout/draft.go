package checkout

import (
	"strings"
	"time"
)

// DeliveryType selects the checkout branch.
type DeliveryType string

const (
	DeliveryPickup   DeliveryType = "pickup"
	DeliveryCourier  DeliveryType = "delivery"
	pickupDateLayout              = "2006-01-02"
)

// Valid reports whether the value is one of the two known branches.
func (d DeliveryType) Valid() bool {
	return d == DeliveryPickup || d == DeliveryCourier
}

// Draft is the transient, client-owned checkout input. It lives only for
// the duration of the checkout view and is reset after a successful
// submission or on view exit. Both branches keep their inputs so switching
// delivery type back and forth restores prior entries.
type Draft struct {
	DeliveryType DeliveryType

	// pickup branch
	StoreID    *int64
	PickupDate string // YYYY-MM-DD, defaults to today, minimum today
	PickupTime string // HH:MM

	// delivery branch
	Address string

	now func() time.Time
}

// NewDraft starts a fresh draft: pickup by default, date preset to today.
// The clock is injectable for tests; nil means time.Now.
func NewDraft(clock func() time.Time) *Draft {
	if clock == nil {
		clock = time.Now
	}
	return &Draft{
		DeliveryType: DeliveryPickup,
		PickupDate:   clock().Format(pickupDateLayout),
		now:          clock,
	}
}

// SetDeliveryType switches the active branch. Inputs belonging to the
// other branch are retained, not cleared.
func (d *Draft) SetDeliveryType(deliveryType DeliveryType) {
	if deliveryType.Valid() {
		d.DeliveryType = deliveryType
	}
}

// Reset returns the draft to its initial state.
func (d *Draft) Reset() {
	clock := d.now
	if clock == nil {
		clock = time.Now
	}
	*d = *NewDraft(clock)
}

// PickupAt joins the pickup date and time-of-day into the wire format the
// order service stores, e.g. "2024-05-01 14:30".
func (d *Draft) PickupAt() string {
	return strings.TrimSpace(strings.TrimSpace(d.PickupDate) + " " + strings.TrimSpace(d.PickupTime))
}

// minDate is today from the draft's clock, for the minimum-date rule.
func (d *Draft) minDate() time.Time {
	clock := d.now
	if clock == nil {
		clock = time.Now
	}
	year, month, day := clock().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
