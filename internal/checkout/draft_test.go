package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(value string) func() time.Time {
	parsed, err := time.ParseInLocation("2006-01-02 15:04", value, time.UTC)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return parsed }
}

func TestNewDraftDefaultsToPickupToday(t *testing.T) {
	draft := NewDraft(fixedClock("2024-05-01 09:00"))

	assert.Equal(t, DeliveryPickup, draft.DeliveryType)
	assert.Equal(t, "2024-05-01", draft.PickupDate)
	assert.Empty(t, draft.PickupTime)
	assert.Nil(t, draft.StoreID)
	assert.Empty(t, draft.Address)
}

func TestSetDeliveryTypeRetainsOtherBranch(t *testing.T) {
	draft := NewDraft(fixedClock("2024-05-01 09:00"))
	storeID := int64(3)
	draft.StoreID = &storeID
	draft.PickupTime = "14:30"

	draft.SetDeliveryType(DeliveryCourier)
	draft.Address = "1 Rose Street"

	draft.SetDeliveryType(DeliveryPickup)
	assert.Equal(t, &storeID, draft.StoreID, "pickup inputs survive a branch switch")
	assert.Equal(t, "14:30", draft.PickupTime)
	assert.Equal(t, "1 Rose Street", draft.Address, "delivery inputs survive a branch switch")
}

func TestSetDeliveryTypeIgnoresUnknownValues(t *testing.T) {
	draft := NewDraft(fixedClock("2024-05-01 09:00"))
	draft.SetDeliveryType(DeliveryType("teleport"))
	assert.Equal(t, DeliveryPickup, draft.DeliveryType)
}

func TestPickupAtJoinsDateAndTime(t *testing.T) {
	draft := NewDraft(fixedClock("2024-05-01 09:00"))
	draft.PickupTime = " 14:30 "
	assert.Equal(t, "2024-05-01 14:30", draft.PickupAt())

	draft.PickupTime = ""
	assert.Equal(t, "2024-05-01", draft.PickupAt(), "no trailing space without a time")
}

func TestResetRestoresInitialState(t *testing.T) {
	draft := NewDraft(fixedClock("2024-05-01 09:00"))
	storeID := int64(3)
	draft.SetDeliveryType(DeliveryCourier)
	draft.StoreID = &storeID
	draft.PickupTime = "14:30"
	draft.Address = "1 Rose Street"

	draft.Reset()

	assert.Equal(t, DeliveryPickup, draft.DeliveryType)
	assert.Nil(t, draft.StoreID)
	assert.Equal(t, "2024-05-01", draft.PickupDate)
	assert.Empty(t, draft.PickupTime)
	assert.Empty(t, draft.Address)
}
