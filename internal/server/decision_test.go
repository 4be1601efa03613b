package server

import (
	"testing"

	"dealtracker/internal/model"

	"github.com/stretchr/testify/assert"
)

func snap(discount, final, original int) model.PriceSnapshot {
	return model.PriceSnapshot{
		Platform:        model.PlatformSteam,
		Identifier:      "400",
		Name:            "Portal",
		DiscountPercent: discount,
		FinalPrice:      final,
		OriginalPrice:   original,
	}
}

func state(discount, price int) *model.NotificationState {
	return &model.NotificationState{
		Platform:            model.PlatformSteam,
		Identifier:          "400",
		LastDiscountPercent: discount,
		LastPrice:           price,
	}
}

func TestDecideFirstObservationWithDiscount(t *testing.T) {
	d := decide(snap(10, 900, 1000), nil)
	assert.Equal(t, reasonDiscountDetected, d.reason)
	assert.False(t, d.bootstrap)
}

func TestDecideFirstObservationWithoutDiscount(t *testing.T) {
	d := decide(snap(0, 1000, 1000), nil)
	assert.Equal(t, reasonNone, d.reason)
	assert.True(t, d.bootstrap)
}

func TestDecideRepeatObservationIsIdempotent(t *testing.T) {
	d := decide(snap(10, 900, 1000), state(10, 900))
	assert.Equal(t, reasonNone, d.reason)
	assert.False(t, d.bootstrap)
}

func TestDecideDiscountChanged(t *testing.T) {
	d := decide(snap(25, 750, 1000), state(10, 900))
	assert.Equal(t, reasonDiscountChanged, d.reason)

	d = decide(snap(5, 950, 1000), state(10, 900))
	assert.Equal(t, reasonDiscountChanged, d.reason, "a smaller discount is still a change")
}

func TestDecideDiscountRevertsToZero(t *testing.T) {
	// A sale ending never alerts, and the price going back up is not a drop.
	d := decide(snap(0, 1000, 1000), state(10, 900))
	assert.Equal(t, reasonNone, d.reason)
	assert.False(t, d.bootstrap)
}

func TestDecidePriceDropWithoutDiscountChange(t *testing.T) {
	// A permanent price cut has no discount listed but the price went down.
	d := decide(snap(0, 800, 800), state(0, 1000))
	assert.Equal(t, reasonPriceDrop, d.reason)
}

func TestDecidePriceDropRequiresBothPrices(t *testing.T) {
	// Unpriced snapshots (unreleased, delisted) never count as a drop.
	d := decide(snap(0, 0, 0), state(0, 1000))
	assert.Equal(t, reasonNone, d.reason)

	d = decide(snap(0, 800, 800), state(0, 0))
	assert.Equal(t, reasonNone, d.reason)
}

func TestDecideDiscountTakesPriorityOverPriceDrop(t *testing.T) {
	d := decide(snap(25, 750, 1000), state(10, 900))
	assert.Equal(t, reasonDiscountChanged, d.reason)
}

func TestSuppressedByThreshold(t *testing.T) {
	ti := model.TrackedItem{AlertThreshold: 800}

	d := decide(snap(10, 900, 1000), nil)
	assert.True(t, suppressedByThreshold(ti, d, snap(10, 900, 1000)),
		"discount alert above the threshold is held back")

	assert.False(t, suppressedByThreshold(ti, d, snap(20, 800, 1000)),
		"price at the threshold fires")

	d = decide(snap(0, 700, 700), state(0, 900))
	assert.Equal(t, reasonPriceDrop, d.reason)
	assert.False(t, suppressedByThreshold(ti, d, snap(0, 700, 700)),
		"price-drop alerts ignore the threshold")

	noThreshold := model.TrackedItem{}
	d = decide(snap(10, 900, 1000), nil)
	assert.False(t, suppressedByThreshold(noThreshold, d, snap(10, 900, 1000)))
}

func TestSnapshotState(t *testing.T) {
	ti := model.TrackedItem{Platform: model.PlatformSteam, Identifier: "400"}
	ns := snapshotState(ti, snap(25, 750, 1000))
	assert.Equal(t, model.PlatformSteam, ns.Platform)
	assert.Equal(t, "400", ns.Identifier)
	assert.Equal(t, 25, ns.LastDiscountPercent)
	assert.Equal(t, 750, ns.LastPrice)
	assert.NotZero(t, ns.LastNotifiedAt)
}

func TestAlertReasonString(t *testing.T) {
	assert.Equal(t, "discount detected", reasonDiscountDetected.String())
	assert.Equal(t, "discount changed", reasonDiscountChanged.String())
	assert.Equal(t, "price drop", reasonPriceDrop.String())
	assert.Equal(t, "none", reasonNone.String())
}
