package server

import (
	"time"

	"dealtracker/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type alertReason int

const (
	reasonNone alertReason = iota
	reasonDiscountDetected
	reasonDiscountChanged
	reasonPriceDrop
)

func (r alertReason) String() string {
	switch r {
	case reasonDiscountDetected:
		return "discount detected"
	case reasonDiscountChanged:
		return "discount changed"
	case reasonPriceDrop:
		return "price drop"
	}
	return "none"
}

type decision struct {
	reason    alertReason
	bootstrap bool
}

// decide compares a fresh snapshot against the last-notified state for one
// subscriber. Rules, in priority order:
//
//  1. never told about this item and it has a discount: alert.
//  2. a discount is listed and it differs from the one last told: alert.
//     A discount reverting to 0% does not alert.
//  3. the price is below the last-told price, discount or not: alert.
//  4. otherwise nothing to tell; with no prior state the snapshot is
//     recorded as a baseline without alerting.
func decide(current model.PriceSnapshot, last *model.NotificationState) decision {
	switch {
	case last == nil && current.DiscountPercent > 0:
		return decision{reason: reasonDiscountDetected}
	case last != nil && current.DiscountPercent != last.LastDiscountPercent && current.DiscountPercent > 0:
		return decision{reason: reasonDiscountChanged}
	case last != nil && current.FinalPrice > 0 && last.LastPrice > 0 && current.FinalPrice < last.LastPrice:
		return decision{reason: reasonPriceDrop}
	}
	return decision{bootstrap: last == nil}
}

// suppressedByThreshold reports whether a discount alert is held back because
// the price is still above the subscriber's threshold. No state is written
// for a held-back alert, so it fires once the price reaches the threshold.
// Price-drop alerts are never held back.
func suppressedByThreshold(ti model.TrackedItem, d decision, current model.PriceSnapshot) bool {
	if ti.AlertThreshold <= 0 || d.reason == reasonNone || d.reason == reasonPriceDrop {
		return false
	}
	return current.FinalPrice > ti.AlertThreshold
}

func snapshotState(ti model.TrackedItem, current model.PriceSnapshot) model.NotificationState {
	return model.NotificationState{
		UserID:              ti.UserID,
		Platform:            ti.Platform,
		Identifier:          ti.Identifier,
		LastDiscountPercent: current.DiscountPercent,
		LastPrice:           current.FinalPrice,
		LastNotifiedAt:      primitive.NewDateTimeFromTime(time.Now()),
	}
}
