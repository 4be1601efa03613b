package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// WishlistEntry is an item a User saved for later. Keyed by
// (user_id, platform, identifier), no relationship to TrackedItem.
type WishlistEntry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID     primitive.ObjectID `bson:"user_id" json:"-"`
	Platform   Platform           `bson:"platform" json:"platform"`
	Identifier string             `bson:"identifier" json:"identifier"`
	Title      string             `bson:"title" json:"title"`
	CreatedAt  primitive.DateTime `bson:"created_at" json:"-"`
}

// TrackedItem is a price-tracking subscription. AlertThreshold is a price in
// minor units, 0 means alert on any qualifying change.
type TrackedItem struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID         primitive.ObjectID `bson:"user_id" json:"-"`
	Platform       Platform           `bson:"platform" json:"platform"`
	Identifier     string             `bson:"identifier" json:"identifier"`
	Title          string             `bson:"title" json:"title"`
	AlertThreshold int                `bson:"alert_threshold" json:"alert_threshold"`
	CreatedAt      primitive.DateTime `bson:"created_at" json:"-"`
}

// NotificationState is the single source of truth for what a User was last
// told about a TrackedItem. At most one row per (user_id, platform,
// identifier); written only by the decision engine.
type NotificationState struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID              primitive.ObjectID `bson:"user_id" json:"-"`
	Platform            Platform           `bson:"platform" json:"platform"`
	Identifier          string             `bson:"identifier" json:"identifier"`
	LastDiscountPercent int                `bson:"last_discount_percent" json:"last_discount_percent"`
	LastPrice           int                `bson:"last_price" json:"last_price"`
	LastNotifiedAt      primitive.DateTime `bson:"last_notified_at" json:"last_notified_at"`
}
