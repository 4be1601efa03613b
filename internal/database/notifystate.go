package database

import (
	"context"

	"dealtracker/internal/model"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationStateUpsert inserts or fully overwrites the state row for the
// (user_id, platform, identifier) key.
func (db Database) NotificationStateUpsert(ctx context.Context, ns model.NotificationState) error {
	_, err := db.Collection(CollectionNotificationStates).UpdateOne(
		ctx,
		bson.M{
			"user_id":    ns.UserID,
			"platform":   ns.Platform,
			"identifier": ns.Identifier,
		},
		bson.M{"$set": bson.M{
			"last_discount_percent": ns.LastDiscountPercent,
			"last_price":            ns.LastPrice,
			"last_notified_at":      ns.LastNotifiedAt,
		}},
		options.Update().SetUpsert(true),
	)
	return errors.Wrapf(err, "error upserting NotificationState: %+v", ns)
}

// NotificationStateFind returns mongo.ErrNoDocuments (wrapped) when no state
// has been recorded for the key yet.
func (db Database) NotificationStateFind(
	ctx context.Context, userID primitive.ObjectID, platform model.Platform, identifier string,
) (model.NotificationState, error) {
	var ns model.NotificationState
	err := db.Collection(CollectionNotificationStates).FindOne(ctx, bson.M{
		"user_id":    userID,
		"platform":   platform,
		"identifier": identifier,
	}).Decode(&ns)
	return ns, errors.Wrapf(err, "error finding NotificationState for UserID: %s, platform: %s, identifier: %s",
		userID.Hex(), platform, identifier)
}
