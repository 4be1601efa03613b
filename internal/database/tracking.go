package database

import (
	"context"
	"time"

	"dealtracker/internal/model"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// TrackedItemInsert inserts ti. A duplicate of the (user_id, platform,
// identifier) key is reported through alreadyExists, not an error.
func (db Database) TrackedItemInsert(ctx context.Context, ti model.TrackedItem) (alreadyExists bool, err error) {
	ti.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	_, err = db.Collection(CollectionTrackedItems).InsertOne(ctx, ti)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return true, nil
		}
		return false, errors.Wrapf(err, "error inserting TrackedItem: %+v", ti)
	}
	return false, nil
}

// TrackedItemRemove deletes by key and reports whether a subscription
// existed. The matching NotificationState row is removed with it.
func (db Database) TrackedItemRemove(
	ctx context.Context, userID primitive.ObjectID, platform model.Platform, identifier string,
) (existed bool, err error) {
	key := bson.M{
		"user_id":    userID,
		"platform":   platform,
		"identifier": identifier,
	}
	res, err := db.Collection(CollectionTrackedItems).DeleteOne(ctx, key)
	if err != nil {
		return false, errors.Wrapf(err, "error removing TrackedItem for UserID: %s, platform: %s, identifier: %s",
			userID.Hex(), platform, identifier)
	}
	if res.DeletedCount == 0 {
		return false, nil
	}
	if _, err = db.Collection(CollectionNotificationStates).DeleteOne(ctx, key); err != nil {
		return true, errors.Wrapf(err, "error removing NotificationState for UserID: %s, platform: %s, identifier: %s",
			userID.Hex(), platform, identifier)
	}
	return true, nil
}

func (db Database) TrackedItemsFindByUser(ctx context.Context, userID primitive.ObjectID) ([]model.TrackedItem, error) {
	var tis []model.TrackedItem
	cur, err := db.Collection(CollectionTrackedItems).Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find TrackedItems for UserID: %s", userID.Hex())
	}
	if err = cur.All(ctx, &tis); err != nil {
		return nil, errors.Wrapf(err, "error getting TrackedItems from cursor for UserID: %s", userID.Hex())
	}
	return tis, nil
}

func (db Database) TrackedItemsFindAll(ctx context.Context) ([]model.TrackedItem, error) {
	var tis []model.TrackedItem
	cur, err := db.Collection(CollectionTrackedItems).Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "error getting cursor to find all TrackedItems")
	}
	if err = cur.All(ctx, &tis); err != nil {
		return nil, errors.Wrap(err, "error getting all TrackedItems from cursor")
	}
	return tis, nil
}
