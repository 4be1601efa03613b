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

// WishlistEntryInsert inserts we. A duplicate of the (user_id, platform,
// identifier) key is reported through alreadyExists, not an error.
func (db Database) WishlistEntryInsert(ctx context.Context, we model.WishlistEntry) (alreadyExists bool, err error) {
	we.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	_, err = db.Collection(CollectionWishlistEntries).InsertOne(ctx, we)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return true, nil
		}
		return false, errors.Wrapf(err, "error inserting WishlistEntry: %+v", we)
	}
	return false, nil
}

// WishlistEntryRemove deletes by key and reports whether an entry existed.
func (db Database) WishlistEntryRemove(
	ctx context.Context, userID primitive.ObjectID, platform model.Platform, identifier string,
) (existed bool, err error) {
	res, err := db.Collection(CollectionWishlistEntries).DeleteOne(ctx, bson.M{
		"user_id":    userID,
		"platform":   platform,
		"identifier": identifier,
	})
	if err != nil {
		return false, errors.Wrapf(err, "error removing WishlistEntry for UserID: %s, platform: %s, identifier: %s",
			userID.Hex(), platform, identifier)
	}
	return res.DeletedCount > 0, nil
}

func (db Database) WishlistEntriesFindByUser(ctx context.Context, userID primitive.ObjectID) ([]model.WishlistEntry, error) {
	var wes []model.WishlistEntry
	cur, err := db.Collection(CollectionWishlistEntries).Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find WishlistEntries for UserID: %s", userID.Hex())
	}
	if err = cur.All(ctx, &wes); err != nil {
		return nil, errors.Wrapf(err, "error getting WishlistEntries from cursor for UserID: %s", userID.Hex())
	}
	return wes, nil
}
