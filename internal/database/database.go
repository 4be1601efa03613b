package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	Name                         = "deal_tracker_db"
	CollectionUsers              = "users"
	CollectionWishlistEntries    = "wishlist_entries"
	CollectionTrackedItems       = "tracked_items"
	CollectionNotificationStates = "notification_states"
)

type Database struct {
	*mongo.Database
}

// trackingKey is the composite key shared by wishlist entries, tracked items,
// and notification states.
var trackingKey = bson.D{
	{Key: "user_id", Value: 1},
	{Key: "platform", Value: 1},
	{Key: "identifier", Value: 1},
}

func ConnectDB(ctx context.Context, dbURI string) (*mongo.Client, error) {
	c, err := mongo.Connect(ctx, options.Client().ApplyURI(dbURI))
	if err != nil {
		return nil, err
	}

	_, err = c.Database(Name).Collection(CollectionUsers).Indexes().CreateMany(
		ctx,
		[]mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "devices.fcm_token", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true),
			},
		},
	)
	if err != nil {
		return nil, err
	}

	for _, collection := range []string{
		CollectionWishlistEntries,
		CollectionTrackedItems,
		CollectionNotificationStates,
	} {
		_, err = c.Database(Name).Collection(collection).Indexes().CreateOne(
			ctx,
			mongo.IndexModel{
				Keys:    trackingKey,
				Options: options.Index().SetUnique(true),
			},
		)
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}
