package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kareem2099/FreeID/domains/analytics"
)

// MongoRepository implements analytics.IAnalyticsRepository on top of the
// users and analytics collections.
type MongoRepository struct {
	client    *mongo.Client
	users     *mongo.Collection
	analytics *mongo.Collection
}

// NewMongoRepository connects to MongoDB and pings it, failing fast when
// the store is unreachable at startup.
func NewMongoRepository(ctx context.Context, uri, dbName string) (*MongoRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(dbName)
	logrus.Infof("Successfully connected to MongoDB (db=%s)", dbName)

	return &MongoRepository{
		client:    client,
		users:     db.Collection(analytics.UsersCollection),
		analytics: db.Collection(analytics.AnalyticsCollection),
	}, nil
}

// RecordInteraction upserts the user record and adds the user to today's
// daily-active set. Each write is atomic on its own document; the two
// writes are intentionally independent.
func (r *MongoRepository) RecordInteraction(ctx context.Context, userID int64, username, firstName string) error {
	now := time.Now().UTC()

	_, err := r.users.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$set": bson.M{
				"user_id":          userID,
				"username":         username,
				"first_name":       firstName,
				"last_interaction": now,
			},
			"$inc": bson.M{"interaction_count": 1},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", userID, err)
	}

	today := analytics.Today()
	_, err = r.analytics.UpdateOne(ctx,
		bson.M{"date": today, "type": analytics.DailyActiveType},
		bson.M{"$addToSet": bson.M{"user_ids": userID}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to update daily active set: %w", err)
	}

	return nil
}

// CountUsers returns the number of distinct user records.
func (r *MongoRepository) CountUsers(ctx context.Context) (int64, error) {
	count, err := r.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// CountActiveSince returns the number of users whose last interaction is
// at or after the threshold.
func (r *MongoRepository) CountActiveSince(ctx context.Context, threshold time.Time) (int64, error) {
	count, err := r.users.CountDocuments(ctx, bson.M{
		"last_interaction": bson.M{"$gte": threshold},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count active users: %w", err)
	}
	return count, nil
}

// TodayActiveCount returns the size of the daily-active set for the given
// day, 0 when no document exists yet.
func (r *MongoRepository) TodayActiveCount(ctx context.Context, day time.Time) (int64, error) {
	var doc struct {
		UserIDs []int64 `bson:"user_ids"`
	}
	err := r.analytics.FindOne(ctx, bson.M{
		"date": day,
		"type": analytics.DailyActiveType,
	}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read daily active set: %w", err)
	}
	return int64(len(doc.UserIDs)), nil
}

// TotalInteractions sums interaction_count across all user records.
func (r *MongoRepository) TotalInteractions(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total_interactions", Value: bson.D{{Key: "$sum", Value: "$interaction_count"}}},
		}}},
	}

	cursor, err := r.users.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate interactions: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		TotalInteractions int64 `bson:"total_interactions"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode aggregation result: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].TotalInteractions, nil
}

// TopUsers returns up to limit users ordered by interaction_count
// descending. Ties break on ascending user_id so the order is
// deterministic.
func (r *MongoRepository) TopUsers(ctx context.Context, limit int64) ([]analytics.TopUser, error) {
	opts := options.Find().
		SetProjection(bson.M{
			"user_id":           1,
			"username":          1,
			"first_name":        1,
			"interaction_count": 1,
		}).
		SetSort(bson.D{
			{Key: "interaction_count", Value: -1},
			{Key: "user_id", Value: 1},
		}).
		SetLimit(limit)

	cursor, err := r.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query top users: %w", err)
	}
	defer cursor.Close(ctx)

	var result []analytics.TopUser
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("failed to decode top users: %w", err)
	}
	return result, nil
}

// Ping checks store reachability, used by the health endpoint.
func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// Close releases the underlying client.
func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
