package session

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps one document per session entry. Entries carry an
// expires_at field backed by a TTL index, so stored credentials cannot
// outlive the pointer token that references them.
type MongoStore struct {
	collection *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

type sessionEntry struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	ExpiresAt time.Time `bson:"expires_at,omitempty"`
}

func NewMongoStore(ctx context.Context, database *mongo.Database) (*MongoStore, error) {
	collection := database.Collection("session_entries")

	// TTL index: mongod removes entries once expires_at has passed.
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return nil, err
	}

	return &MongoStore{collection: collection}, nil
}

func (s *MongoStore) Get(ctx context.Context, key string) (string, error) {
	result := s.collection.FindOne(ctx, bson.D{{Key: "_id", Value: key}})
	if result.Err() != nil {
		if result.Err() == mongo.ErrNoDocuments {
			return "", nil
		}
		return "", result.Err()
	}

	var entry sessionEntry
	if err := result.Decode(&entry); err != nil {
		return "", err
	}

	// The TTL monitor runs periodically; guard reads in the gap.
	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		return "", nil
	}
	return entry.Value, nil
}

func (s *MongoStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	entry := sessionEntry{Key: key, Value: value}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}

	shouldUpsert := true
	filter := bson.D{{Key: "_id", Value: key}}
	if _, err := s.collection.ReplaceOne(ctx, filter, entry, &options.ReplaceOptions{Upsert: &shouldUpsert}); err != nil {
		return err
	}
	return nil
}
