package customers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tunnelmesh/go-tunnel-backend/internal/errors"
)

// MongoRepo stores customers in a collection with a unique index on the
// subject. The index is what makes CreateIfAbsent race-safe: a concurrent
// duplicate insert fails with a duplicate-key error and the loser reads the
// winner's record back.
type MongoRepo struct {
	collection *mongo.Collection
}

var _ Repo = (*MongoRepo)(nil)

type customerDocument struct {
	ID         string    `bson:"_id"`
	Subject    string    `bson:"subject"`
	Username   string    `bson:"username,omitempty"`
	Email      string    `bson:"email,omitempty"`
	GivenName  string    `bson:"given_name,omitempty"`
	FamilyName string    `bson:"family_name,omitempty"`
	CreatedAt  time.Time `bson:"created_at"`
}

func NewMongoRepo(ctx context.Context, database *mongo.Database) (*MongoRepo, error) {
	collection := database.Collection("customers")

	isUnique := true
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "subject", Value: 1}},
		Options: &options.IndexOptions{Unique: &isUnique},
	})
	if err != nil {
		return nil, err
	}

	return &MongoRepo{collection: collection}, nil
}

func (r *MongoRepo) GetBySubject(ctx context.Context, subject string) (*Customer, error) {
	return r.getWithFilter(ctx, bson.D{{Key: "subject", Value: subject}})
}

func (r *MongoRepo) GetByID(ctx context.Context, id string) (*Customer, error) {
	return r.getWithFilter(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *MongoRepo) CreateIfAbsent(ctx context.Context, customer *Customer) (*Customer, error) {
	document := toDocument(customer)
	if document.ID == "" {
		document.ID = uuid.New().String()
	}
	if document.CreatedAt.IsZero() {
		document.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, document); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return r.GetBySubject(ctx, customer.Subject)
		}
		return nil, err
	}
	return fromDocument(document), nil
}

func (r *MongoRepo) Upsert(ctx context.Context, customer *Customer) error {
	document := toDocument(customer)

	shouldUpsert := true
	filter := bson.D{{Key: "_id", Value: document.ID}}
	if _, err := r.collection.ReplaceOne(ctx, filter, document, &options.ReplaceOptions{Upsert: &shouldUpsert}); err != nil {
		return err
	}
	return nil
}

func (r *MongoRepo) List(ctx context.Context, offset, limit int) ([]*Customer, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetSkip(int64(offset))
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	customers := []*Customer{}
	for cursor.Next(ctx) {
		var document customerDocument
		if err := cursor.Decode(&document); err != nil {
			return nil, err
		}
		customers = append(customers, fromDocument(document))
	}
	return customers, cursor.Err()
}

func (r *MongoRepo) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return errors.ErrCustomerNotFound
	}
	return nil
}

func (r *MongoRepo) getWithFilter(ctx context.Context, filter any) (*Customer, error) {
	result := r.collection.FindOne(ctx, filter)
	if result.Err() != nil {
		if result.Err() == mongo.ErrNoDocuments {
			return nil, errors.ErrCustomerNotFound
		}
		return nil, result.Err()
	}

	var document customerDocument
	if err := result.Decode(&document); err != nil {
		return nil, err
	}
	return fromDocument(document), nil
}

func toDocument(c *Customer) customerDocument {
	return customerDocument{
		ID:         c.ID,
		Subject:    c.Subject,
		Username:   c.Username,
		Email:      c.Email,
		GivenName:  c.GivenName,
		FamilyName: c.FamilyName,
		CreatedAt:  c.CreatedAt,
	}
}

func fromDocument(d customerDocument) *Customer {
	return &Customer{
		ID:         d.ID,
		Subject:    d.Subject,
		Username:   d.Username,
		Email:      d.Email,
		GivenName:  d.GivenName,
		FamilyName: d.FamilyName,
		CreatedAt:  d.CreatedAt,
	}
}
