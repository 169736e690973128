package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-locator/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo stores each collection as a MongoDB collection of the same name.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func ConnectMongo(ctx context.Context, uri, dbName string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("unable to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo unreachable: %w", err)
	}
	return &Mongo{client: client, db: client.Database(dbName)}, nil
}

// Migrate creates the unique link index on both collections.
func (m *Mongo) Migrate(ctx context.Context) error {
	for _, name := range []string{models.CollectionJobs, models.CollectionAccommodations} {
		_, err := m.db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "link", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("failed to create link index on %s: %w", name, err)
		}
	}
	return nil
}

func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Upsert(ctx context.Context, collection, key string, l models.Listing) (models.Listing, error) {
	if err := checkCollection(collection); err != nil {
		return models.Listing{}, err
	}
	l.Link = key
	l.ScrapedAt = time.Now().UTC()

	// ReplaceOne drops fields the new scrape no longer carries
	_, err := m.db.Collection(collection).ReplaceOne(ctx,
		bson.M{"link": key}, l, options.Replace().SetUpsert(true))
	if err != nil {
		return models.Listing{}, fmt.Errorf("failed to upsert listing %s: %w", key, err)
	}
	return l, nil
}

func (m *Mongo) Get(ctx context.Context, collection, key string) (models.Listing, error) {
	if err := checkCollection(collection); err != nil {
		return models.Listing{}, err
	}
	var l models.Listing
	err := m.db.Collection(collection).FindOne(ctx, bson.M{"link": key}).Decode(&l)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Listing{}, ErrNotFound
		}
		return models.Listing{}, fmt.Errorf("failed to get listing %s: %w", key, err)
	}
	return l, nil
}

func (m *Mongo) Find(ctx context.Context, collection string, filter Filter) ([]models.Listing, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	keys, err := filter.keys()
	if err != nil {
		return nil, err
	}
	query := bson.M{}
	for _, k := range keys {
		query[k] = filter[k]
	}

	cur, err := m.db.Collection(collection).Find(ctx, query,
		options.Find().SetSort(bson.D{{Key: "scraped_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find listings: %w", err)
	}
	var listings []models.Listing
	if err := cur.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	return listings, nil
}

func (m *Mongo) Delete(ctx context.Context, collection, key string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	res, err := m.db.Collection(collection).DeleteOne(ctx, bson.M{"link": key})
	if err != nil {
		return fmt.Errorf("failed to delete listing %s: %w", key, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
