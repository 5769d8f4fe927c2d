package database

import (
	"context"
	"fmt"
	"time"

	"webservices-backend/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoDB wraps the shared client and database handle. The client is safe
// for concurrent use by all in-flight requests; it is the only process-wide
// mutable state the application holds.
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func Connect(ctx context.Context, cfg config.MongoConfig) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Timeout)*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &MongoDB{
		Client:   client,
		Database: client.Database(cfg.Database),
	}, nil
}

// EnsureIndexes declares the indexes the API relies on: the uniqueness
// constraints and the task query paths.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		"contacts": {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "lastName", Value: 1}, {Key: "firstName", Value: 1}},
			},
		},
		"books": {
			{
				Keys:    bson.D{{Key: "isbn", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"tasks": {
			{
				Keys: bson.D{{Key: "projectId", Value: 1}, {Key: "status", Value: 1}},
			},
			{
				Keys: bson.D{{Key: "dueDate", Value: 1}},
			},
			{
				Keys: bson.D{{Key: "priority", Value: 1}},
			},
		},
	}

	for collection, models := range indexes {
		if _, err := m.Database.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes for %s: %w", collection, err)
		}
	}

	return nil
}

// Exists implements resource.ReferenceResolver: does the collection hold a
// document with this ID? A malformed ID simply does not exist.
func (m *MongoDB) Exists(ctx context.Context, collection, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	count, err := m.Database.Collection(collection).CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("existence check in %s: %w", collection, err)
	}
	return count > 0, nil
}

func (m *MongoDB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := m.Client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongodb ping failed: %w", err)
	}
	return nil
}

func (m *MongoDB) Close(ctx context.Context) error {
	if m.Client != nil {
		return m.Client.Disconnect(ctx)
	}
	return nil
}
