package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "objects"

type mongoObject struct {
	Name      string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStorage keeps objects as documents keyed by name
type MongoStorage struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Ensure MongoStorage implements StorageInterface
var _ StorageInterface = (*MongoStorage)(nil)

// NewMongoStorage connects to MongoDB and verifies the connection
func NewMongoStorage(ctx context.Context, uri, database string) (*MongoStorage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	logrus.Infof("Connected to MongoDB database %s", database)
	return &MongoStorage{
		client:     client,
		collection: client.Database(database).Collection(mongoCollection),
	}, nil
}

// Store upserts the document
func (s *MongoStorage) Store(filename string, data []byte) error {
	_, err := s.collection.ReplaceOne(context.Background(),
		bson.M{"_id": filename},
		mongoObject{Name: filename, Data: data, UpdatedAt: time.Now().UTC()},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to store %s in mongo: %w", filename, err)
	}
	return nil
}

// Retrieve reads the document's payload
func (s *MongoStorage) Retrieve(filename string) ([]byte, error) {
	var obj mongoObject
	err := s.collection.FindOne(context.Background(), bson.M{"_id": filename}).Decode(&obj)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", filename, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s from mongo: %w", filename, err)
	}
	return obj.Data, nil
}

// List returns document names starting with prefix
func (s *MongoStorage) List(prefix string) ([]string, error) {
	ctx := context.Background()
	filter := bson.M{"_id": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}

	cursor, err := s.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list mongo objects: %w", err)
	}
	defer cursor.Close(ctx)

	var names []string
	for cursor.Next(ctx) {
		var obj mongoObject
		if err := cursor.Decode(&obj); err != nil {
			return nil, fmt.Errorf("failed to decode mongo object: %w", err)
		}
		names = append(names, obj.Name)
	}
	return names, cursor.Err()
}

// Delete removes the document
func (s *MongoStorage) Delete(filename string) error {
	if _, err := s.collection.DeleteOne(context.Background(), bson.M{"_id": filename}); err != nil {
		return fmt.Errorf("failed to delete %s from mongo: %w", filename, err)
	}
	return nil
}

// Close disconnects the client
func (s *MongoStorage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
