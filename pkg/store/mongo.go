package store

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps each value in a document {_id: key, data, updated_at}.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// archiveDoc is the stored document.
type archiveDoc struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore connects to uri and uses database.collection.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, ioError(err, "connect mongo", uri)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, ioError(err, "connect mongo", uri)
	}
	return &MongoStore{client: client, coll: client.Database(database).Collection(collection)}, nil
}

// Get finds the document with _id key.
func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc archiveDoc
	err := withRetry(ctx, func() error {
		return classifyMongo(s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc))
	})
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, ioError(err, "mongo find", key)
	}
	return doc.Data, true, nil
}

// Put upserts the document for key.
func (s *MongoStore) Put(ctx context.Context, key string, data []byte) error {
	update := bson.M{"$set": bson.M{"data": data, "updated_at": time.Now().UTC()}}
	err := withRetry(ctx, func() error {
		_, err := s.coll.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
		return classifyMongo(err)
	})
	if err != nil {
		return ioError(err, "mongo upsert", key)
	}
	return nil
}

// Delete removes the document for key.
func (s *MongoStore) Delete(ctx context.Context, key string) error {
	err := withRetry(ctx, func() error {
		_, err := s.coll.DeleteOne(ctx, bson.M{"_id": key})
		return classifyMongo(err)
	})
	if err != nil {
		return ioError(err, "mongo delete", key)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func classifyMongo(err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return retryable(err)
	}
	return err
}

var _ Store = (*MongoStore)(nil)
