package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps the encoded ledger document as a string field of one MongoDB
// document, which preserves the JSON layout byte for byte.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	id         string
}

type mongoDocument struct {
	ID        string    `bson:"_id"`
	Document  string    `bson:"document"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore connects to MongoDB and pings it before returning.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(dbName).Collection("ledger_documents"),
		id:         DefaultDocumentID,
	}, nil
}

func (ms *MongoStore) Load(ctx context.Context) (*Document, error) {
	var md mongoDocument
	err := ms.collection.FindOne(ctx, bson.M{"_id": ms.id}).Decode(&md)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Bootstrap(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("find ledger document: %w", err)
	}

	return Decode([]byte(md.Document))
}

func (ms *MongoStore) Save(ctx context.Context, doc *Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	md := mongoDocument{ID: ms.id, Document: string(data), UpdatedAt: time.Now()}
	_, err = ms.collection.ReplaceOne(ctx, bson.M{"_id": ms.id}, md, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace ledger document: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (ms *MongoStore) Close(ctx context.Context) error {
	return ms.client.Disconnect(ctx)
}
