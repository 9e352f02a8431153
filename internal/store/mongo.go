// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pdiddy/paper-crawler/pkg/types"
)

// Mongo stores papers in a MongoDB collection.
type Mongo struct {
	client *mongo.Client
	papers *mongo.Collection
	now    func() time.Time
}

// NewMongo connects to uri, checks the connection and ensures the unique
// key index on the papers collection of database.
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging MongoDB: %w", err)
	}

	m := &Mongo{
		client: client,
		papers: client.Database(database).Collection(collectionName),
		now:    time.Now,
	}
	if err := m.createIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	return m, nil
}

func (m *Mongo) createIndexes(ctx context.Context) error {
	_, err := m.papers.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "title_key", Value: 1}, {Key: "author_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("paper_key"),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}
	return nil
}

// Close disconnects from the server.
func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// CreatePaper inserts p. It returns false without error when a paper with
// the same key (or ID) is already stored.
func (m *Mongo) CreatePaper(ctx context.Context, p types.Paper) (bool, error) {
	if err := validate(p); err != nil {
		return false, err
	}
	_, err := m.papers.InsertOne(ctx, toRow(p, m.now()))
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("inserting paper: %w", err)
	}
	return true, nil
}

// AllPapers returns every stored paper in insertion order.
func (m *Mongo) AllPapers(ctx context.Context) ([]types.Paper, error) {
	cursor, err := m.papers.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	var rows []paperRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decoding papers: %w", err)
	}
	papers := make([]types.Paper, len(rows))
	for i, r := range rows {
		papers[i] = r.paper()
	}
	return papers, nil
}

// Keys returns the deduplication key of every stored paper.
func (m *Mongo) Keys(ctx context.Context) ([]types.Key, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 0, "title_key": 1, "author_key": 1})
	cursor, err := m.papers.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing paper keys: %w", err)
	}
	defer cursor.Close(ctx)

	var keys []types.Key
	for cursor.Next(ctx) {
		var k struct {
			Title  string `bson:"title_key"`
			Author string `bson:"author_key"`
		}
		if err := cursor.Decode(&k); err != nil {
			return nil, fmt.Errorf("decoding paper key: %w", err)
		}
		keys = append(keys, types.Key{Title: k.Title, Author: k.Author})
	}
	return keys, cursor.Err()
}

// Count returns the number of stored papers.
func (m *Mongo) Count(ctx context.Context) (int, error) {
	n, err := m.papers.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("counting papers: %w", err)
	}
	return int(n), nil
}
