package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const queryTimeout = 5 * time.Second

type MongoRepository[T any] struct {
	collection *mongo.Collection
}

func NewMongoRepository[T any](collection *mongo.Collection) *MongoRepository[T] {
	return &MongoRepository[T]{collection: collection}
}

func (r *MongoRepository[T]) Create(ctx context.Context, document interface{}) (*mongo.InsertOneResult, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return r.collection.InsertOne(ctx, document)
}

// Read a document by filter
func (r *MongoRepository[T]) Read(ctx context.Context, filter interface{}) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var result T
	err := r.collection.FindOne(ctx, filter).Decode(&result)
	return result, err
}

// Update a document
func (r *MongoRepository[T]) Update(ctx context.Context, filter interface{}, update interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": update})
	return err
}

func (r *MongoRepository[T]) Upsert(ctx context.Context, filter interface{}, update interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": update}, opts)
	return err
}

// Delete a document
func (r *MongoRepository[T]) Delete(ctx context.Context, filter interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, filter)
	return err
}

func (r *MongoRepository[T]) FindAll(ctx context.Context, filter interface{}) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []T
	for cursor.Next(ctx) {
		var entity T
		if err := cursor.Decode(&entity); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, cursor.Err()
}

func (r *MongoRepository[T]) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return r.collection.CountDocuments(ctx, filter)
}
