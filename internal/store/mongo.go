package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCollection stores T in a MongoDB collection. T must map its id field to "_id".
type MongoCollection[T any] struct {
	coll *mongo.Collection
}

func NewMongoCollection[T any](coll *mongo.Collection) *MongoCollection[T] {
	return &MongoCollection[T]{coll: coll}
}

func (c *MongoCollection[T]) Insert(ctx context.Context, _ string, doc *T) error {
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("store: insert into %s: %w", c.coll.Name(), err)
	}
	return nil
}

func (c *MongoCollection[T]) Get(ctx context.Context, id string) (*T, error) {
	var doc T
	if err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get %s/%s: %w", c.coll.Name(), id, err)
	}
	return &doc, nil
}

func (c *MongoCollection[T]) Find(ctx context.Context, q Query) ([]T, error) {
	cursor, err := c.coll.Aggregate(ctx, findPipeline(q))
	if err != nil {
		return nil, fmt.Errorf("store: find in %s: %w", c.coll.Name(), err)
	}

	docs := make([]T, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", c.coll.Name(), err)
	}
	return docs, nil
}

func (c *MongoCollection[T]) Update(ctx context.Context, id string, set map[string]any, unset ...string) (*T, error) {
	update := updateDocument(set, unset)
	if len(update) == 0 {
		return c.Get(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc T
	err := c.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("store: update %s/%s: %w", c.coll.Name(), id, err)
	}
	return &doc, nil
}

func (c *MongoCollection[T]) Replace(ctx context.Context, id string, doc *T) error {
	res, err := c.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("store: replace %s/%s: %w", c.coll.Name(), id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoCollection[T]) Delete(ctx context.Context, id string) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("store: delete %s/%s: %w", c.coll.Name(), id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoCollection[T]) Count(ctx context.Context, filter map[string]any) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, mongoFilter(Query{Filter: filter}))
	if err != nil {
		return 0, fmt.Errorf("store: count %s: %w", c.coll.Name(), err)
	}
	return n, nil
}

// sortMissingField is a temporary field used to order documents without the sort field last.
const sortMissingField = "__sortMissing"

func mongoFilter(q Query) bson.M {
	filter := bson.M{}
	for k, v := range q.Filter {
		filter[k] = v
	}
	for _, path := range q.Exists {
		filter[path] = bson.M{"$exists": true, "$ne": nil}
	}
	return filter
}

// findPipeline matches q and orders by q.OrderBy with missing or null values last in both directions.
// A descending sort already places them last; an ascending one needs the extra flag.
func findPipeline(q Query) mongo.Pipeline {
	pipeline := mongo.Pipeline{{{Key: "$match", Value: mongoFilter(q)}}}
	if q.OrderBy == "" {
		return pipeline
	}

	if q.Desc {
		return append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: q.OrderBy, Value: -1}}}})
	}

	return append(pipeline,
		bson.D{{Key: "$addFields", Value: bson.M{
			sortMissingField: bson.M{"$eq": bson.A{bson.M{"$ifNull": bson.A{"$" + q.OrderBy, nil}}, nil}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: sortMissingField, Value: 1}, {Key: q.OrderBy, Value: 1}}}},
		bson.D{{Key: "$project", Value: bson.M{sortMissingField: 0}}},
	)
}

// updateDocument builds a single $set/$unset update so both apply atomically to one document.
func updateDocument(set map[string]any, unset []string) bson.M {
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = bson.M(set)
	}
	if len(unset) > 0 {
		fields := bson.M{}
		for _, f := range unset {
			fields[f] = ""
		}
		update["$unset"] = fields
	}
	return update
}
