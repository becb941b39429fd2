package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/gogotex/nodedoc/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo stores one Mongo document per record, keyed by its string _id.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Save(ctx context.Context, rec bson.M) error {
	id, err := recordID(rec)
	if err != nil {
		return err
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := m.col.ReplaceOne(ctx, bson.M{"_id": id}, rec, opts); err != nil {
		return fmt.Errorf("mongo save %s: %w", id, err)
	}
	metrics.DocumentOps.WithLabelValues("mongo", "save").Inc()
	return nil
}

func (m *MongoRepo) Get(ctx context.Context, id string) (bson.M, error) {
	var rec bson.M
	if err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo get %s: %w", id, err)
	}
	metrics.DocumentOps.WithLabelValues("mongo", "load").Inc()
	return rec, nil
}

func (m *MongoRepo) List(ctx context.Context) ([]string, error) {
	vals, err := m.col.Distinct(ctx, "_id", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongo list: %w", err)
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MongoRepo) Delete(ctx context.Context, id string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongo delete %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	metrics.DocumentOps.WithLabelValues("mongo", "delete").Inc()
	return nil
}
