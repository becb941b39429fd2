package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrNoID     = errors.New("document record has no string _id")
)

// Repository persists document records keyed by their "_id" field.
// Save is an upsert.
type Repository interface {
	Save(ctx context.Context, rec bson.M) error
	Get(ctx context.Context, id string) (bson.M, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
}

func recordID(rec bson.M) (string, error) {
	id, ok := rec["_id"].(string)
	if !ok || id == "" {
		return "", ErrNoID
	}
	return id, nil
}

// encode and decode round-trip records through BSON so every backend hands
// back the same decoded shapes a Mongo read would.
func encode(rec bson.M) ([]byte, error) {
	b, err := bson.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return b, nil
}

func decode(b []byte) (bson.M, error) {
	var rec bson.M
	if err := bson.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}
