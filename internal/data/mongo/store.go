package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
	"github.com/LeskaProgrammer/KPO/internal/store"
)

// Codec converts between a domain entity and its stored document
type Codec[T any, D any] struct {
	ToDocument   func(entity T) (D, error)
	FromDocument func(doc D) (T, error)
}

// Store is a BackingStore over one collection. Documents are keyed by _id.
type Store[T store.Entity[T], D any] struct {
	collection *mongo.Collection
	entity     string
	codec      Codec[T, D]
	logger     *slog.Logger
}

func NewStore[T store.Entity[T], D any](logger *slog.Logger, db *mongo.Database, collection, entity string, codec Codec[T, D]) *Store[T, D] {
	return &Store[T, D]{
		collection: db.Collection(collection),
		entity:     entity,
		codec:      codec,
		logger:     logger.With("collection", collection),
	}
}

func (s *Store[T, D]) Get(ctx context.Context, id string) (T, bool, error) {
	var (
		zero T
		doc  D
	)
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, false, nil
		}
		s.logger.Error("Failed to get document", "id", id, "error", err)
		return zero, false, fmt.Errorf("failed to get %s: %w", s.entity, err)
	}

	entity, err := s.codec.FromDocument(doc)
	if err != nil {
		return zero, false, fmt.Errorf("failed to decode %s %s: %w", s.entity, id, err)
	}
	return entity, true, nil
}

func (s *Store[T, D]) GetAll(ctx context.Context) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		s.logger.Error("Failed to list documents", "error", err)
		return nil, fmt.Errorf("failed to list %s: %w", s.entity, err)
	}
	defer cursor.Close(ctx)

	var docs []D
	if err := cursor.All(ctx, &docs); err != nil {
		s.logger.Error("Failed to decode documents", "error", err)
		return nil, fmt.Errorf("failed to decode %s documents: %w", s.entity, err)
	}

	entities := make([]T, 0, len(docs))
	for _, doc := range docs {
		entity, err := s.codec.FromDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", s.entity, err)
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

func (s *Store[T, D]) Add(ctx context.Context, entity T) error {
	doc, err := s.codec.ToDocument(entity)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", s.entity, entity.Key(), err)
	}

	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return shared.ErrDuplicateKey{Entity: s.entity, ID: entity.Key()}
		}
		s.logger.Error("Failed to insert document", "id", entity.Key(), "error", err)
		return fmt.Errorf("failed to insert %s: %w", s.entity, err)
	}
	return nil
}

func (s *Store[T, D]) Update(ctx context.Context, entity T) error {
	doc, err := s.codec.ToDocument(entity)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", s.entity, entity.Key(), err)
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": entity.Key()}, doc, opts); err != nil {
		s.logger.Error("Failed to replace document", "id", entity.Key(), "error", err)
		return fmt.Errorf("failed to update %s: %w", s.entity, err)
	}
	return nil
}

func (s *Store[T, D]) Remove(ctx context.Context, id string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		s.logger.Error("Failed to delete document", "id", id, "error", err)
		return fmt.Errorf("failed to delete %s: %w", s.entity, err)
	}
	return nil
}
