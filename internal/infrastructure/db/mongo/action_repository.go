package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mergington/activity-board/internal/core/domain"
	"github.com/mergington/activity-board/internal/core/ports"
)

const actionsCollection = "board_actions"

// ActionRepository implements ports.ActionRepository using MongoDB.
type ActionRepository struct {
	db *mongo.Database
}

// NewActionRepository creates a new ActionRepository.
func NewActionRepository(db *mongo.Database) ports.ActionRepository {
	return &ActionRepository{db: db}
}

// EnsureIndexes creates the per-browser lookup index on the audit collection.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(actionsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "client_id", Value: 1}, {Key: "at", Value: -1}},
		Options: options.Index().SetName("client_id_at"),
	})
	if err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	return nil
}

// Insert persists one action to the board_actions audit collection.
func (r *ActionRepository) Insert(ctx context.Context, rec *domain.ActionRecord) error {
	if _, err := r.db.Collection(actionsCollection).InsertOne(ctx, actionDocument(rec)); err != nil {
		return fmt.Errorf("insert action: %w", err)
	}
	return nil
}

// actionDocument maps rec to its stored shape. Empty optional fields are
// left out.
func actionDocument(rec *domain.ActionRecord) bson.M {
	doc := bson.M{
		"client_id": rec.ClientID,
		"command":   string(rec.Command),
		"result":    string(rec.Result),
		"message":   rec.Message,
		"at":        rec.At.UTC(),
	}
	if rec.Activity != "" {
		doc["activity"] = rec.Activity
	}
	if rec.Email != "" {
		doc["email"] = rec.Email
	}
	if rec.Actor != "" {
		doc["actor"] = rec.Actor
	}
	return doc
}
