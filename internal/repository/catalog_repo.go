package repository

import (
	"clausecheck/internal/model"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CatalogRepo handles MongoDB operations for the standard-clause catalog
type CatalogRepo interface {
	Upsert(ctx context.Context, clause *model.CatalogClause) error
	LoadAll(ctx context.Context) ([]model.CatalogClause, error)
}

type catalogRepo struct {
	collection *mongo.Collection
}

// NewCatalogRepo creates a new catalog repository
func NewCatalogRepo(db *mongo.Database) CatalogRepo {
	return &catalogRepo{
		collection: db.Collection("catalog"),
	}
}

func (r *catalogRepo) Upsert(ctx context.Context, clause *model.CatalogClause) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": clause.ID}, clause, opts)
	return err
}

// LoadAll returns all clauses in id order. Called once at startup; the
// result is wrapped in an immutable model.Catalog and never reloaded.
func (r *catalogRepo) LoadAll(ctx context.Context) ([]model.CatalogClause, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var clauses []model.CatalogClause
	if err := cursor.All(ctx, &clauses); err != nil {
		return nil, err
	}
	return clauses, nil
}
