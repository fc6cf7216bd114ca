package repository

import (
	"clausecheck/internal/model"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InputRepo handles MongoDB operations for submitted evaluator outputs
type InputRepo interface {
	Save(ctx context.Context, input *model.EvaluatorInput) error
	Get(ctx context.Context, contractID string) (*model.EvaluatorInput, error)
}

type inputRepo struct {
	collection *mongo.Collection
}

// NewInputRepo creates a new evaluator-input repository
func NewInputRepo(db *mongo.Database) InputRepo {
	return &inputRepo{
		collection: db.Collection("evaluator_inputs"),
	}
}

// Save replaces any previous submission for the contract wholesale
func (r *inputRepo) Save(ctx context.Context, input *model.EvaluatorInput) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": input.ContractID}, input, opts)
	return err
}

func (r *inputRepo) Get(ctx context.Context, contractID string) (*model.EvaluatorInput, error) {
	var input model.EvaluatorInput
	err := r.collection.FindOne(ctx, bson.M{"_id": contractID}).Decode(&input)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &input, nil
}
