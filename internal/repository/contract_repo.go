package repository

import (
	"clausecheck/internal/model"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ContractRepo handles MongoDB operations for registered contracts
type ContractRepo interface {
	Create(ctx context.Context, contract *model.Contract) error
	GetByID(ctx context.Context, id string) (*model.Contract, error)
	List(ctx context.Context) ([]model.Contract, error)
}

type contractRepo struct {
	collection *mongo.Collection
}

// NewContractRepo creates a new contract repository
func NewContractRepo(db *mongo.Database) ContractRepo {
	return &contractRepo{
		collection: db.Collection("contracts"),
	}
}

func (r *contractRepo) Create(ctx context.Context, contract *model.Contract) error {
	_, err := r.collection.InsertOne(ctx, contract)
	return err
}

func (r *contractRepo) GetByID(ctx context.Context, id string) (*model.Contract, error) {
	var contract model.Contract
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&contract)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepo) List(ctx context.Context) ([]model.Contract, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var contracts []model.Contract
	if err := cursor.All(ctx, &contracts); err != nil {
		return nil, err
	}
	return contracts, nil
}
