package repository

import (
	"clausecheck/internal/model"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PipelineRepo handles MongoDB operations for per-contract pipeline state.
// Each stage blob is independently overwritable so a crashed run can resume
// from the last stage whose output was persisted.
type PipelineRepo interface {
	Init(ctx context.Context, contractID string) error
	Get(ctx context.Context, contractID string) (*model.PipelineState, error)
	SetStatus(ctx context.Context, contractID string, status model.PipelineStatus) error
	SaveNormalized(ctx context.Context, contractID string, state *model.NormalizedState) error
	SaveAggregated(ctx context.Context, contractID string, state *model.AggregatedState) error
	SaveResolved(ctx context.Context, contractID string, state *model.ResolutionState) error
	SaveReport(ctx context.Context, contractID string, report *model.Report) error
	AppendError(ctx context.Context, contractID string, msg string) error
}

type pipelineRepo struct {
	collection *mongo.Collection
}

// NewPipelineRepo creates a new pipeline-state repository
func NewPipelineRepo(db *mongo.Database) PipelineRepo {
	return &pipelineRepo{
		collection: db.Collection("pipeline_states"),
	}
}

// Init resets the contract's state to a fresh pending document, clearing all
// stage blobs and the error log
func (r *pipelineRepo) Init(ctx context.Context, contractID string) error {
	state := &model.PipelineState{
		ContractID: contractID,
		Status:     model.PipelinePending,
		UpdatedAt:  time.Now(),
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": contractID}, state, opts)
	return err
}

func (r *pipelineRepo) Get(ctx context.Context, contractID string) (*model.PipelineState, error) {
	var state model.PipelineState
	err := r.collection.FindOne(ctx, bson.M{"_id": contractID}).Decode(&state)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *pipelineRepo) SetStatus(ctx context.Context, contractID string, status model.PipelineStatus) error {
	return r.set(ctx, contractID, bson.M{"status": status})
}

func (r *pipelineRepo) SaveNormalized(ctx context.Context, contractID string, state *model.NormalizedState) error {
	return r.set(ctx, contractID, bson.M{"normalized": state})
}

func (r *pipelineRepo) SaveAggregated(ctx context.Context, contractID string, state *model.AggregatedState) error {
	return r.set(ctx, contractID, bson.M{"aggregated": state})
}

func (r *pipelineRepo) SaveResolved(ctx context.Context, contractID string, state *model.ResolutionState) error {
	return r.set(ctx, contractID, bson.M{"resolved": state})
}

func (r *pipelineRepo) SaveReport(ctx context.Context, contractID string, report *model.Report) error {
	return r.set(ctx, contractID, bson.M{"report": report})
}

func (r *pipelineRepo) AppendError(ctx context.Context, contractID string, msg string) error {
	opts := options.Update().SetUpsert(true)
	update := bson.M{
		"$push": bson.M{"errorLog": msg},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": contractID}, update, opts)
	return err
}

func (r *pipelineRepo) set(ctx context.Context, contractID string, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": contractID}, bson.M{"$set": fields}, opts)
	return err
}
