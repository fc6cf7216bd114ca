package model

import "time"

// PipelineStatus tracks a contract's progress through the four stages
type PipelineStatus string

const (
	PipelinePending     PipelineStatus = "pending"
	PipelineNormalizing PipelineStatus = "normalizing"
	PipelineAggregating PipelineStatus = "aggregating"
	PipelineResolving   PipelineStatus = "resolving"
	PipelineReporting   PipelineStatus = "reporting"
	PipelineCompleted   PipelineStatus = "completed"
	PipelineFailed      PipelineStatus = "failed"
)

// Contract is a registered contract under verification
type Contract struct {
	ID            string            `json:"id" bson:"_id,omitempty"`
	Name          string            `json:"name" bson:"name"`
	SectionTitles map[string]string `json:"sectionTitles" bson:"sectionTitles"`
	CreatedAt     time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// EvaluatorInput is the pair of upstream evaluator outputs submitted for one
// contract. Replaced wholesale on resubmission.
type EvaluatorInput struct {
	ContractID  string            `json:"contractId" bson:"_id"`
	Claims      []GlobalClaim     `json:"claims" bson:"claims"`
	Sections    []SectionFindings `json:"sections" bson:"sections"`
	SubmittedAt time.Time         `json:"submittedAt" bson:"submittedAt"`
}

// PipelineState is the persisted per-contract pipeline document: four
// independently overwritable stage blobs plus status and error log. A crash
// resumes from the last stage whose blob is present.
type PipelineState struct {
	ContractID string           `json:"contractId" bson:"_id"`
	Status     PipelineStatus   `json:"status" bson:"status"`
	Normalized *NormalizedState `json:"normalized,omitempty" bson:"normalized,omitempty"`
	Aggregated *AggregatedState `json:"aggregated,omitempty" bson:"aggregated,omitempty"`
	Resolved   *ResolutionState `json:"resolved,omitempty" bson:"resolved,omitempty"`
	Report     *Report          `json:"report,omitempty" bson:"report,omitempty"`
	ErrorLog   []string         `json:"errorLog,omitempty" bson:"errorLog,omitempty"`
	UpdatedAt  time.Time        `json:"updatedAt" bson:"updatedAt"`
}
