package model

// Correction actions recorded during resolution
const (
	CorrectionExcluded   = "excluded"   // a satisfied vote won; requirement dropped from the report
	CorrectionArbitrated = "arbitrated" // the oracle broke an insufficient-vs-missing conflict
	CorrectionFallback   = "fallback"   // oracle unavailable; deterministic priority rule applied
)

// Correction is one entry in the resolution correction log
type Correction struct {
	RequirementID string `json:"requirementId" bson:"requirementId"`
	Action        string `json:"action" bson:"action"`
	Detail        string `json:"detail" bson:"detail"`
}

// ResolvedRequirement is the final record per non-satisfied requirement.
// Requirements resolved to satisfied are never materialized. Sections is
// empty for pure global gaps.
type ResolvedRequirement struct {
	RequirementID string   `json:"requirementId" bson:"requirementId"`
	FinalStatus   Status   `json:"finalStatus" bson:"finalStatus"`
	Analysis      string   `json:"analysis" bson:"analysis"`
	Sections      []string `json:"sections" bson:"sections"`
}

// ResolutionState is the Resolver output: one verdict per requirement plus
// the correction log, both in requirement-id order
type ResolutionState struct {
	Resolved    []ResolvedRequirement `json:"resolved" bson:"resolved"`
	Corrections []Correction          `json:"corrections,omitempty" bson:"corrections,omitempty"`
}
