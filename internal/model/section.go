package model

// SectionRecord is the per contract-section aggregation of its own
// evaluations, partitioned into three disjoint requirement-id sets.
// Created during normalization; read-only thereafter.
type SectionRecord struct {
	SectionID    string       `json:"sectionId" bson:"sectionId"`
	Satisfied    []string     `json:"satisfied" bson:"satisfied"`
	Insufficient []string     `json:"insufficient" bson:"insufficient"`
	Missing      []string     `json:"missing" bson:"missing"`
	Evaluations  []Evaluation `json:"evaluations" bson:"evaluations"`
}

// Has reports whether the given requirement id sits in the given bucket
func (r *SectionRecord) Has(status Status, requirementID string) bool {
	for _, id := range r.bucket(status) {
		if id == requirementID {
			return true
		}
	}
	return false
}

func (r *SectionRecord) bucket(status Status) []string {
	switch status {
	case StatusSatisfied:
		return r.Satisfied
	case StatusInsufficient:
		return r.Insufficient
	default:
		return r.Missing
	}
}

// ParseFailure preserves one free-text item that could not be matched to a
// known reference pattern or resolved in the catalog. Audit side channel;
// never fatal to the pass.
type ParseFailure struct {
	SectionID string `json:"sectionId" bson:"sectionId"`
	Bucket    string `json:"bucket" bson:"bucket"`
	RawText   string `json:"rawText" bson:"rawText"`
	Reason    string `json:"reason" bson:"reason"`
}

// NormalizedState is the Normalizer output: both evaluator views unified into
// one addressing scheme. Sections keep submission order; GlobalGaps and Seen
// are sorted for deterministic persistence.
type NormalizedState struct {
	GlobalGaps    []string        `json:"globalGaps" bson:"globalGaps"`
	Sections      []SectionRecord `json:"sections" bson:"sections"`
	Seen          []string        `json:"seen" bson:"seen"`
	ParseFailures []ParseFailure  `json:"parseFailures,omitempty" bson:"parseFailures,omitempty"`
}

// Section returns the record for a section id, or nil
func (n *NormalizedState) Section(sectionID string) *SectionRecord {
	for i := range n.Sections {
		if n.Sections[i].SectionID == sectionID {
			return &n.Sections[i]
		}
	}
	return nil
}
