package model

// Status is the verdict an evaluator reaches about one requirement
type Status string

const (
	StatusSatisfied    Status = "satisfied"
	StatusInsufficient Status = "insufficient"
	StatusMissing      Status = "missing"
)

// Evaluation is one verdict about one requirement, contributed by one
// evaluator for one contract section. Immutable once created. SectionID is
// empty for verdicts coming from the blanket completeness evaluator.
type Evaluation struct {
	RequirementID string  `json:"requirementId" bson:"requirementId"`
	SectionID     string  `json:"sectionId" bson:"sectionId"`
	Status        Status  `json:"status" bson:"status"`
	Evidence      string  `json:"evidence" bson:"evidence"`
	Confidence    float64 `json:"confidence" bson:"confidence"`
}

// GlobalClaim is one item from the completeness evaluator: a blanket
// "this requirement is missing from the contract" verdict
type GlobalClaim struct {
	RequirementID         string  `json:"requirement_id" bson:"requirementId"`
	IsDefinitivelyMissing bool    `json:"is_definitively_missing" bson:"isDefinitivelyMissing"`
	Confidence            float64 `json:"confidence" bson:"confidence"`
}

// SectionFindings is one item from the content evaluator: per contract
// section, free-text mentions of requirements it judges missing,
// insufficiently covered, or satisfied
type SectionFindings struct {
	SectionID            string   `json:"section_id" bson:"sectionId"`
	MissingMentions      []string `json:"missing_mentions" bson:"missingMentions"`
	InsufficientMentions []string `json:"insufficient_mentions" bson:"insufficientMentions"`
	SatisfiedMentions    []string `json:"satisfied_mentions" bson:"satisfiedMentions"`
}

// ArbitrationRequest is the payload sent to the arbitration oracle for a
// genuine insufficient-vs-missing conflict
type ArbitrationRequest struct {
	RequirementID string       `json:"requirement_id"`
	CanonicalText string       `json:"canonical_text"`
	Evaluations   []Evaluation `json:"evaluations"`
}

// ArbitrationResult is the oracle's verdict with its rationale
type ArbitrationResult struct {
	FinalStatus Status `json:"final_status"`
	Rationale   string `json:"rationale"`
}
