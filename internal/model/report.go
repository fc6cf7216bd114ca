package model

import "time"

// TitleUnavailable is substituted when no title exists for an id
const TitleUnavailable = "(title unavailable)"

// ReportEntry is one finding line in the final report
type ReportEntry struct {
	ID       string `json:"id" bson:"id"`
	Title    string `json:"title" bson:"title"`
	Analysis string `json:"analysis" bson:"analysis"`
}

// ReportSection groups a section's insufficient and missing findings
type ReportSection struct {
	SectionID    string        `json:"section_id" bson:"sectionId"`
	Title        string        `json:"title" bson:"title"`
	Insufficient []ReportEntry `json:"insufficient" bson:"insufficient"`
	Missing      []ReportEntry `json:"missing" bson:"missing"`
}

// ReportSummary counts distinct requirements by final verdict
type ReportSummary struct {
	Total        int `json:"total" bson:"total"`
	Satisfied    int `json:"satisfied" bson:"satisfied"`
	Insufficient int `json:"insufficient" bson:"insufficient"`
	Missing      int `json:"missing" bson:"missing"`
}

// Report is the externally visible artifact. Regenerated wholesale on every
// run; one report per contract.
type Report struct {
	ContractID  string          `json:"contract_id" bson:"contractId"`
	GeneratedAt time.Time       `json:"generated_at" bson:"generatedAt"`
	Summary     ReportSummary   `json:"summary" bson:"summary"`
	GlobalGaps  []ReportEntry   `json:"global_gaps" bson:"globalGaps"`
	Sections    []ReportSection `json:"sections" bson:"sections"`
}
