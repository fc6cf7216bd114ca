package model

// RequirementAggregate inverts the per-section view: every evaluation
// referencing this requirement, from any section, plus the global
// completeness evaluator. Conflict is true iff more than one distinct status
// is present.
type RequirementAggregate struct {
	RequirementID string       `json:"requirementId" bson:"requirementId"`
	Evaluations   []Evaluation `json:"evaluations" bson:"evaluations"`
	Conflict      bool         `json:"conflict" bson:"conflict"`
}

// Statuses returns the distinct statuses among the evaluations, in first
// occurrence order
func (a *RequirementAggregate) Statuses() []Status {
	seen := make(map[Status]bool, 3)
	var out []Status
	for _, ev := range a.Evaluations {
		if !seen[ev.Status] {
			seen[ev.Status] = true
			out = append(out, ev.Status)
		}
	}
	return out
}

// GlobalOnly reports whether no section ever mentioned this requirement
func (a *RequirementAggregate) GlobalOnly() bool {
	for _, ev := range a.Evaluations {
		if ev.SectionID != "" {
			return false
		}
	}
	return true
}

// AggregatedState is the Aggregator output, sorted by requirement id
type AggregatedState struct {
	Aggregates []RequirementAggregate `json:"aggregates" bson:"aggregates"`
}
