package service

import (
	"clausecheck/internal/model"
	"sort"
)

// GlobalGapEvidence is the evidence text attached to evaluations synthesized
// from the completeness evaluator's surviving blanket claims
const GlobalGapEvidence = "flagged as not addressed anywhere in the contract"

// AggregatorService inverts the per-section view into a per-requirement view
// and flags conflicts
type AggregatorService struct{}

// NewAggregatorService creates a new aggregator
func NewAggregatorService() *AggregatorService {
	return &AggregatorService{}
}

// Aggregate groups evaluations by requirement id. Only requirements with at
// least one insufficient or missing evaluation get an aggregate; a section's
// satisfied vote is attached only when such an aggregate already exists, so
// satisfied-only requirements never reach the resolver. Surviving global
// gaps enter as section-less missing evaluations so downstream stages handle
// them uniformly. O(total evaluations) via a hash map keyed by requirement id.
func (s *AggregatorService) Aggregate(normalized *model.NormalizedState) *model.AggregatedState {
	byID := make(map[string]*model.RequirementAggregate)
	var order []string

	get := func(id string) *model.RequirementAggregate {
		agg, ok := byID[id]
		if !ok {
			agg = &model.RequirementAggregate{RequirementID: id}
			byID[id] = agg
			order = append(order, id)
		}
		return agg
	}

	for _, section := range normalized.Sections {
		for _, ev := range section.Evaluations {
			if ev.Status == model.StatusSatisfied {
				continue
			}
			agg := get(ev.RequirementID)
			agg.Evaluations = append(agg.Evaluations, ev)
		}
	}

	// Second pass: cross-section satisfied votes for already-contested
	// requirements feed the resolver's priority rule
	for _, section := range normalized.Sections {
		for _, ev := range section.Evaluations {
			if ev.Status != model.StatusSatisfied {
				continue
			}
			if agg, ok := byID[ev.RequirementID]; ok {
				agg.Evaluations = append(agg.Evaluations, ev)
			}
		}
	}

	for _, id := range normalized.GlobalGaps {
		agg := get(id)
		agg.Evaluations = append(agg.Evaluations, model.Evaluation{
			RequirementID: id,
			Status:        model.StatusMissing,
			Evidence:      GlobalGapEvidence,
			Confidence:    1,
		})
	}

	sort.Strings(order)
	state := &model.AggregatedState{Aggregates: make([]model.RequirementAggregate, 0, len(order))}
	for _, id := range order {
		agg := byID[id]
		agg.Conflict = len(agg.Statuses()) > 1
		state.Aggregates = append(state.Aggregates, *agg)
	}
	return state
}
