package service

import (
	"clausecheck/internal/config"
	"clausecheck/internal/model"
	"context"
	"log"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/errgroup"
)

// ResolverService turns per-requirement aggregates into one final verdict
// each: deterministic priority first, arbitration oracle for genuine
// insufficient-vs-missing conflicts, deterministic fallback when the oracle
// is unavailable
type ResolverService struct {
	catalog *model.Catalog
	arbiter Arbiter
	config  *config.ArbiterConfig
}

// NewResolverService creates a new resolver
func NewResolverService(catalog *model.Catalog, arbiter Arbiter, cfg *config.ArbiterConfig) *ResolverService {
	return &ResolverService{
		catalog: catalog,
		arbiter: arbiter,
		config:  cfg,
	}
}

// Resolve produces the resolution state for a contract. Oracle calls for
// distinct conflicting requirements are dispatched concurrently under a
// bounded limit and joined before returning; an oracle failure degrades that
// one requirement to the deterministic priority rule, never the whole pass.
// Output order is requirement-id order regardless of completion order.
func (s *ResolverService) Resolve(ctx context.Context, aggregated *model.AggregatedState) *model.ResolutionState {
	type verdict struct {
		result *model.ArbitrationResult
		err    error
	}

	// Find the aggregates that need arbitration: more than one distinct
	// status and none of them satisfied
	needsOracle := make([]int, 0)
	for i := range aggregated.Aggregates {
		agg := &aggregated.Aggregates[i]
		if agg.Conflict && !hasStatus(agg, model.StatusSatisfied) {
			needsOracle = append(needsOracle, i)
		}
	}

	verdicts := make(map[int]verdict, len(needsOracle))
	if len(needsOracle) > 0 {
		results := make([]verdict, len(needsOracle))
		g := &errgroup.Group{}
		g.SetLimit(s.config.MaxInFlight)
		for i, aggIdx := range needsOracle {
			i, aggIdx := i, aggIdx
			g.Go(func() error {
				res, err := s.arbitrate(ctx, &aggregated.Aggregates[aggIdx])
				results[i] = verdict{result: res, err: err}
				return nil
			})
		}
		g.Wait() // join barrier: reporting must not start before this
		for i, aggIdx := range needsOracle {
			verdicts[aggIdx] = results[i]
		}
	}

	state := &model.ResolutionState{}
	for i := range aggregated.Aggregates {
		agg := &aggregated.Aggregates[i]

		if !agg.Conflict {
			status := agg.Evaluations[0].Status
			if status == model.StatusSatisfied {
				// Cannot happen: satisfied-only requirements are never
				// aggregated. Guard anyway.
				state.Corrections = append(state.Corrections, model.Correction{
					RequirementID: agg.RequirementID,
					Action:        model.CorrectionExcluded,
					Detail:        "unanimously satisfied",
				})
				continue
			}
			state.Resolved = append(state.Resolved, s.include(agg, status))
			continue
		}

		if hasStatus(agg, model.StatusSatisfied) {
			// Priority order: satisfied > insufficient > missing
			state.Corrections = append(state.Corrections, model.Correction{
				RequirementID: agg.RequirementID,
				Action:        model.CorrectionExcluded,
				Detail:        "a section reports the clause as covered; satisfied takes priority",
			})
			continue
		}

		v := verdicts[i]
		if v.err != nil {
			// Deterministic fallback among the non-satisfied statuses:
			// insufficient is preferred over missing
			status := model.StatusMissing
			if hasStatus(agg, model.StatusInsufficient) {
				status = model.StatusInsufficient
			}
			log.Printf("arbitration fallback for %s: %v", agg.RequirementID, v.err)
			state.Resolved = append(state.Resolved, s.include(agg, status))
			state.Corrections = append(state.Corrections, model.Correction{
				RequirementID: agg.RequirementID,
				Action:        model.CorrectionFallback,
				Detail:        v.err.Error(),
			})
			continue
		}

		if v.result.FinalStatus == model.StatusSatisfied {
			state.Corrections = append(state.Corrections, model.Correction{
				RequirementID: agg.RequirementID,
				Action:        model.CorrectionExcluded,
				Detail:        v.result.Rationale,
			})
			continue
		}

		state.Resolved = append(state.Resolved, s.include(agg, v.result.FinalStatus))
		state.Corrections = append(state.Corrections, model.Correction{
			RequirementID: agg.RequirementID,
			Action:        model.CorrectionArbitrated,
			Detail:        v.result.Rationale,
		})
	}

	return state
}

// include materializes a ResolvedRequirement under the given status. Only
// the evidence of the first matching-status evaluation in stable input order
// is retained; opposite-status evaluations are discarded.
func (s *ResolverService) include(agg *model.RequirementAggregate, status model.Status) model.ResolvedRequirement {
	resolved := model.ResolvedRequirement{
		RequirementID: agg.RequirementID,
		FinalStatus:   status,
	}
	sectionSeen := make(map[string]bool)
	for _, ev := range agg.Evaluations {
		if ev.Status != status {
			continue
		}
		if resolved.Analysis == "" {
			resolved.Analysis = ev.Evidence
		}
		if ev.SectionID != "" && !sectionSeen[ev.SectionID] {
			sectionSeen[ev.SectionID] = true
			resolved.Sections = append(resolved.Sections, ev.SectionID)
		}
	}
	return resolved
}

// arbitrate calls the oracle with per-attempt timeout, retrying with
// exponential backoff before surfacing a permanent failure
func (s *ResolverService) arbitrate(ctx context.Context, agg *model.RequirementAggregate) (*model.ArbitrationResult, error) {
	canonical, ok := s.catalog.Title(agg.RequirementID)
	if !ok {
		canonical = model.TitleUnavailable
	}
	req := &model.ArbitrationRequest{
		RequirementID: agg.RequirementID,
		CanonicalText: canonical,
		Evaluations:   agg.Evaluations,
	}

	operation := func() (*model.ArbitrationResult, error) {
		callCtx, cancel := context.WithTimeout(ctx, time.Duration(s.config.TimeoutMS)*time.Millisecond)
		defer cancel()
		return s.arbiter.Arbitrate(callCtx, req)
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(s.config.MaxAttempts)),
	)
}

func hasStatus(agg *model.RequirementAggregate, status model.Status) bool {
	for _, ev := range agg.Evaluations {
		if ev.Status == status {
			return true
		}
	}
	return false
}
