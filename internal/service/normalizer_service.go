package service

import (
	"clausecheck/internal/model"
	"sort"
)

// NormalizerService unifies the two evaluator outputs into one addressing
// scheme: a deduplicated global-gap set plus a per-section classification
type NormalizerService struct {
	catalog *model.Catalog
}

// NewNormalizerService creates a new normalizer
func NewNormalizerService(catalog *model.Catalog) *NormalizerService {
	return &NormalizerService{catalog: catalog}
}

// Normalize is a pure function of the submitted evaluator outputs and the
// catalog. Partial references are expanded to their leaf set before being
// stored; a mention that cannot be parsed or resolved is preserved as a
// ParseFailure and never aborts the pass.
func (s *NormalizerService) Normalize(claims []model.GlobalClaim, findings []model.SectionFindings) *model.NormalizedState {
	state := &model.NormalizedState{}
	seen := make(map[string]bool)

	// Blanket claims from the completeness evaluator
	gapSet := make(map[string]bool)
	var gaps []string
	for _, claim := range claims {
		if !claim.IsDefinitivelyMissing {
			continue
		}
		leaves, err := s.catalog.Expand(claim.RequirementID)
		if err != nil {
			state.ParseFailures = append(state.ParseFailures, model.ParseFailure{
				Bucket:  "global",
				RawText: claim.RequirementID,
				Reason:  err.Error(),
			})
			continue
		}
		for _, leaf := range leaves {
			seen[leaf] = true
			if !gapSet[leaf] {
				gapSet[leaf] = true
				gaps = append(gaps, leaf)
			}
		}
	}

	// Per-section free-text findings from the content evaluator
	negMentioned := make(map[string]bool)
	for _, f := range findings {
		record := s.normalizeSection(f, seen, state)
		for _, id := range record.Insufficient {
			negMentioned[id] = true
		}
		for _, id := range record.Missing {
			negMentioned[id] = true
		}
		state.Sections = append(state.Sections, *record)
	}

	// A working claim about section coverage always overrides a blanket
	// global claim: suppress, don't merge.
	state.GlobalGaps = make([]string, 0, len(gaps))
	for _, id := range gaps {
		if !negMentioned[id] {
			state.GlobalGaps = append(state.GlobalGaps, id)
		}
	}
	sort.Strings(state.GlobalGaps)

	state.Seen = make([]string, 0, len(seen))
	for id := range seen {
		state.Seen = append(state.Seen, id)
	}
	sort.Strings(state.Seen)

	return state
}

// normalizeSection classifies one section's mentions into disjoint buckets
func (s *NormalizerService) normalizeSection(f model.SectionFindings, seen map[string]bool, state *model.NormalizedState) *model.SectionRecord {
	record := &model.SectionRecord{SectionID: f.SectionID}
	inBucket := make(map[model.Status]map[string]bool)

	classify := func(mentions []string, bucket string, status model.Status, dst *[]string) {
		if inBucket[status] == nil {
			inBucket[status] = make(map[string]bool)
		}
		for _, mention := range mentions {
			refs, err := ExtractReferences(mention)
			if err != nil {
				state.ParseFailures = append(state.ParseFailures, model.ParseFailure{
					SectionID: f.SectionID,
					Bucket:    bucket,
					RawText:   mention,
					Reason:    err.Error(),
				})
				continue
			}
			for _, ref := range refs {
				leaves, err := s.catalog.Expand(ref)
				if err != nil {
					state.ParseFailures = append(state.ParseFailures, model.ParseFailure{
						SectionID: f.SectionID,
						Bucket:    bucket,
						RawText:   mention,
						Reason:    err.Error(),
					})
					continue
				}
				for _, leaf := range leaves {
					seen[leaf] = true
					if inBucket[status][leaf] {
						continue // same requirement, same section, same status collapses
					}
					inBucket[status][leaf] = true
					*dst = append(*dst, leaf)
					record.Evaluations = append(record.Evaluations, model.Evaluation{
						RequirementID: leaf,
						SectionID:     f.SectionID,
						Status:        status,
						Evidence:      mention,
						Confidence:    1,
					})
				}
			}
		}
	}

	classify(f.MissingMentions, "missing", model.StatusMissing, &record.Missing)
	classify(f.InsufficientMentions, "insufficient", model.StatusInsufficient, &record.Insufficient)
	classify(f.SatisfiedMentions, "satisfied", model.StatusSatisfied, &record.Satisfied)

	// Same-section precedence: an explicit deficiency finding beats the
	// section's own claim of coverage for the same requirement
	negative := make(map[string]bool, len(record.Missing)+len(record.Insufficient))
	for _, id := range record.Missing {
		negative[id] = true
	}
	for _, id := range record.Insufficient {
		negative[id] = true
	}
	if len(negative) > 0 {
		kept := record.Satisfied[:0]
		for _, id := range record.Satisfied {
			if !negative[id] {
				kept = append(kept, id)
			}
		}
		record.Satisfied = kept

		evs := record.Evaluations[:0]
		for _, ev := range record.Evaluations {
			if ev.Status == model.StatusSatisfied && negative[ev.RequirementID] {
				continue
			}
			evs = append(evs, ev)
		}
		record.Evaluations = evs
	}

	return record
}
