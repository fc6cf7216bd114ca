package service

import (
	"clausecheck/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog() *model.Catalog {
	return model.NewCatalog([]model.CatalogClause{
		{
			ID:    "std:003",
			Title: "Payment terms",
			Items: []model.CatalogItem{
				{ID: "std:003:item:001", Title: "Fees and payment schedule"},
				{ID: "std:003:item:002", Title: "Late payment interest"},
			},
		},
		{
			ID:    "std:005",
			Title: "Confidentiality",
			Items: []model.CatalogItem{
				{ID: "std:005:item:001", Title: "Definition of confidential information"},
			},
		},
		{
			ID:    "std:009",
			Title: "Indemnification",
		},
	})
}

func TestNormalizeExpandsGlobalClaims(t *testing.T) {
	n := NewNormalizerService(newTestCatalog())

	state := n.Normalize([]model.GlobalClaim{
		{RequirementID: "std:005", IsDefinitivelyMissing: true, Confidence: 0.9},
		{RequirementID: "std:009", IsDefinitivelyMissing: false, Confidence: 0.4},
	}, nil)

	assert.Equal(t, []string{"std:005", "std:005:item:001"}, state.GlobalGaps)
	assert.Equal(t, []string{"std:005", "std:005:item:001"}, state.Seen)
	assert.Empty(t, state.ParseFailures)
}

func TestNormalizeSectionMentionOverridesGlobalClaim(t *testing.T) {
	n := NewNormalizerService(newTestCatalog())

	state := n.Normalize(
		[]model.GlobalClaim{
			{RequirementID: "std:005", IsDefinitivelyMissing: true, Confidence: 0.9},
		},
		[]model.SectionFindings{
			{
				SectionID:       "sec-7",
				MissingMentions: []string{"clause 5 is nowhere to be found"},
			},
		},
	)

	// The section-level mention suppresses the blanket claim entirely
	assert.Empty(t, state.GlobalGaps)
	require.Len(t, state.Sections, 1)
	assert.Equal(t, []string{"std:005", "std:005:item:001"}, state.Sections[0].Missing)

	// Dedup invariant: nothing may sit in both views
	for _, gap := range state.GlobalGaps {
		for _, sec := range state.Sections {
			assert.False(t, sec.Has(model.StatusMissing, gap))
			assert.False(t, sec.Has(model.StatusInsufficient, gap))
		}
	}
}

func TestNormalizeSatisfiedMentionDoesNotSuppressGlobalGap(t *testing.T) {
	n := NewNormalizerService(newTestCatalog())

	state := n.Normalize(
		[]model.GlobalClaim{
			{RequirementID: "std:009", IsDefinitivelyMissing: true, Confidence: 0.8},
		},
		[]model.SectionFindings{
			{
				SectionID:         "sec-2",
				SatisfiedMentions: []string{"clause 9 is fully addressed"},
			},
		},
	)

	assert.Equal(t, []string{"std:009"}, state.GlobalGaps)
}

func TestNormalizeSameSectionNegativeBeatsSatisfied(t *testing.T) {
	n := NewNormalizerService(newTestCatalog())

	state := n.Normalize(nil, []model.SectionFindings{
		{
			SectionID:            "sec-4",
			InsufficientMentions: []string{"clause 9 lacks a survival period"},
			SatisfiedMentions:    []string{"clause 9 is present"},
		},
	})

	require.Len(t, state.Sections, 1)
	rec := state.Sections[0]
	assert.Equal(t, []string{"std:009"}, rec.Insufficient)
	assert.Empty(t, rec.Satisfied)

	// the satisfied evaluation is discarded along with the bucket entry
	for _, ev := range rec.Evaluations {
		assert.NotEqual(t, model.StatusSatisfied, ev.Status)
	}
}

func TestNormalizeUnparseableMentionIsPreserved(t *testing.T) {
	n := NewNormalizerService(newTestCatalog())

	state := n.Normalize(nil, []model.SectionFindings{
		{
			SectionID:            "sec-1",
			MissingMentions:      []string{"something about warranties"},
			InsufficientMentions: []string{"clause 3 paragraph 2 has no interest rate"},
		},
	})

	require.Len(t, state.ParseFailures, 1)
	failure := state.ParseFailures[0]
	assert.Equal(t, "sec-1", failure.SectionID)
	assert.Equal(t, "missing", failure.Bucket)
	assert.Equal(t, "something about warranties", failure.RawText)

	// the failure does not abort the pass: the other mention landed
	require.Len(t, state.Sections, 1)
	assert.Equal(t, []string{"std:003:item:002"}, state.Sections[0].Insufficient)
}

func TestNormalizeUnknownReferenceIsPreserved(t *testing.T) {
	n := NewNormalizerService(newTestCatalog())

	state := n.Normalize(nil, []model.SectionFindings{
		{
			SectionID:       "sec-1",
			MissingMentions: []string{"clause 42 is absent"},
		},
	})

	require.Len(t, state.ParseFailures, 1)
	assert.Contains(t, state.ParseFailures[0].Reason, "std:042")
	assert.Empty(t, state.Sections[0].Missing)
}

func TestNormalizeDeduplicatesWithinBucket(t *testing.T) {
	n := NewNormalizerService(newTestCatalog())

	state := n.Normalize(nil, []model.SectionFindings{
		{
			SectionID: "sec-3",
			MissingMentions: []string{
				"clause 9 is absent",
				"still no sign of clause 9",
			},
		},
	})

	require.Len(t, state.Sections, 1)
	assert.Equal(t, []string{"std:009"}, state.Sections[0].Missing)
	assert.Len(t, state.Sections[0].Evaluations, 1)
}

func TestNormalizeSeenCoversAllBuckets(t *testing.T) {
	n := NewNormalizerService(newTestCatalog())

	state := n.Normalize(
		[]model.GlobalClaim{
			{RequirementID: "std:009", IsDefinitivelyMissing: true, Confidence: 1},
		},
		[]model.SectionFindings{
			{
				SectionID:         "sec-1",
				SatisfiedMentions: []string{"clause 5 item 1 is covered"},
				MissingMentions:   []string{"clause 3 item 1 is absent"},
			},
		},
	)

	assert.Equal(t, []string{"std:003:item:001", "std:005:item:001", "std:009"}, state.Seen)
}
