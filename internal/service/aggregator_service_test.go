package service

import (
	"clausecheck/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sectionWith(sectionID string, status model.Status, ids ...string) model.SectionRecord {
	rec := model.SectionRecord{SectionID: sectionID}
	for _, id := range ids {
		switch status {
		case model.StatusSatisfied:
			rec.Satisfied = append(rec.Satisfied, id)
		case model.StatusInsufficient:
			rec.Insufficient = append(rec.Insufficient, id)
		case model.StatusMissing:
			rec.Missing = append(rec.Missing, id)
		}
		rec.Evaluations = append(rec.Evaluations, model.Evaluation{
			RequirementID: id,
			SectionID:     sectionID,
			Status:        status,
			Evidence:      "mention of " + id + " in " + sectionID,
			Confidence:    1,
		})
	}
	return rec
}

func TestAggregateInvertsSections(t *testing.T) {
	agg := NewAggregatorService()

	state := agg.Aggregate(&model.NormalizedState{
		Sections: []model.SectionRecord{
			sectionWith("sec-1", model.StatusMissing, "std:003"),
			sectionWith("sec-2", model.StatusInsufficient, "std:003"),
		},
	})

	require.Len(t, state.Aggregates, 1)
	a := state.Aggregates[0]
	assert.Equal(t, "std:003", a.RequirementID)
	require.Len(t, a.Evaluations, 2)
	assert.True(t, a.Conflict)
}

func TestAggregateNoConflictSingleStatus(t *testing.T) {
	agg := NewAggregatorService()

	state := agg.Aggregate(&model.NormalizedState{
		Sections: []model.SectionRecord{
			sectionWith("sec-1", model.StatusMissing, "std:003"),
			sectionWith("sec-2", model.StatusMissing, "std:003"),
		},
	})

	require.Len(t, state.Aggregates, 1)
	assert.False(t, state.Aggregates[0].Conflict)
}

func TestAggregateSatisfiedOnlyIsDropped(t *testing.T) {
	agg := NewAggregatorService()

	state := agg.Aggregate(&model.NormalizedState{
		Sections: []model.SectionRecord{
			sectionWith("sec-1", model.StatusSatisfied, "std:005"),
		},
	})

	assert.Empty(t, state.Aggregates)
}

func TestAggregateSatisfiedVoteJoinsContestedRequirement(t *testing.T) {
	agg := NewAggregatorService()

	state := agg.Aggregate(&model.NormalizedState{
		Sections: []model.SectionRecord{
			sectionWith("sec-1", model.StatusInsufficient, "std:005"),
			sectionWith("sec-2", model.StatusSatisfied, "std:005"),
		},
	})

	require.Len(t, state.Aggregates, 1)
	a := state.Aggregates[0]
	require.Len(t, a.Evaluations, 2)
	assert.True(t, a.Conflict)
	assert.ElementsMatch(t, []model.Status{model.StatusInsufficient, model.StatusSatisfied}, a.Statuses())
}

func TestAggregateGlobalGapsBecomeSectionlessEvaluations(t *testing.T) {
	agg := NewAggregatorService()

	state := agg.Aggregate(&model.NormalizedState{
		GlobalGaps: []string{"std:009"},
	})

	require.Len(t, state.Aggregates, 1)
	a := state.Aggregates[0]
	assert.True(t, a.GlobalOnly())
	require.Len(t, a.Evaluations, 1)
	assert.Equal(t, model.StatusMissing, a.Evaluations[0].Status)
	assert.Equal(t, "", a.Evaluations[0].SectionID)
	assert.Equal(t, GlobalGapEvidence, a.Evaluations[0].Evidence)
}

func TestAggregateSortedByRequirementID(t *testing.T) {
	agg := NewAggregatorService()

	state := agg.Aggregate(&model.NormalizedState{
		Sections: []model.SectionRecord{
			sectionWith("sec-1", model.StatusMissing, "std:009", "std:003"),
		},
	})

	require.Len(t, state.Aggregates, 2)
	assert.Equal(t, "std:003", state.Aggregates[0].RequirementID)
	assert.Equal(t, "std:009", state.Aggregates[1].RequirementID)
}
