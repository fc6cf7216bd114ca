package service

import (
	"clausecheck/internal/config"
	"clausecheck/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArbiterSelection(t *testing.T) {
	rule := NewArbiter(&config.ArbiterConfig{})
	assert.IsType(t, &RuleArbiter{}, rule)

	gemini := NewArbiter(&config.ArbiterConfig{APIKey: "key"})
	assert.IsType(t, &GeminiArbiter{}, gemini)
}

func TestRuleArbiterInsufficientWins(t *testing.T) {
	a := NewRuleArbiter()

	result, err := a.Arbitrate(context.Background(), &model.ArbitrationRequest{
		RequirementID: "std:005",
		Evaluations: []model.Evaluation{
			{SectionID: "sec-2", Status: model.StatusMissing, Evidence: "absent"},
			{SectionID: "sec-1", Status: model.StatusInsufficient, Evidence: "thin"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, model.StatusInsufficient, result.FinalStatus)
	assert.Contains(t, result.Rationale, "sec-1")
}

func TestRuleArbiterMissingWhenUncontested(t *testing.T) {
	a := NewRuleArbiter()

	result, err := a.Arbitrate(context.Background(), &model.ArbitrationRequest{
		RequirementID: "std:009",
		Evaluations: []model.Evaluation{
			{SectionID: "sec-1", Status: model.StatusMissing, Evidence: "absent"},
			{SectionID: "", Status: model.StatusMissing, Evidence: GlobalGapEvidence},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, model.StatusMissing, result.FinalStatus)
}
