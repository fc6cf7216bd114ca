package service

import (
	"bytes"
	"clausecheck/internal/config"
	"clausecheck/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Arbiter is the arbitration oracle consulted to break a genuine
// insufficient-vs-missing conflict. Swappable: rule-based stub when no API
// key is configured (and in tests), Gemini in production.
type Arbiter interface {
	Arbitrate(ctx context.Context, req *model.ArbitrationRequest) (*model.ArbitrationResult, error)
}

// NewArbiter returns the Gemini arbiter when configured, otherwise the
// deterministic rule-based stub
func NewArbiter(cfg *config.ArbiterConfig) Arbiter {
	if cfg.IsEnabled() {
		return NewGeminiArbiter(cfg)
	}
	return NewRuleArbiter()
}

// GeminiArbiter arbitrates conflicts via the Gemini API
type GeminiArbiter struct {
	config *config.ArbiterConfig
	client *http.Client
}

// NewGeminiArbiter creates a new Gemini-backed arbiter
func NewGeminiArbiter(cfg *config.ArbiterConfig) *GeminiArbiter {
	return &GeminiArbiter{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// Arbitrate asks the model for one verdict with a rationale. Errors are
// returned to the caller; the resolver owns retries and the deterministic
// fallback.
func (a *GeminiArbiter) Arbitrate(ctx context.Context, req *model.ArbitrationRequest) (*model.ArbitrationResult, error) {
	prompt := a.buildArbitrationPrompt(req)
	response, err := a.callGemini(ctx, prompt)
	if err != nil {
		return nil, &model.ArbitrationError{RequirementID: req.RequirementID, Err: err}
	}

	var result model.ArbitrationResult
	if err := json.Unmarshal([]byte(response), &result); err != nil {
		return nil, &model.ArbitrationError{RequirementID: req.RequirementID, Err: err}
	}

	switch result.FinalStatus {
	case model.StatusSatisfied, model.StatusInsufficient, model.StatusMissing:
		return &result, nil
	default:
		return nil, &model.ArbitrationError{
			RequirementID: req.RequirementID,
			Err:           fmt.Errorf("unexpected final_status %q", result.FinalStatus),
		}
	}
}

// callGemini makes a request to the Gemini API
func (a *GeminiArbiter) callGemini(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", a.config.ModelEndpoint(), a.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	// Parse Gemini response structure
	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", err
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}

	return "", fmt.Errorf("empty response from Gemini")
}

func (a *GeminiArbiter) buildArbitrationPrompt(req *model.ArbitrationRequest) string {
	var sb strings.Builder
	for _, ev := range req.Evaluations {
		section := ev.SectionID
		if section == "" {
			section = "(completeness evaluator, no section)"
		}
		sb.WriteString(fmt.Sprintf("- Section %s judged it %s: %q\n", section, ev.Status, ev.Evidence))
	}

	return fmt.Sprintf(`You are reconciling conflicting verdicts about whether a contract covers a standard clause. Return ONLY valid JSON matching this schema:
{
  "final_status": "satisfied" or "insufficient" or "missing",
  "rationale": "one or two sentences explaining the verdict"
}

Standard clause %s: %s

Conflicting verdicts:
%s
Decide the single most defensible verdict. "insufficient" means the contract addresses the clause but not adequately; "missing" means it does not address it at all.`,
		req.RequirementID, req.CanonicalText, sb.String())
}

// RuleArbiter is the deterministic stub used without an API key and in
// tests: any insufficient vote means the contract at least touches the
// clause, so insufficient wins over missing.
type RuleArbiter struct{}

// NewRuleArbiter creates the rule-based arbiter
func NewRuleArbiter() *RuleArbiter {
	return &RuleArbiter{}
}

func (a *RuleArbiter) Arbitrate(_ context.Context, req *model.ArbitrationRequest) (*model.ArbitrationResult, error) {
	for _, ev := range req.Evaluations {
		if ev.Status == model.StatusInsufficient {
			return &model.ArbitrationResult{
				FinalStatus: model.StatusInsufficient,
				Rationale:   fmt.Sprintf("section %s reports partial coverage, so the clause is not wholly absent", ev.SectionID),
			}, nil
		}
	}
	return &model.ArbitrationResult{
		FinalStatus: model.StatusMissing,
		Rationale:   "no evaluation reports any coverage of the clause",
	}, nil
}
