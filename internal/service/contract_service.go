package service

import (
	"clausecheck/internal/model"
	"clausecheck/internal/repository"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ContractService handles contract registration and evaluator-input intake
type ContractService struct {
	contractRepo repository.ContractRepo
	inputRepo    repository.InputRepo
}

// NewContractService creates a new contract service
func NewContractService(contractRepo repository.ContractRepo, inputRepo repository.InputRepo) *ContractService {
	return &ContractService{
		contractRepo: contractRepo,
		inputRepo:    inputRepo,
	}
}

// Register creates a new contract under verification
func (s *ContractService) Register(ctx context.Context, name string, sectionTitles map[string]string) (*model.Contract, error) {
	if name == "" {
		return nil, fmt.Errorf("contract name is required")
	}

	now := time.Now()
	contract := &model.Contract{
		ID:            uuid.New().String(),
		Name:          name,
		SectionTitles: sectionTitles,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.contractRepo.Create(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to register contract: %w", err)
	}
	return contract, nil
}

// Get returns one contract, or nil if unknown
func (s *ContractService) Get(ctx context.Context, id string) (*model.Contract, error) {
	return s.contractRepo.GetByID(ctx, id)
}

// List returns all registered contracts, newest first
func (s *ContractService) List(ctx context.Context) ([]model.Contract, error) {
	return s.contractRepo.List(ctx)
}

// SubmitInputs stores both evaluator outputs for a contract, replacing any
// previous submission wholesale
func (s *ContractService) SubmitInputs(ctx context.Context, contractID string, claims []model.GlobalClaim, sections []model.SectionFindings) error {
	contract, err := s.contractRepo.GetByID(ctx, contractID)
	if err != nil {
		return err
	}
	if contract == nil {
		return fmt.Errorf("contract %s not found", contractID)
	}

	sectionSeen := make(map[string]bool, len(sections))
	for _, sec := range sections {
		if sec.SectionID == "" {
			return fmt.Errorf("section findings entry without section_id")
		}
		if sectionSeen[sec.SectionID] {
			return fmt.Errorf("duplicate section_id %s in findings", sec.SectionID)
		}
		sectionSeen[sec.SectionID] = true
	}

	input := &model.EvaluatorInput{
		ContractID:  contractID,
		Claims:      claims,
		Sections:    sections,
		SubmittedAt: time.Now(),
	}
	return s.inputRepo.Save(ctx, input)
}
