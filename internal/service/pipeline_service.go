package service

import (
	"clausecheck/internal/cache"
	"clausecheck/internal/model"
	"clausecheck/internal/repository"
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Pipeline event types pushed to WebSocket subscribers
const (
	EventStageStarted      = "stage_started"
	EventStageCompleted    = "stage_completed"
	EventPipelineCompleted = "pipeline_completed"
	EventPipelineFailed    = "pipeline_failed"
)

// StageEvent is the payload broadcast on stage transitions
type StageEvent struct {
	ContractID string               `json:"contractId"`
	Stage      string               `json:"stage,omitempty"`
	Status     model.PipelineStatus `json:"status"`
}

// PipelineService runs the four reconciliation stages for a contract in
// strict order, persisting state after each stage so a crash resumes from
// the last completed stage. Different contracts run fully in parallel with
// no shared mutable state.
type PipelineService struct {
	contractRepo repository.ContractRepo
	inputRepo    repository.InputRepo
	pipelineRepo repository.PipelineRepo
	reportRepo   repository.ReportRepo
	reportCache  cache.ReportCache
	statusCache  cache.StatusCache

	normalizer  *NormalizerService
	aggregator  *AggregatorService
	resolver    *ResolverService
	reporter    *ReporterService
	broadcaster Broadcaster

	mu      sync.Mutex
	running map[string]context.CancelFunc
}

// NewPipelineService creates a new pipeline service
func NewPipelineService(
	contractRepo repository.ContractRepo,
	inputRepo repository.InputRepo,
	pipelineRepo repository.PipelineRepo,
	reportRepo repository.ReportRepo,
	reportCache cache.ReportCache,
	statusCache cache.StatusCache,
	normalizer *NormalizerService,
	aggregator *AggregatorService,
	resolver *ResolverService,
	reporter *ReporterService,
) *PipelineService {
	return &PipelineService{
		contractRepo: contractRepo,
		inputRepo:    inputRepo,
		pipelineRepo: pipelineRepo,
		reportRepo:   reportRepo,
		reportCache:  reportCache,
		statusCache:  statusCache,
		normalizer:   normalizer,
		aggregator:   aggregator,
		resolver:     resolver,
		reporter:     reporter,
		running:      make(map[string]context.CancelFunc),
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *PipelineService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Dispatch starts a pipeline run for the contract in its own goroutine.
// Returns an error if a run for this contract is already in flight.
func (s *PipelineService) Dispatch(contractID string) error {
	s.mu.Lock()
	if _, ok := s.running[contractID]; ok {
		s.mu.Unlock()
		return fmt.Errorf("pipeline already running for contract %s", contractID)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.running[contractID] = cancel
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.running, contractID)
			s.mu.Unlock()
			cancel()
		}()
		if err := s.Run(ctx, contractID); err != nil {
			log.Printf("pipeline run failed for contract %s: %v", contractID, err)
		}
	}()
	return nil
}

// Cancel aborts an in-flight run between stages. In-flight arbitration calls
// are best-effort aborted and fall back deterministically.
func (s *PipelineService) Cancel(contractID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.running[contractID]; ok {
		cancel()
		return true
	}
	return false
}

// Status returns the contract's pipeline status, preferring the cache
func (s *PipelineService) Status(ctx context.Context, contractID string) (model.PipelineStatus, error) {
	if status, err := s.statusCache.Get(ctx, contractID); err == nil && status != "" {
		return status, nil
	}
	state, err := s.pipelineRepo.Get(ctx, contractID)
	if err != nil {
		return "", err
	}
	if state == nil {
		return model.PipelinePending, nil
	}
	return state.Status, nil
}

// Run executes the stages for one contract. A completed previous run is
// replaced wholesale; a failed or interrupted run resumes from the last
// stage whose output was persisted, since each stage is an idempotent
// function of its inputs.
func (s *PipelineService) Run(ctx context.Context, contractID string) error {
	contract, err := s.contractRepo.GetByID(ctx, contractID)
	if err != nil {
		return s.fail(contractID, "load", err)
	}
	if contract == nil {
		return fmt.Errorf("contract %s not found", contractID)
	}

	input, err := s.inputRepo.Get(ctx, contractID)
	if err != nil {
		return s.fail(contractID, "load", err)
	}
	if input == nil {
		return s.fail(contractID, "load", fmt.Errorf("no evaluator inputs submitted for contract %s", contractID))
	}

	state, err := s.pipelineRepo.Get(ctx, contractID)
	if err != nil {
		return s.fail(contractID, "load", err)
	}
	if state == nil || state.Status == model.PipelineCompleted {
		if err := s.pipelineRepo.Init(ctx, contractID); err != nil {
			return s.fail(contractID, "load", err)
		}
		state = &model.PipelineState{ContractID: contractID, Status: model.PipelinePending}
	}

	if state.Normalized == nil {
		if err := s.stageBarrier(ctx, contractID); err != nil {
			return err
		}
		s.transition(ctx, contractID, model.PipelineNormalizing, "normalize")
		normalized := s.normalizer.Normalize(input.Claims, input.Sections)
		if err := s.persist(ctx, "normalize", func(ctx context.Context) error {
			return s.pipelineRepo.SaveNormalized(ctx, contractID, normalized)
		}); err != nil {
			return s.fail(contractID, "normalize", err)
		}
		state.Normalized = normalized
		s.broadcast(contractID, EventStageCompleted, "normalize", model.PipelineNormalizing)
	}

	if state.Aggregated == nil {
		if err := s.stageBarrier(ctx, contractID); err != nil {
			return err
		}
		s.transition(ctx, contractID, model.PipelineAggregating, "aggregate")
		aggregated := s.aggregator.Aggregate(state.Normalized)
		if err := s.persist(ctx, "aggregate", func(ctx context.Context) error {
			return s.pipelineRepo.SaveAggregated(ctx, contractID, aggregated)
		}); err != nil {
			return s.fail(contractID, "aggregate", err)
		}
		state.Aggregated = aggregated
		s.broadcast(contractID, EventStageCompleted, "aggregate", model.PipelineAggregating)
	}

	if state.Resolved == nil {
		if err := s.stageBarrier(ctx, contractID); err != nil {
			return err
		}
		s.transition(ctx, contractID, model.PipelineResolving, "resolve")
		resolved := s.resolver.Resolve(ctx, state.Aggregated)
		if err := s.persist(ctx, "resolve", func(ctx context.Context) error {
			return s.pipelineRepo.SaveResolved(ctx, contractID, resolved)
		}); err != nil {
			return s.fail(contractID, "resolve", err)
		}
		state.Resolved = resolved
		s.broadcast(contractID, EventStageCompleted, "resolve", model.PipelineResolving)
	}

	if err := s.stageBarrier(ctx, contractID); err != nil {
		return err
	}
	s.transition(ctx, contractID, model.PipelineReporting, "report")
	report := s.reporter.BuildReport(contract, state.Normalized, state.Resolved, time.Now())
	if err := s.persist(ctx, "report", func(ctx context.Context) error {
		if err := s.pipelineRepo.SaveReport(ctx, contractID, report); err != nil {
			return err
		}
		return s.reportRepo.Save(ctx, report)
	}); err != nil {
		return s.fail(contractID, "report", err)
	}

	if err := s.reportCache.Set(ctx, report); err != nil {
		log.Printf("report cache write failed for contract %s: %v", contractID, err)
	}

	s.setStatus(ctx, contractID, model.PipelineCompleted)
	s.broadcast(contractID, EventPipelineCompleted, "", model.PipelineCompleted)
	return nil
}

// stageBarrier enforces inter-stage cancellation: a cancelled contract keeps
// its last persisted stage intact and is re-runnable from there
func (s *PipelineService) stageBarrier(ctx context.Context, contractID string) error {
	if err := ctx.Err(); err != nil {
		log.Printf("pipeline cancelled for contract %s", contractID)
		return err
	}
	return nil
}

func (s *PipelineService) transition(ctx context.Context, contractID string, status model.PipelineStatus, stage string) {
	s.setStatus(ctx, contractID, status)
	s.broadcast(contractID, EventStageStarted, stage, status)
}

func (s *PipelineService) setStatus(ctx context.Context, contractID string, status model.PipelineStatus) {
	if err := s.pipelineRepo.SetStatus(ctx, contractID, status); err != nil {
		log.Printf("status update failed for contract %s: %v", contractID, err)
	}
	if err := s.statusCache.Set(ctx, contractID, status); err != nil {
		log.Printf("status cache write failed for contract %s: %v", contractID, err)
	}
}

// persist retries transient state-store failures with backoff before
// surfacing a PersistenceError
func (s *PipelineService) persist(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, fn(ctx)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(3),
	)
	if err != nil {
		return &model.PersistenceError{Op: op, Err: err}
	}
	return nil
}

// fail marks the contract failed, preserving partial results up to the last
// successfully completed stage
func (s *PipelineService) fail(contractID, stage string, cause error) error {
	err := &model.PipelineError{ContractID: contractID, Stage: stage, Err: cause}
	ctx := context.Background()
	if appendErr := s.pipelineRepo.AppendError(ctx, contractID, err.Error()); appendErr != nil {
		log.Printf("error log append failed for contract %s: %v", contractID, appendErr)
	}
	s.setStatus(ctx, contractID, model.PipelineFailed)
	s.broadcast(contractID, EventPipelineFailed, stage, model.PipelineFailed)
	return err
}

func (s *PipelineService) broadcast(contractID, msgType, stage string, status model.PipelineStatus) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToContract(contractID, msgType, &StageEvent{
		ContractID: contractID,
		Stage:      stage,
		Status:     status,
	})
}
