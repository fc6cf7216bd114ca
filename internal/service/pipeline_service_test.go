package service

import (
	"clausecheck/internal/model"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContractRepo struct {
	contracts map[string]*model.Contract
}

func (r *fakeContractRepo) Create(_ context.Context, c *model.Contract) error {
	r.contracts[c.ID] = c
	return nil
}

func (r *fakeContractRepo) GetByID(_ context.Context, id string) (*model.Contract, error) {
	return r.contracts[id], nil
}

func (r *fakeContractRepo) List(context.Context) ([]model.Contract, error) {
	out := make([]model.Contract, 0, len(r.contracts))
	for _, c := range r.contracts {
		out = append(out, *c)
	}
	return out, nil
}

type fakeInputRepo struct {
	inputs map[string]*model.EvaluatorInput
	gate   chan struct{} // when non-nil, Get blocks until the gate closes
}

func (r *fakeInputRepo) Save(_ context.Context, in *model.EvaluatorInput) error {
	r.inputs[in.ContractID] = in
	return nil
}

func (r *fakeInputRepo) Get(_ context.Context, contractID string) (*model.EvaluatorInput, error) {
	if r.gate != nil {
		<-r.gate
	}
	return r.inputs[contractID], nil
}

type fakePipelineRepo struct {
	mu    sync.Mutex
	state *model.PipelineState

	inits           int
	savedNormalized int
	savedAggregated int
	savedResolved   int
	savedReports    int

	failSaveNormalized error
}

func (r *fakePipelineRepo) ensure(contractID string) *model.PipelineState {
	if r.state == nil {
		r.state = &model.PipelineState{ContractID: contractID, Status: model.PipelinePending}
	}
	return r.state
}

func (r *fakePipelineRepo) Init(_ context.Context, contractID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inits++
	r.state = &model.PipelineState{ContractID: contractID, Status: model.PipelinePending}
	return nil
}

func (r *fakePipelineRepo) Get(context.Context, string) (*model.PipelineState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == nil {
		return nil, nil
	}
	copied := *r.state
	return &copied, nil
}

func (r *fakePipelineRepo) SetStatus(_ context.Context, contractID string, status model.PipelineStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensure(contractID).Status = status
	return nil
}

func (r *fakePipelineRepo) SaveNormalized(_ context.Context, contractID string, state *model.NormalizedState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSaveNormalized != nil {
		return r.failSaveNormalized
	}
	r.savedNormalized++
	r.ensure(contractID).Normalized = state
	return nil
}

func (r *fakePipelineRepo) SaveAggregated(_ context.Context, contractID string, state *model.AggregatedState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.savedAggregated++
	r.ensure(contractID).Aggregated = state
	return nil
}

func (r *fakePipelineRepo) SaveResolved(_ context.Context, contractID string, state *model.ResolutionState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.savedResolved++
	r.ensure(contractID).Resolved = state
	return nil
}

func (r *fakePipelineRepo) SaveReport(_ context.Context, contractID string, report *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.savedReports++
	r.ensure(contractID).Report = report
	return nil
}

func (r *fakePipelineRepo) AppendError(_ context.Context, contractID string, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.ensure(contractID)
	st.ErrorLog = append(st.ErrorLog, msg)
	return nil
}

type fakeReportRepo struct {
	mu      sync.Mutex
	reports map[string]*model.Report
}

func (r *fakeReportRepo) Save(_ context.Context, report *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[report.ContractID] = report
	return nil
}

func (r *fakeReportRepo) Get(_ context.Context, contractID string) (*model.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reports[contractID], nil
}

type fakeReportCache struct {
	mu      sync.Mutex
	reports map[string]*model.Report
}

func (c *fakeReportCache) Set(_ context.Context, report *model.Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports[report.ContractID] = report
	return nil
}

func (c *fakeReportCache) Get(_ context.Context, contractID string) (*model.Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reports[contractID], nil
}

func (c *fakeReportCache) Delete(_ context.Context, contractID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.reports, contractID)
	return nil
}

type fakeStatusCache struct {
	mu       sync.Mutex
	statuses map[string]model.PipelineStatus
}

func (c *fakeStatusCache) Set(_ context.Context, contractID string, status model.PipelineStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[contractID] = status
	return nil
}

func (c *fakeStatusCache) Get(_ context.Context, contractID string) (model.PipelineStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statuses[contractID], nil
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (b *recordingBroadcaster) BroadcastToContract(_ string, msgType string, _ interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, msgType)
}

func (b *recordingBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.events...)
}

type pipelineFixture struct {
	svc          *PipelineService
	contractRepo *fakeContractRepo
	inputRepo    *fakeInputRepo
	pipelineRepo *fakePipelineRepo
	reportRepo   *fakeReportRepo
	reportCache  *fakeReportCache
	statusCache  *fakeStatusCache
	broadcaster  *recordingBroadcaster
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	catalog := newTestCatalog()

	f := &pipelineFixture{
		contractRepo: &fakeContractRepo{contracts: map[string]*model.Contract{}},
		inputRepo:    &fakeInputRepo{inputs: map[string]*model.EvaluatorInput{}},
		pipelineRepo: &fakePipelineRepo{},
		reportRepo:   &fakeReportRepo{reports: map[string]*model.Report{}},
		reportCache:  &fakeReportCache{reports: map[string]*model.Report{}},
		statusCache:  &fakeStatusCache{statuses: map[string]model.PipelineStatus{}},
		broadcaster:  &recordingBroadcaster{},
	}
	f.svc = NewPipelineService(
		f.contractRepo,
		f.inputRepo,
		f.pipelineRepo,
		f.reportRepo,
		f.reportCache,
		f.statusCache,
		NewNormalizerService(catalog),
		NewAggregatorService(),
		NewResolverService(catalog, &scriptedArbiter{verdicts: map[string]model.ArbitrationResult{
			"std:005": {FinalStatus: model.StatusInsufficient, Rationale: "partially covered"},
		}}, resolverConfig(1)),
		NewReporterService(catalog),
	)
	f.svc.SetBroadcaster(f.broadcaster)

	f.contractRepo.contracts["contract-1"] = testContract()
	f.inputRepo.inputs["contract-1"] = &model.EvaluatorInput{
		ContractID: "contract-1",
		Claims: []model.GlobalClaim{
			{RequirementID: "std:009", IsDefinitivelyMissing: true, Confidence: 0.8},
		},
		Sections: []model.SectionFindings{
			{SectionID: "sec-1", InsufficientMentions: []string{"clause 5 is only partially addressed"}},
			{SectionID: "sec-2", MissingMentions: []string{"no trace of clause 5 here"}},
		},
	}
	return f
}

func TestPipelineRunCompletes(t *testing.T) {
	f := newPipelineFixture(t)

	err := f.svc.Run(context.Background(), "contract-1")
	require.NoError(t, err)

	assert.Equal(t, model.PipelineCompleted, f.pipelineRepo.state.Status)
	assert.Equal(t, 1, f.pipelineRepo.savedNormalized)
	assert.Equal(t, 1, f.pipelineRepo.savedAggregated)
	assert.Equal(t, 1, f.pipelineRepo.savedResolved)
	assert.Equal(t, 1, f.pipelineRepo.savedReports)

	report := f.reportRepo.reports["contract-1"]
	require.NotNil(t, report)
	assert.Equal(t, "contract-1", report.ContractID)
	assert.NotNil(t, f.reportCache.reports["contract-1"])

	events := f.broadcaster.types()
	require.NotEmpty(t, events)
	assert.Equal(t, EventPipelineCompleted, events[len(events)-1])
}

func TestPipelineRunMissingInputFails(t *testing.T) {
	f := newPipelineFixture(t)
	delete(f.inputRepo.inputs, "contract-1")

	err := f.svc.Run(context.Background(), "contract-1")

	var pipelineErr *model.PipelineError
	require.ErrorAs(t, err, &pipelineErr)
	assert.Equal(t, "contract-1", pipelineErr.ContractID)
	assert.Equal(t, "load", pipelineErr.Stage)
	assert.Equal(t, model.PipelineFailed, f.pipelineRepo.state.Status)
	assert.NotEmpty(t, f.pipelineRepo.state.ErrorLog)
	assert.Contains(t, f.broadcaster.types(), EventPipelineFailed)
}

func TestPipelineRunUnknownContract(t *testing.T) {
	f := newPipelineFixture(t)

	err := f.svc.Run(context.Background(), "contract-404")
	assert.Error(t, err)
}

func TestPipelineRunResumesFromPersistedStage(t *testing.T) {
	f := newPipelineFixture(t)

	// a previous run died after persisting the normalize stage
	catalog := newTestCatalog()
	normalized := NewNormalizerService(catalog).Normalize(
		f.inputRepo.inputs["contract-1"].Claims,
		f.inputRepo.inputs["contract-1"].Sections,
	)
	f.pipelineRepo.state = &model.PipelineState{
		ContractID: "contract-1",
		Status:     model.PipelineFailed,
		Normalized: normalized,
	}

	err := f.svc.Run(context.Background(), "contract-1")
	require.NoError(t, err)

	// normalize was not redone; the remaining stages ran once each
	assert.Equal(t, 0, f.pipelineRepo.savedNormalized)
	assert.Equal(t, 1, f.pipelineRepo.savedAggregated)
	assert.Equal(t, 1, f.pipelineRepo.savedResolved)
	assert.Equal(t, 1, f.pipelineRepo.savedReports)
	assert.Equal(t, model.PipelineCompleted, f.pipelineRepo.state.Status)
	assert.Equal(t, 0, f.pipelineRepo.inits)
}

func TestPipelineRerunAfterCompletedStartsFresh(t *testing.T) {
	f := newPipelineFixture(t)

	require.NoError(t, f.svc.Run(context.Background(), "contract-1"))
	require.NoError(t, f.svc.Run(context.Background(), "contract-1"))

	// both runs initialized fresh: no state at all, then a completed state
	assert.Equal(t, 2, f.pipelineRepo.inits)
	assert.Equal(t, 2, f.pipelineRepo.savedNormalized)
	assert.Equal(t, 2, f.pipelineRepo.savedReports)
	assert.Equal(t, model.PipelineCompleted, f.pipelineRepo.state.Status)
}

func TestPipelinePersistFailureSurfacesPersistenceError(t *testing.T) {
	f := newPipelineFixture(t)
	f.pipelineRepo.failSaveNormalized = errors.New("state store down")

	err := f.svc.Run(context.Background(), "contract-1")

	var pipelineErr *model.PipelineError
	require.ErrorAs(t, err, &pipelineErr)
	assert.Equal(t, "normalize", pipelineErr.Stage)
	var persistErr *model.PersistenceError
	assert.ErrorAs(t, err, &persistErr)
	assert.Equal(t, model.PipelineFailed, f.pipelineRepo.state.Status)
}

func TestPipelineCancelledBeforeStage(t *testing.T) {
	f := newPipelineFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.svc.Run(ctx, "contract-1")
	assert.ErrorIs(t, err, context.Canceled)

	// nothing was computed or overwritten
	assert.Equal(t, 0, f.pipelineRepo.savedNormalized)
}

func TestPipelineDispatchRefusesDuplicate(t *testing.T) {
	f := newPipelineFixture(t)
	f.inputRepo.gate = make(chan struct{})

	require.NoError(t, f.svc.Dispatch("contract-1"))
	assert.Error(t, f.svc.Dispatch("contract-1"))

	assert.True(t, f.svc.Cancel("contract-1"))
	close(f.inputRepo.gate)

	// once the run drains, the slot frees up again
	assert.Eventually(t, func() bool {
		return f.svc.Dispatch("contract-1") == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPipelineCancelWithoutRun(t *testing.T) {
	f := newPipelineFixture(t)
	assert.False(t, f.svc.Cancel("contract-1"))
}

func TestPipelineStatusPrefersCache(t *testing.T) {
	f := newPipelineFixture(t)
	f.statusCache.statuses["contract-1"] = model.PipelineResolving

	status, err := f.svc.Status(context.Background(), "contract-1")
	require.NoError(t, err)
	assert.Equal(t, model.PipelineResolving, status)
}

func TestPipelineStatusFallsBackToStore(t *testing.T) {
	f := newPipelineFixture(t)

	status, err := f.svc.Status(context.Background(), "contract-1")
	require.NoError(t, err)
	assert.Equal(t, model.PipelinePending, status)

	f.pipelineRepo.state = &model.PipelineState{ContractID: "contract-1", Status: model.PipelineCompleted}
	status, err = f.svc.Status(context.Background(), "contract-1")
	require.NoError(t, err)
	assert.Equal(t, model.PipelineCompleted, status)
}
