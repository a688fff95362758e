package jobs_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/memory/ordercache"
	"fulfillment/internal/adapters/out/memory/relayqueue"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/menu"
	"fulfillment/internal/core/domain/model/relay"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/jobs"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/keylock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCentralRelay struct{ mock.Mock }

func (m *MockCentralRelay) SubmitDecision(ctx context.Context, d relay.Decision) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockCentralRelay) SubmitMenuChange(ctx context.Context, c menu.Change) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

type stubRegistry struct {
	sweptWith time.Duration
}

func (s *stubRegistry) AddConnection(string, string, ports.Transport) bool { return true }
func (s *stubRegistry) RemoveConnection(string, string, ports.Transport) {}
func (s *stubRegistry) ConnectionCount(string) int { return 0 }

func (s *stubRegistry) SweepStale(maxAge time.Duration) int {
	s.sweptWith = maxAge
	return 2
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func TestDecisionRelayJob_RunOnce(t *testing.T) {
	ctx := t.Context()
	queue := relayqueue.NewDecisionQueue(5, clock)
	queue.Enqueue(relay.Decision{TenantID: "butcher-1", OrderNo: "1"})

	central := new(MockCentralRelay)
	central.On("SubmitDecision", ctx, mock.Anything).Return(nil).Once()

	handler := commands.NewRetryDecisionRelaysCommandHandler(central, queue, discardLogger())
	job := jobs.NewDecisionRelayJob(handler, "@every 1m", discardLogger())
	job.RunOnce(ctx)

	assert.Zero(t, queue.Len())
	central.AssertExpectations(t)
}

func TestMenuChangeRelayJob_RunOnce(t *testing.T) {
	ctx := t.Context()
	queue := relayqueue.NewMenuChangeQueue(5, clock)
	change, err := menu.NewChange("butcher-1", "ribeye", "Ribeye", 100, true, now)
	require.NoError(t, err)
	queue.Enqueue(change)

	central := new(MockCentralRelay)
	central.On("SubmitMenuChange", ctx, change).
		Return(errs.NewRelayUnavailableError("menu change", 503, nil)).Once()

	handler := commands.NewRetryMenuChangeRelaysCommandHandler(central, queue, discardLogger())
	job := jobs.NewMenuChangeRelayJob(handler, "@every 30s", discardLogger())
	job.RunOnce(ctx)
	job.RunOnce(ctx)

	items := queue.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].RetryCount, "the second pass falls inside the backoff window")
	central.AssertExpectations(t)
}

func TestHousekeepingJob_RunOnce(t *testing.T) {
	registry := &stubRegistry{}
	cache := ordercache.New()

	job := jobs.NewHousekeepingJob(
		commands.NewSweepStaleConnectionsCommandHandler(registry),
		commands.NewPurgeFinishedOrdersCommandHandler(cache, keylock.New(), clock),
		jobs.HousekeepingConfig{
			Schedule:          "@every 30m",
			ConnectionMaxAge:  time.Hour,
			FinishedRetention: 24 * time.Hour,
		},
		discardLogger(),
	)
	job.RunOnce(t.Context())

	assert.Equal(t, time.Hour, registry.sweptWith)
}

func TestJobManager_StartAll_InvalidScheduleStopsStartedJobs(t *testing.T) {
	central := new(MockCentralRelay)
	decisionJob := jobs.NewDecisionRelayJob(
		commands.NewRetryDecisionRelaysCommandHandler(central, relayqueue.NewDecisionQueue(5, clock), discardLogger()),
		"@every 1h",
		discardLogger(),
	)
	menuJob := jobs.NewMenuChangeRelayJob(
		commands.NewRetryMenuChangeRelaysCommandHandler(central, relayqueue.NewMenuChangeQueue(5, clock), discardLogger()),
		"not a schedule",
		discardLogger(),
	)
	housekeeping := jobs.NewHousekeepingJob(
		commands.NewSweepStaleConnectionsCommandHandler(&stubRegistry{}),
		commands.NewPurgeFinishedOrdersCommandHandler(ordercache.New(), keylock.New(), clock),
		jobs.HousekeepingConfig{Schedule: "@every 1h", ConnectionMaxAge: time.Hour, FinishedRetention: time.Hour},
		discardLogger(),
	)

	manager := jobs.NewJobManager(decisionJob, menuJob, housekeeping, discardLogger())
	err := manager.StartAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "menu change relay")
}

func TestJobManager_StartAndStop(t *testing.T) {
	central := new(MockCentralRelay)
	manager := jobs.NewJobManager(
		jobs.NewDecisionRelayJob(
			commands.NewRetryDecisionRelaysCommandHandler(central, relayqueue.NewDecisionQueue(5, clock), discardLogger()),
			"@every 1h",
			discardLogger(),
		),
		jobs.NewMenuChangeRelayJob(
			commands.NewRetryMenuChangeRelaysCommandHandler(central, relayqueue.NewMenuChangeQueue(5, clock), discardLogger()),
			"@every 1h",
			discardLogger(),
		),
		jobs.NewHousekeepingJob(
			commands.NewSweepStaleConnectionsCommandHandler(&stubRegistry{}),
			commands.NewPurgeFinishedOrdersCommandHandler(ordercache.New(), keylock.New(), clock),
			jobs.HousekeepingConfig{Schedule: "@every 1h", ConnectionMaxAge: time.Hour, FinishedRetention: time.Hour},
			discardLogger(),
		),
		discardLogger(),
	)

	require.NoError(t, manager.StartAll())
	manager.StopAll()
}
