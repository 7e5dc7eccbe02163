package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xskcdf/Aquiis-sub005/internal/application/service"
)

type fakeMaintenance struct {
	mu      sync.Mutex
	orgs    []string
	orgsErr error
	reports map[string]service.SweepReport
	errs    map[string]error
	calls   []string
}

func (f *fakeMaintenance) Organizations(ctx context.Context) ([]string, error) {
	return f.orgs, f.orgsErr
}

func (f *fakeMaintenance) Sweep(ctx context.Context, organizationID string) (service.SweepReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, organizationID)
	return f.reports[organizationID], f.errs[organizationID]
}

func (f *fakeMaintenance) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestExpirySweeper_SweepOnce(t *testing.T) {
	fake := &fakeMaintenance{
		orgs: []string{"org-1", "org-2", "org-3"},
		reports: map[string]service.SweepReport{
			"org-1": {ApplicationsExpired: 2, OffersExpired: 1},
			"org-3": {LeasesExpired: 1, LeasesActivated: 4},
		},
		errs: map[string]error{"org-2": errors.New("database is locked")},
	}
	sweeper := NewExpirySweeper(ExpirySweeperConfig{}, fake, zap.NewNop())

	report := sweeper.SweepOnce(context.Background())

	assert.Equal(t, []string{"org-1", "org-2", "org-3"}, fake.calls, "a failing organization does not stop the pass")
	assert.Equal(t, 2, report.ApplicationsExpired)
	assert.Equal(t, 1, report.OffersExpired)
	assert.Equal(t, 1, report.LeasesExpired)
	assert.Equal(t, 4, report.LeasesActivated)

	stats := sweeper.Stats()
	assert.Equal(t, 1, stats.Passes)
	assert.Equal(t, 8, stats.Transitions)
	assert.Equal(t, 1, stats.Failures)
	assert.EqualError(t, stats.LastError, "database is locked")
}

func TestExpirySweeper_OrganizationListFailure(t *testing.T) {
	fake := &fakeMaintenance{orgsErr: errors.New("connection refused")}
	sweeper := NewExpirySweeper(ExpirySweeperConfig{}, fake, zap.NewNop())

	report := sweeper.SweepOnce(context.Background())

	assert.Zero(t, report.Total())
	assert.Empty(t, fake.calls)
	assert.Equal(t, 1, sweeper.Stats().Failures)
}

func TestExpirySweeper_Defaults(t *testing.T) {
	sweeper := NewExpirySweeper(ExpirySweeperConfig{}, &fakeMaintenance{}, zap.NewNop())
	assert.Equal(t, DefaultExpirySweeperConfig(), sweeper.config)
	assert.Equal(t, "ExpirySweeper", sweeper.Name())
}

func TestExpirySweeper_StartStop(t *testing.T) {
	fake := &fakeMaintenance{orgs: []string{"org-1"}}
	sweeper := NewExpirySweeper(ExpirySweeperConfig{Interval: 10 * time.Millisecond, Timeout: time.Second}, fake, zap.NewNop())

	require.NoError(t, sweeper.Start(context.Background()))
	assert.Error(t, sweeper.Start(context.Background()), "second start is refused")

	require.Eventually(t, func() bool { return fake.callCount() >= 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, sweeper.Stop())
	calls := fake.callCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, fake.callCount(), "no sweeps after Stop returns")
	assert.NoError(t, sweeper.Stop())
}

type recordingWorker struct {
	name     string
	startErr error
	events   *[]string
}

func (w *recordingWorker) Start(ctx context.Context) error {
	if w.startErr != nil {
		return w.startErr
	}
	*w.events = append(*w.events, "start:"+w.name)
	return nil
}

func (w *recordingWorker) Stop() error {
	*w.events = append(*w.events, "stop:"+w.name)
	return nil
}

func (w *recordingWorker) Name() string { return w.name }

func TestWorkerManager_Lifecycle(t *testing.T) {
	var events []string
	m := NewWorkerManager(zap.NewNop())
	m.Register(&recordingWorker{name: "a", events: &events})
	m.Register(&recordingWorker{name: "broken", startErr: errors.New("boom"), events: &events})
	m.Register(&recordingWorker{name: "b", events: &events})
	assert.Equal(t, 3, m.GetWorkerCount())

	require.NoError(t, m.StartAll(context.Background()))
	assert.True(t, m.IsRunning())
	assert.Error(t, m.StartAll(context.Background()))

	require.NoError(t, m.StopAll())
	assert.False(t, m.IsRunning())
	assert.Equal(t, []string{"start:a", "start:b", "stop:b", "stop:a"}, events)

	assert.NoError(t, m.StopAll())
}
