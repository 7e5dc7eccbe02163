package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xskcdf/Aquiis-sub005/internal/application/service"
)

// ExpirySweeperConfig holds configuration for the expiry sweeper
type ExpirySweeperConfig struct {
	Interval time.Duration
	// Timeout bounds one pass over every organization
	Timeout time.Duration
}

// DefaultExpirySweeperConfig returns default configuration
func DefaultExpirySweeperConfig() ExpirySweeperConfig {
	return ExpirySweeperConfig{
		Interval: 15 * time.Minute,
		Timeout:  5 * time.Minute,
	}
}

// SweeperStats reports what the sweeper has done since it started
type SweeperStats struct {
	Passes      int
	Transitions int
	Failures    int
	LastPass    time.Time
	LastError   error
}

// ExpirySweeper periodically applies time-driven transitions for every organization
type ExpirySweeper struct {
	config      ExpirySweeperConfig
	maintenance service.MaintenanceService
	logger      *zap.Logger

	mu        sync.RWMutex
	cancel    context.CancelFunc
	done      chan struct{}
	isRunning bool
	stats     SweeperStats
}

// NewExpirySweeper creates a new expiry sweeper
func NewExpirySweeper(config ExpirySweeperConfig, maintenance service.MaintenanceService, logger *zap.Logger) *ExpirySweeper {
	defaults := DefaultExpirySweeperConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	return &ExpirySweeper{
		config:      config,
		maintenance: maintenance,
		logger:      logger,
	}
}

// Start begins the sweep loop
func (s *ExpirySweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("expiry sweeper already running")
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.isRunning = true

	s.logger.Info("ExpirySweeper started", zap.Duration("interval", s.config.Interval))

	go s.loop(ctx, s.done)
	return nil
}

// Stop cancels the loop and waits for an in-flight pass to finish
func (s *ExpirySweeper) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done

	stats := s.Stats()
	s.logger.Info("ExpirySweeper stopped",
		zap.Int("passes", stats.Passes),
		zap.Int("transitions", stats.Transitions),
		zap.Int("failures", stats.Failures))
	return nil
}

// Name returns the worker name for identification
func (s *ExpirySweeper) Name() string {
	return "ExpirySweeper"
}

// Stats returns a snapshot of the sweeper's counters
func (s *ExpirySweeper) Stats() SweeperStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *ExpirySweeper) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.SweepOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce sweeps every organization once. One organization failing does not stop the others.
func (s *ExpirySweeper) SweepOnce(ctx context.Context) service.SweepReport {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	var total service.SweepReport
	var lastErr error
	failures := 0

	orgs, err := s.maintenance.Organizations(ctx)
	if err != nil {
		s.logger.Error("Failed to list organizations for sweep", zap.Error(err))
		lastErr = err
		failures++
	}

	for _, org := range orgs {
		report, err := s.maintenance.Sweep(ctx, org)
		total.ApplicationsExpired += report.ApplicationsExpired
		total.OffersExpired += report.OffersExpired
		total.LeasesExpired += report.LeasesExpired
		total.LeasesActivated += report.LeasesActivated
		if err != nil {
			s.logger.Warn("Sweep failed for organization",
				zap.String("organization_id", org),
				zap.Error(err))
			lastErr = err
			failures++
		}
	}

	s.mu.Lock()
	s.stats.Passes++
	s.stats.Transitions += total.Total()
	s.stats.Failures += failures
	s.stats.LastPass = time.Now()
	if lastErr != nil {
		s.stats.LastError = lastErr
	}
	s.mu.Unlock()

	if total.Total() > 0 {
		s.logger.Info("Expiry sweep complete",
			zap.Int("organizations", len(orgs)),
			zap.Int("transitions", total.Total()))
	}
	return total
}
