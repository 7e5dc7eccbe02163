package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xskcdf/Aquiis-sub005/internal/application/executor"
	"github.com/xskcdf/Aquiis-sub005/internal/application/port"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/entity"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/workflow"
)

// DefaultSweepBatchSize bounds the rows changed by one sweep transaction
const DefaultSweepBatchSize = 100

// SweepReport counts what one sweep of an organization changed
type SweepReport struct {
	ApplicationsExpired int `json:"applications_expired"`
	OffersExpired       int `json:"offers_expired"`
	LeasesExpired       int `json:"leases_expired"`
	LeasesActivated     int `json:"leases_activated"`
}

// Total is the number of rows changed
func (r SweepReport) Total() int {
	return r.ApplicationsExpired + r.OffersExpired + r.LeasesExpired + r.LeasesActivated
}

// MaintenanceService applies time-driven transitions on behalf of the system user
type MaintenanceService interface {
	Sweep(ctx context.Context, organizationID string) (SweepReport, error)
	Organizations(ctx context.Context) ([]string, error)
}

// MaintenanceOptions tune the sweep
type MaintenanceOptions struct {
	BatchSize int
	// AuditTransitions writes audit rows for background transitions
	AuditTransitions bool
}

type maintenanceServiceImpl struct {
	Deps
	opts MaintenanceOptions
}

// NewMaintenanceService creates a new MaintenanceService
func NewMaintenanceService(deps Deps, opts MaintenanceOptions) MaintenanceService {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultSweepBatchSize
	}
	return &maintenanceServiceImpl{Deps: deps, opts: opts}
}

type sweepStep func(ctx context.Context, uow port.UnitOfWork, a actor, now time.Time, limit int) (int, error)

// Organizations lists every organization that owns at least one property
func (s *maintenanceServiceImpl) Organizations(ctx context.Context) ([]string, error) {
	return s.TxManager.Reader().Properties().OrganizationIDs(ctx)
}

// Sweep expires stale applications, offers and leases and activates leases whose term started
func (s *maintenanceServiceImpl) Sweep(ctx context.Context, organizationID string) (SweepReport, error) {
	ctx = port.WithActor(ctx, port.SystemUserID, organizationID)
	a, fail := s.actor(ctx)
	if fail != nil {
		return SweepReport{}, fmt.Errorf("sweep: %s", fail.Message)
	}

	var report SweepReport
	steps := []struct {
		name  string
		step  sweepStep
		count *int
	}{
		{"maintenance.expire_offers", s.expireOffers, &report.OffersExpired},
		{"maintenance.expire_applications", s.expireApplications, &report.ApplicationsExpired},
		{"maintenance.activate_leases", s.activateLeases, &report.LeasesActivated},
		{"maintenance.expire_leases", s.expireLeases, &report.LeasesExpired},
	}

	for _, st := range steps {
		n, err := s.drain(ctx, a, st.name, st.step)
		*st.count += n
		if err != nil {
			return report, err
		}
	}

	if report.Total() > 0 {
		s.Logger.Info("Maintenance sweep applied transitions",
			"organization_id", organizationID,
			"applications_expired", report.ApplicationsExpired,
			"offers_expired", report.OffersExpired,
			"leases_expired", report.LeasesExpired,
			"leases_activated", report.LeasesActivated,
		)
	}
	return report, nil
}

// drain runs step in its own transaction until a batch comes back short
func (s *maintenanceServiceImpl) drain(ctx context.Context, a actor, name string, step sweepStep) (int, error) {
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		res := executor.ExecuteTyped(ctx, s.Executor, name, func(ctx context.Context, uow port.UnitOfWork) (workflow.TypedResult[int], error) {
			n, err := step(ctx, uow, a, s.now(), s.opts.BatchSize)
			if err != nil {
				return workflow.TypedResult[int]{}, err
			}
			return workflow.OkWith(n, ""), nil
		})
		if !res.Success {
			return total, fmt.Errorf("%s: %s", name, res.Message)
		}

		total += res.Data
		if res.Data == 0 || res.Data < s.opts.BatchSize {
			return total, nil
		}
	}
}

func (s *maintenanceServiceImpl) audit() *executor.AuditLogger {
	if !s.opts.AuditTransitions {
		return nil
	}
	return s.Audit
}

func (s *maintenanceServiceImpl) expireOffers(ctx context.Context, uow port.UnitOfWork, a actor, now time.Time, limit int) (int, error) {
	offers, err := uow.LeaseOffers().ListExpiring(ctx, a.OrganizationID, now, limit)
	if err != nil {
		return 0, err
	}

	for _, offer := range offers {
		if err := saveOffer(ctx, uow, s.audit(), a, now, offer, workflow.LeaseOfferExpired, "Expire", "Lease offer expired"); err != nil {
			return 0, err
		}

		app, err := uow.Applications().GetByID(ctx, a.OrganizationID, offer.RentalApplicationID)
		if err != nil {
			return 0, err
		}
		if app == nil || !workflow.ApplicationTable.IsValidTransition(app.Status, workflow.ApplicationExpired) {
			continue
		}
		if err := expireApplication(ctx, uow, s.audit(), a, now, app, "Lease offer expired"); err != nil {
			return 0, err
		}
	}
	return len(offers), nil
}

// expireApplications leaves LeaseOffered applications to expireOffers, which follows the offer's own expiry date
func (s *maintenanceServiceImpl) expireApplications(ctx context.Context, uow port.UnitOfWork, a actor, now time.Time, limit int) (int, error) {
	apps, err := uow.Applications().ListExpiring(ctx, a.OrganizationID, now, limit,
		workflow.ApplicationSubmitted, workflow.ApplicationUnderReview)
	if err != nil {
		return 0, err
	}

	for _, app := range apps {
		if err := expireApplication(ctx, uow, s.audit(), a, now, app, "Application expired"); err != nil {
			return 0, err
		}
	}
	return len(apps), nil
}

func (s *maintenanceServiceImpl) expireLeases(ctx context.Context, uow port.UnitOfWork, a actor, now time.Time, limit int) (int, error) {
	leases, err := uow.Leases().ListEnded(ctx, a.OrganizationID, now, limit)
	if err != nil {
		return 0, err
	}

	for _, lease := range leases {
		if err := s.setLeaseStatus(ctx, uow, a, now, lease, workflow.LeaseExpired, "Expire"); err != nil {
			return 0, err
		}

		deposit, err := uow.Deposits().GetByLeaseID(ctx, a.OrganizationID, lease.ID)
		if err != nil {
			return 0, err
		}
		if deposit != nil && deposit.InInvestmentPool && deposit.PoolExitDate == nil {
			deposit.PoolExitDate = timePtr(lease.EndDate)
			deposit.Touch(a.UserID, now)
			if err := uow.Deposits().Save(ctx, deposit); err != nil {
				return 0, err
			}
		}

		property, err := uow.Properties().GetByID(ctx, a.OrganizationID, lease.PropertyID)
		if err != nil {
			return 0, err
		}
		if property != nil && property.Status == workflow.PropertyOccupied {
			property.Status = workflow.PropertyAvailable
			property.Touch(a.UserID, now)
			if err := uow.Properties().Save(ctx, property); err != nil {
				return 0, err
			}
		}
	}
	return len(leases), nil
}

func (s *maintenanceServiceImpl) activateLeases(ctx context.Context, uow port.UnitOfWork, a actor, now time.Time, limit int) (int, error) {
	leases, err := uow.Leases().ListStarting(ctx, a.OrganizationID, now, limit)
	if err != nil {
		return 0, err
	}

	for _, lease := range leases {
		if err := s.setLeaseStatus(ctx, uow, a, now, lease, workflow.LeaseActive, "Activate"); err != nil {
			return 0, err
		}
	}
	return len(leases), nil
}

func (s *maintenanceServiceImpl) setLeaseStatus(ctx context.Context, uow port.UnitOfWork, a actor, now time.Time, lease *entity.Lease, to workflow.LeaseStatus, action string) error {
	from := lease.Status
	lease.Status = to
	lease.Touch(a.UserID, now)
	if err := uow.Leases().Save(ctx, lease); err != nil {
		return err
	}
	return logTransition(ctx, uow, s.audit(), executor.Transition{
		EntityType: entity.TypeLease,
		EntityID:   lease.ID,
		From:       string(from),
		To:         string(to),
		Action:     action,
	})
}
