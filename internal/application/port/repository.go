package port

import (
	"context"
	"time"

	"github.com/xskcdf/Aquiis-sub005/internal/domain/entity"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/workflow"
)

// Every Get method returns (nil, nil) when the row does not exist in the caller's organization.

// SettingsRepository defines persistence operations for OrganizationSettings
type SettingsRepository interface {
	Get(ctx context.Context, organizationID string) (*entity.OrganizationSettings, error)
	Save(ctx context.Context, settings *entity.OrganizationSettings) error
}

// PropertyRepository defines persistence operations for Property
type PropertyRepository interface {
	Create(ctx context.Context, property *entity.Property) error
	GetByID(ctx context.Context, organizationID, id string) (*entity.Property, error)
	Save(ctx context.Context, property *entity.Property) error
	List(ctx context.Context, organizationID string) ([]*entity.Property, error)
	OrganizationIDs(ctx context.Context) ([]string, error)
}

// ProspectRepository defines persistence operations for ProspectiveTenant
type ProspectRepository interface {
	Create(ctx context.Context, prospect *entity.ProspectiveTenant) error
	GetByID(ctx context.Context, organizationID, id string) (*entity.ProspectiveTenant, error)
	Save(ctx context.Context, prospect *entity.ProspectiveTenant) error
	List(ctx context.Context, organizationID string) ([]*entity.ProspectiveTenant, error)
}

// TenantRepository defines persistence operations for Tenant
type TenantRepository interface {
	Create(ctx context.Context, tenant *entity.Tenant) error
	GetByID(ctx context.Context, organizationID, id string) (*entity.Tenant, error)
}

// TourRepository defines persistence operations for Tour
type TourRepository interface {
	Create(ctx context.Context, tour *entity.Tour) error
	GetByID(ctx context.Context, organizationID, id string) (*entity.Tour, error)
	Save(ctx context.Context, tour *entity.Tour) error
	ListByProspect(ctx context.Context, organizationID, prospectID string) ([]*entity.Tour, error)
}

// ApplicationRepository defines persistence operations for RentalApplication
type ApplicationRepository interface {
	Create(ctx context.Context, app *entity.RentalApplication) error
	GetByID(ctx context.Context, organizationID, id string) (*entity.RentalApplication, error)
	Save(ctx context.Context, app *entity.RentalApplication) error
	ListByProspect(ctx context.Context, organizationID, prospectID string, statuses ...workflow.ApplicationStatus) ([]*entity.RentalApplication, error)
	ListByProperty(ctx context.Context, organizationID, propertyID string, statuses ...workflow.ApplicationStatus) ([]*entity.RentalApplication, error)
	ListExpiring(ctx context.Context, organizationID string, before time.Time, limit int, statuses ...workflow.ApplicationStatus) ([]*entity.RentalApplication, error)
}

// ScreeningRepository defines persistence operations for ApplicationScreening
type ScreeningRepository interface {
	Create(ctx context.Context, screening *entity.ApplicationScreening) error
	GetByApplicationID(ctx context.Context, organizationID, applicationID string) (*entity.ApplicationScreening, error)
	Save(ctx context.Context, screening *entity.ApplicationScreening) error
}

// LeaseOfferRepository defines persistence operations for LeaseOffer
type LeaseOfferRepository interface {
	Create(ctx context.Context, offer *entity.LeaseOffer) error
	GetByID(ctx context.Context, organizationID, id string) (*entity.LeaseOffer, error)
	Save(ctx context.Context, offer *entity.LeaseOffer) error
	GetPendingByApplication(ctx context.Context, organizationID, applicationID string) (*entity.LeaseOffer, error)
	ListPendingByProperty(ctx context.Context, organizationID, propertyID string) ([]*entity.LeaseOffer, error)
	ListExpiring(ctx context.Context, organizationID string, before time.Time, limit int) ([]*entity.LeaseOffer, error)
}

// LeaseRepository defines persistence operations for Lease
type LeaseRepository interface {
	Create(ctx context.Context, lease *entity.Lease) error
	GetByID(ctx context.Context, organizationID, id string) (*entity.Lease, error)
	Save(ctx context.Context, lease *entity.Lease) error
	ListEnded(ctx context.Context, organizationID string, before time.Time, limit int) ([]*entity.Lease, error)
	ListStarting(ctx context.Context, organizationID string, onOrBefore time.Time, limit int) ([]*entity.Lease, error)
}

// DepositRepository defines persistence operations for SecurityDeposit
type DepositRepository interface {
	Create(ctx context.Context, deposit *entity.SecurityDeposit) error
	GetByLeaseID(ctx context.Context, organizationID, leaseID string) (*entity.SecurityDeposit, error)
	Save(ctx context.Context, deposit *entity.SecurityDeposit) error
	ListPooledDuring(ctx context.Context, organizationID string, year int) ([]*entity.SecurityDeposit, error)
}

// PoolRepository defines persistence operations for SecurityDepositInvestmentPool
type PoolRepository interface {
	Create(ctx context.Context, pool *entity.SecurityDepositInvestmentPool) error
	GetByYear(ctx context.Context, organizationID string, year int) (*entity.SecurityDepositInvestmentPool, error)
	Save(ctx context.Context, pool *entity.SecurityDepositInvestmentPool) error
}

// DividendRepository defines persistence operations for SecurityDepositDividend
type DividendRepository interface {
	Create(ctx context.Context, dividend *entity.SecurityDepositDividend) error
	GetByID(ctx context.Context, organizationID, id string) (*entity.SecurityDepositDividend, error)
	Save(ctx context.Context, dividend *entity.SecurityDepositDividend) error
	ListByYear(ctx context.Context, organizationID string, year int) ([]*entity.SecurityDepositDividend, error)
}

// AuditLogRepository is insert-only
type AuditLogRepository interface {
	Create(ctx context.Context, row *entity.WorkflowAuditLog) error
	ListByEntity(ctx context.Context, organizationID, entityType, entityID string) ([]*entity.WorkflowAuditLog, error)
}

// Repositories groups every repository bound to one connection or transaction
type Repositories interface {
	Settings() SettingsRepository
	Properties() PropertyRepository
	Prospects() ProspectRepository
	Tenants() TenantRepository
	Tours() TourRepository
	Applications() ApplicationRepository
	Screenings() ScreeningRepository
	LeaseOffers() LeaseOfferRepository
	Leases() LeaseRepository
	Deposits() DepositRepository
	Pools() PoolRepository
	Dividends() DividendRepository
	AuditLogs() AuditLogRepository
}

// UnitOfWork is an open transaction. Exactly one of Commit or Rollback takes effect.
type UnitOfWork interface {
	Repositories
	Commit() error
	Rollback() error
}

// TransactionManager opens units of work
type TransactionManager interface {
	// Begin opens a transaction. It fails with ErrNestedTransaction when ctx already carries one.
	Begin(ctx context.Context) (UnitOfWork, error)
	// Reader returns repositories bound to the connection pool, outside any transaction
	Reader() Repositories
}

type unitOfWorkKey struct{}

// ContextWithUnitOfWork marks ctx as running inside uow
func ContextWithUnitOfWork(ctx context.Context, uow UnitOfWork) context.Context {
	return context.WithValue(ctx, unitOfWorkKey{}, uow)
}

// UnitOfWorkFromContext returns the unit of work ctx runs inside, or nil
func UnitOfWorkFromContext(ctx context.Context) UnitOfWork {
	if uow, ok := ctx.Value(unitOfWorkKey{}).(UnitOfWork); ok {
		return uow
	}
	return nil
}
