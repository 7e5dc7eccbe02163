package gormstore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/xskcdf/Aquiis-sub005/internal/domain/entity"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/workflow"
)

// LeaseOfferRepository implements port.LeaseOfferRepository
type LeaseOfferRepository struct {
	db *gorm.DB
}

func (r *LeaseOfferRepository) Create(ctx context.Context, offer *entity.LeaseOffer) error {
	return create(ctx, r.db, offer, "lease offer")
}

func (r *LeaseOfferRepository) GetByID(ctx context.Context, organizationID, id string) (*entity.LeaseOffer, error) {
	o, err := first[entity.LeaseOffer](ctx, r.db, organizationID, "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lease offer: %w", err)
	}
	return o, nil
}

func (r *LeaseOfferRepository) Save(ctx context.Context, offer *entity.LeaseOffer) error {
	return saveVersioned(ctx, r.db, offer, "lease offer")
}

func (r *LeaseOfferRepository) GetPendingByApplication(ctx context.Context, organizationID, applicationID string) (*entity.LeaseOffer, error) {
	o, err := first[entity.LeaseOffer](ctx, r.db, organizationID,
		"rental_application_id = ? AND status = ?", applicationID, workflow.LeaseOfferPending)
	if err != nil {
		return nil, fmt.Errorf("failed to get lease offer: %w", err)
	}
	return o, nil
}

// ListPendingByProperty returns the pending offers on a property, oldest first
func (r *LeaseOfferRepository) ListPendingByProperty(ctx context.Context, organizationID, propertyID string) ([]*entity.LeaseOffer, error) {
	var offers []*entity.LeaseOffer
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND property_id = ? AND status = ?", organizationID, propertyID, workflow.LeaseOfferPending).
		Order("offered_on ASC").
		Find(&offers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending lease offers: %w", err)
	}
	return offers, nil
}

// ListExpiring returns pending offers whose expiry date is before the given time
func (r *LeaseOfferRepository) ListExpiring(ctx context.Context, organizationID string, before time.Time, limit int) ([]*entity.LeaseOffer, error) {
	var offers []*entity.LeaseOffer
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND status = ? AND expires_on < ?", organizationID, workflow.LeaseOfferPending, before).
		Order("expires_on ASC").
		Limit(limit).
		Find(&offers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring lease offers: %w", err)
	}
	return offers, nil
}

// LeaseRepository implements port.LeaseRepository
type LeaseRepository struct {
	db *gorm.DB
}

func (r *LeaseRepository) Create(ctx context.Context, lease *entity.Lease) error {
	return create(ctx, r.db, lease, "lease")
}

func (r *LeaseRepository) GetByID(ctx context.Context, organizationID, id string) (*entity.Lease, error) {
	l, err := first[entity.Lease](ctx, r.db, organizationID, "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lease: %w", err)
	}
	return l, nil
}

func (r *LeaseRepository) Save(ctx context.Context, lease *entity.Lease) error {
	return save(ctx, r.db, lease, "lease")
}

// ListEnded returns active leases whose end date is before the given time
func (r *LeaseRepository) ListEnded(ctx context.Context, organizationID string, before time.Time, limit int) ([]*entity.Lease, error) {
	var leases []*entity.Lease
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND status = ? AND end_date < ?", organizationID, workflow.LeaseActive, before).
		Order("end_date ASC").
		Limit(limit).
		Find(&leases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ended leases: %w", err)
	}
	return leases, nil
}

// ListStarting returns pending leases whose start date has arrived
func (r *LeaseRepository) ListStarting(ctx context.Context, organizationID string, onOrBefore time.Time, limit int) ([]*entity.Lease, error) {
	var leases []*entity.Lease
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND status = ? AND start_date <= ?", organizationID, workflow.LeasePending, onOrBefore).
		Order("start_date ASC").
		Limit(limit).
		Find(&leases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list starting leases: %w", err)
	}
	return leases, nil
}

// DepositRepository implements port.DepositRepository
type DepositRepository struct {
	db *gorm.DB
}

func (r *DepositRepository) Create(ctx context.Context, deposit *entity.SecurityDeposit) error {
	return create(ctx, r.db, deposit, "security deposit")
}

func (r *DepositRepository) GetByLeaseID(ctx context.Context, organizationID, leaseID string) (*entity.SecurityDeposit, error) {
	d, err := first[entity.SecurityDeposit](ctx, r.db, organizationID, "lease_id = ?", leaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get security deposit: %w", err)
	}
	return d, nil
}

func (r *DepositRepository) Save(ctx context.Context, deposit *entity.SecurityDeposit) error {
	return save(ctx, r.db, deposit, "security deposit")
}

// ListPooledDuring returns deposits that sat in the investment pool for any part of year
func (r *DepositRepository) ListPooledDuring(ctx context.Context, organizationID string, year int) ([]*entity.SecurityDeposit, error) {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	nextYear := yearStart.AddDate(1, 0, 0)

	var deposits []*entity.SecurityDeposit
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND in_investment_pool = ?", organizationID, true).
		Where("pool_entry_date IS NOT NULL AND pool_entry_date < ?", nextYear).
		Where("pool_exit_date IS NULL OR pool_exit_date >= ?", yearStart).
		Order("pool_entry_date ASC").
		Find(&deposits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pooled deposits: %w", err)
	}
	return deposits, nil
}
