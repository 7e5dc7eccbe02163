package gormstore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/xskcdf/Aquiis-sub005/internal/domain/entity"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/workflow"
)

// ApplicationRepository implements port.ApplicationRepository
type ApplicationRepository struct {
	db *gorm.DB
}

func (r *ApplicationRepository) Create(ctx context.Context, app *entity.RentalApplication) error {
	return create(ctx, r.db, app, "application")
}

func (r *ApplicationRepository) GetByID(ctx context.Context, organizationID, id string) (*entity.RentalApplication, error) {
	app, err := first[entity.RentalApplication](ctx, r.db, organizationID, "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return app, nil
}

func (r *ApplicationRepository) Save(ctx context.Context, app *entity.RentalApplication) error {
	return saveVersioned(ctx, r.db, app, "application")
}

// ListByProspect returns the prospect's applications, optionally filtered by status
func (r *ApplicationRepository) ListByProspect(ctx context.Context, organizationID, prospectID string, statuses ...workflow.ApplicationStatus) ([]*entity.RentalApplication, error) {
	q := r.db.WithContext(ctx).
		Where("organization_id = ? AND prospective_tenant_id = ?", organizationID, prospectID)
	return r.list(q, statuses)
}

// ListByProperty returns the property's applications, optionally filtered by status
func (r *ApplicationRepository) ListByProperty(ctx context.Context, organizationID, propertyID string, statuses ...workflow.ApplicationStatus) ([]*entity.RentalApplication, error) {
	q := r.db.WithContext(ctx).
		Where("organization_id = ? AND property_id = ?", organizationID, propertyID)
	return r.list(q, statuses)
}

// ListExpiring returns applications in one of statuses whose expiry date is before the given time
func (r *ApplicationRepository) ListExpiring(ctx context.Context, organizationID string, before time.Time, limit int, statuses ...workflow.ApplicationStatus) ([]*entity.RentalApplication, error) {
	q := r.db.WithContext(ctx).
		Where("organization_id = ? AND expires_on IS NOT NULL AND expires_on < ?", organizationID, before).
		Limit(limit)
	return r.list(q, statuses)
}

func (r *ApplicationRepository) list(q *gorm.DB, statuses []workflow.ApplicationStatus) ([]*entity.RentalApplication, error) {
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}

	var apps []*entity.RentalApplication
	if err := q.Order("applied_on ASC").Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// ScreeningRepository implements port.ScreeningRepository
type ScreeningRepository struct {
	db *gorm.DB
}

func (r *ScreeningRepository) Create(ctx context.Context, screening *entity.ApplicationScreening) error {
	return create(ctx, r.db, screening, "screening")
}

func (r *ScreeningRepository) GetByApplicationID(ctx context.Context, organizationID, applicationID string) (*entity.ApplicationScreening, error) {
	s, err := first[entity.ApplicationScreening](ctx, r.db, organizationID, "rental_application_id = ?", applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get screening: %w", err)
	}
	return s, nil
}

func (r *ScreeningRepository) Save(ctx context.Context, screening *entity.ApplicationScreening) error {
	return save(ctx, r.db, screening, "screening")
}
