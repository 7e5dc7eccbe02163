package gormstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/xskcdf/Aquiis-sub005/internal/domain/entity"
)

// SettingsRepository implements port.SettingsRepository
type SettingsRepository struct {
	db *gorm.DB
}

// Get returns the organization's settings or nil when none were saved
func (r *SettingsRepository) Get(ctx context.Context, organizationID string) (*entity.OrganizationSettings, error) {
	s, err := first[entity.OrganizationSettings](ctx, r.db, organizationID, "1 = 1")
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return s, nil
}

func (r *SettingsRepository) Save(ctx context.Context, settings *entity.OrganizationSettings) error {
	return save(ctx, r.db, settings, "settings")
}

// PropertyRepository implements port.PropertyRepository
type PropertyRepository struct {
	db *gorm.DB
}

func (r *PropertyRepository) Create(ctx context.Context, property *entity.Property) error {
	return create(ctx, r.db, property, "property")
}

func (r *PropertyRepository) GetByID(ctx context.Context, organizationID, id string) (*entity.Property, error) {
	p, err := first[entity.Property](ctx, r.db, organizationID, "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	return p, nil
}

func (r *PropertyRepository) Save(ctx context.Context, property *entity.Property) error {
	return save(ctx, r.db, property, "property")
}

func (r *PropertyRepository) List(ctx context.Context, organizationID string) ([]*entity.Property, error) {
	var properties []*entity.Property
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("address ASC").
		Find(&properties).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, nil
}

// OrganizationIDs returns every organization that owns at least one property
func (r *PropertyRepository) OrganizationIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&entity.Property{}).
		Distinct().
		Order("organization_id").
		Pluck("organization_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return ids, nil
}

// ProspectRepository implements port.ProspectRepository
type ProspectRepository struct {
	db *gorm.DB
}

func (r *ProspectRepository) Create(ctx context.Context, prospect *entity.ProspectiveTenant) error {
	return create(ctx, r.db, prospect, "prospective tenant")
}

func (r *ProspectRepository) GetByID(ctx context.Context, organizationID, id string) (*entity.ProspectiveTenant, error) {
	p, err := first[entity.ProspectiveTenant](ctx, r.db, organizationID, "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get prospective tenant: %w", err)
	}
	return p, nil
}

func (r *ProspectRepository) Save(ctx context.Context, prospect *entity.ProspectiveTenant) error {
	return save(ctx, r.db, prospect, "prospective tenant")
}

func (r *ProspectRepository) List(ctx context.Context, organizationID string) ([]*entity.ProspectiveTenant, error) {
	var prospects []*entity.ProspectiveTenant
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("created_on ASC").
		Find(&prospects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list prospective tenants: %w", err)
	}
	return prospects, nil
}

// TenantRepository implements port.TenantRepository
type TenantRepository struct {
	db *gorm.DB
}

func (r *TenantRepository) Create(ctx context.Context, tenant *entity.Tenant) error {
	return create(ctx, r.db, tenant, "tenant")
}

func (r *TenantRepository) GetByID(ctx context.Context, organizationID, id string) (*entity.Tenant, error) {
	t, err := first[entity.Tenant](ctx, r.db, organizationID, "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return t, nil
}

// TourRepository implements port.TourRepository
type TourRepository struct {
	db *gorm.DB
}

func (r *TourRepository) Create(ctx context.Context, tour *entity.Tour) error {
	return create(ctx, r.db, tour, "tour")
}

func (r *TourRepository) GetByID(ctx context.Context, organizationID, id string) (*entity.Tour, error) {
	t, err := first[entity.Tour](ctx, r.db, organizationID, "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get tour: %w", err)
	}
	return t, nil
}

func (r *TourRepository) Save(ctx context.Context, tour *entity.Tour) error {
	return saveVersioned(ctx, r.db, tour, "tour")
}

func (r *TourRepository) ListByProspect(ctx context.Context, organizationID, prospectID string) ([]*entity.Tour, error) {
	var tours []*entity.Tour
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND prospective_tenant_id = ?", organizationID, prospectID).
		Order("scheduled_on ASC").
		Find(&tours).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tours: %w", err)
	}
	return tours, nil
}
