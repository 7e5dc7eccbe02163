package gormstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/xskcdf/Aquiis-sub005/internal/domain/entity"
)

// PoolRepository implements port.PoolRepository
type PoolRepository struct {
	db *gorm.DB
}

func (r *PoolRepository) Create(ctx context.Context, pool *entity.SecurityDepositInvestmentPool) error {
	return create(ctx, r.db, pool, "investment pool")
}

func (r *PoolRepository) GetByYear(ctx context.Context, organizationID string, year int) (*entity.SecurityDepositInvestmentPool, error) {
	p, err := first[entity.SecurityDepositInvestmentPool](ctx, r.db, organizationID, "year = ?", year)
	if err != nil {
		return nil, fmt.Errorf("failed to get investment pool: %w", err)
	}
	return p, nil
}

func (r *PoolRepository) Save(ctx context.Context, pool *entity.SecurityDepositInvestmentPool) error {
	return saveVersioned(ctx, r.db, pool, "investment pool")
}

// DividendRepository implements port.DividendRepository
type DividendRepository struct {
	db *gorm.DB
}

func (r *DividendRepository) Create(ctx context.Context, dividend *entity.SecurityDepositDividend) error {
	return create(ctx, r.db, dividend, "dividend")
}

func (r *DividendRepository) GetByID(ctx context.Context, organizationID, id string) (*entity.SecurityDepositDividend, error) {
	d, err := first[entity.SecurityDepositDividend](ctx, r.db, organizationID, "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get dividend: %w", err)
	}
	return d, nil
}

func (r *DividendRepository) Save(ctx context.Context, dividend *entity.SecurityDepositDividend) error {
	return saveVersioned(ctx, r.db, dividend, "dividend")
}

func (r *DividendRepository) ListByYear(ctx context.Context, organizationID string, year int) ([]*entity.SecurityDepositDividend, error) {
	var dividends []*entity.SecurityDepositDividend
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND year = ?", organizationID, year).
		Order("created_on ASC, id ASC").
		Find(&dividends).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list dividends: %w", err)
	}
	return dividends, nil
}
