package gormstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/xskcdf/Aquiis-sub005/internal/domain/entity"
)

// AuditLogRepository implements port.AuditLogRepository. It never updates or deletes rows.
type AuditLogRepository struct {
	db *gorm.DB
}

func (r *AuditLogRepository) Create(ctx context.Context, row *entity.WorkflowAuditLog) error {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// ListByEntity returns the entity's history oldest first; rows written in the same instant keep insertion order
func (r *AuditLogRepository) ListByEntity(ctx context.Context, organizationID, entityType, entityID string) ([]*entity.WorkflowAuditLog, error) {
	var rows []*entity.WorkflowAuditLog
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND entity_type = ? AND entity_id = ?", organizationID, entityType, entityID).
		Order("performed_on ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return rows, nil
}
