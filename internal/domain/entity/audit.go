package entity

import "time"

// WorkflowAuditLog is one insert-only row of transition history
type WorkflowAuditLog struct {
	ID             int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	OrganizationID string            `gorm:"type:varchar(36);index:idx_audit_entity,priority:1;not null" json:"organization_id"`
	EntityType     string            `gorm:"size:64;index:idx_audit_entity,priority:2;not null" json:"entity_type"`
	EntityID       string            `gorm:"type:varchar(36);index:idx_audit_entity,priority:3;not null" json:"entity_id"`
	FromStatus     *string           `gorm:"size:32" json:"from_status,omitempty"`
	ToStatus       string            `gorm:"size:32;not null" json:"to_status"`
	Action         string            `gorm:"size:64;not null" json:"action"`
	Reason         string            `gorm:"type:text" json:"reason,omitempty"`
	PerformedBy    string            `gorm:"size:64;not null" json:"performed_by"`
	PerformedOn    time.Time         `gorm:"not null" json:"performed_on"`
	Metadata       map[string]string `gorm:"type:text;serializer:json" json:"metadata,omitempty"`
}
