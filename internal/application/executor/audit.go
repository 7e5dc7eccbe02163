package executor

import (
	"context"
	"fmt"

	"github.com/xskcdf/Aquiis-sub005/internal/application/port"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/entity"
)

// Transition describes one status change to record
type Transition struct {
	EntityType string
	EntityID   string
	From       string // empty when the entity is being created
	To         string
	Action     string
	Reason     string
	Metadata   map[string]string
}

// AuditLogger stages transition rows on the caller's unit of work
type AuditLogger struct {
	reader  port.TransactionManager
	users   port.UserContext
	clock   port.Clock
	metrics *Metrics
}

// NewAuditLogger creates an audit logger
func NewAuditLogger(reader port.TransactionManager, users port.UserContext, clock port.Clock, metrics *Metrics) *AuditLogger {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &AuditLogger{
		reader:  reader,
		users:   users,
		clock:   clock,
		metrics: metrics,
	}
}

// LogTransition stages one audit row. It is discarded if repos' transaction rolls back.
func (a *AuditLogger) LogTransition(ctx context.Context, repos port.Repositories, t Transition) error {
	performer := a.users.GetUserID(ctx)
	if performer == "" {
		performer = port.SystemUserID
	}

	row := &entity.WorkflowAuditLog{
		OrganizationID: a.users.GetActiveOrganizationID(ctx),
		EntityType:     t.EntityType,
		EntityID:       t.EntityID,
		ToStatus:       t.To,
		Action:         t.Action,
		Reason:         t.Reason,
		PerformedBy:    performer,
		PerformedOn:    a.clock.Now(),
		Metadata:       t.Metadata,
	}
	if t.From != "" {
		from := t.From
		row.FromStatus = &from
	}

	if err := repos.AuditLogs().Create(ctx, row); err != nil {
		return fmt.Errorf("failed to log %s transition: %w", t.EntityType, err)
	}

	a.metrics.Transitions.WithLabelValues(t.EntityType, t.Action).Inc()
	return nil
}

// GetAuditHistory returns the entity's committed history within the caller's organization, oldest first
func (a *AuditLogger) GetAuditHistory(ctx context.Context, entityType, entityID string) ([]*entity.WorkflowAuditLog, error) {
	return a.reader.Reader().AuditLogs().ListByEntity(ctx, a.users.GetActiveOrganizationID(ctx), entityType, entityID)
}
