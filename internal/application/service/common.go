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

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Deps bundles the collaborators every workflow service needs
type Deps struct {
	TxManager port.TransactionManager
	Executor  *executor.Executor
	Audit     *executor.AuditLogger
	Users     port.UserContext
	Clock     port.Clock
	Logger    Logger
}

// actor identifies who is performing an operation and in which organization
type actor struct {
	UserID         string
	OrganizationID string
}

func (d Deps) actor(ctx context.Context) (actor, *workflow.Result) {
	a := actor{
		UserID:         d.Users.GetUserID(ctx),
		OrganizationID: d.Users.GetActiveOrganizationID(ctx),
	}

	var errs []string
	if a.UserID == "" {
		errs = append(errs, "User is not identified")
	}
	if a.OrganizationID == "" {
		errs = append(errs, "No active organization")
	}
	if len(errs) > 0 {
		res := workflow.Fail("User context is incomplete", errs...)
		return a, &res
	}
	return a, nil
}

func (d Deps) now() time.Time {
	return d.Clock.Now()
}

// settings returns the organization's settings, falling back to defaults
func settings(ctx context.Context, repos port.Repositories, organizationID string) (*entity.OrganizationSettings, error) {
	s, err := repos.Settings().Get(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return entity.DefaultOrganizationSettings(organizationID), nil
	}
	s.Normalize()
	return s, nil
}

// activeApplicationStatuses are the non-terminal application statuses
func activeApplicationStatuses() []workflow.ApplicationStatus {
	var out []workflow.ApplicationStatus
	for _, s := range workflow.AllApplicationStatuses {
		if !s.IsTerminal() {
			out = append(out, s)
		}
	}
	return out
}

// releaseProperty returns a held property to the market once no other active application holds it
func releaseProperty(ctx context.Context, repos port.Repositories, a actor, now time.Time, propertyID, excludeApplicationID string) error {
	property, err := repos.Properties().GetByID(ctx, a.OrganizationID, propertyID)
	if err != nil {
		return err
	}
	if property == nil {
		return nil
	}
	if property.Status != workflow.PropertyApplicationPending && property.Status != workflow.PropertyLeasePending {
		return nil
	}

	others, err := repos.Applications().ListByProperty(ctx, a.OrganizationID, propertyID, activeApplicationStatuses()...)
	if err != nil {
		return err
	}

	next := workflow.PropertyAvailable
	for _, other := range others {
		if other.ID != excludeApplicationID {
			next = workflow.PropertyApplicationPending
			break
		}
	}
	if property.Status == next {
		return nil
	}

	property.Status = next
	property.Touch(a.UserID, now)
	return repos.Properties().Save(ctx, property)
}

// setProspectStatus updates the prospect and reports the previous status
func setProspectStatus(ctx context.Context, repos port.Repositories, a actor, now time.Time, prospectID string, status workflow.ProspectStatus) (*entity.ProspectiveTenant, workflow.ProspectStatus, error) {
	prospect, err := repos.Prospects().GetByID(ctx, a.OrganizationID, prospectID)
	if err != nil {
		return nil, "", err
	}
	if prospect == nil {
		return nil, "", fmt.Errorf("prospective tenant %s not found", prospectID)
	}

	previous := prospect.Status
	prospect.Status = status
	prospect.Touch(a.UserID, now)
	if err := repos.Prospects().Save(ctx, prospect); err != nil {
		return nil, "", err
	}
	return prospect, previous, nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
