package service

import (
	"context"
	"time"

	"github.com/xskcdf/Aquiis-sub005/internal/application/executor"
	"github.com/xskcdf/Aquiis-sub005/internal/application/port"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/entity"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/workflow"
)

// Shared application steps used by more than one service. A nil audit logger skips the audit rows.

// Denial reason recorded on competing applications when a lease is signed
const ReasonLeasedToAnother = "Property leased to another applicant"

func saveApplication(ctx context.Context, repos port.Repositories, audit *executor.AuditLogger, a actor, now time.Time, app *entity.RentalApplication, from workflow.ApplicationStatus, action, reason string) error {
	app.Touch(a.UserID, now)
	if err := repos.Applications().Save(ctx, app); err != nil {
		return err
	}

	return logTransition(ctx, repos, audit, executor.Transition{
		EntityType: entity.TypeRentalApplication,
		EntityID:   app.ID,
		From:       string(from),
		To:         string(app.Status),
		Action:     action,
		Reason:     reason,
	})
}

func denyApplication(ctx context.Context, repos port.Repositories, audit *executor.AuditLogger, a actor, now time.Time, app *entity.RentalApplication, reason, action string) error {
	from := app.Status
	app.Status = workflow.ApplicationDenied
	app.DenialReason = reason
	app.DecisionBy = a.UserID
	app.DecidedOn = timePtr(now)
	if err := saveApplication(ctx, repos, audit, a, now, app, from, action, reason); err != nil {
		return err
	}

	if _, _, err := setProspectStatus(ctx, repos, a, now, app.ProspectiveTenantID, workflow.ProspectDenied); err != nil {
		return err
	}
	return releaseProperty(ctx, repos, a, now, app.PropertyID, app.ID)
}

// expireApplication expires the application along with any pending offer made from it
func expireApplication(ctx context.Context, repos port.Repositories, audit *executor.AuditLogger, a actor, now time.Time, app *entity.RentalApplication, reason string) error {
	if app.Status == workflow.ApplicationLeaseOffered {
		offer, err := repos.LeaseOffers().GetPendingByApplication(ctx, a.OrganizationID, app.ID)
		if err != nil {
			return err
		}
		if offer != nil {
			if err := saveOffer(ctx, repos, audit, a, now, offer, workflow.LeaseOfferExpired, "Expire", reason); err != nil {
				return err
			}
		}
	}

	from := app.Status
	app.Status = workflow.ApplicationExpired
	if err := saveApplication(ctx, repos, audit, a, now, app, from, "Expire", reason); err != nil {
		return err
	}
	return releaseProperty(ctx, repos, a, now, app.PropertyID, app.ID)
}

func saveOffer(ctx context.Context, repos port.Repositories, audit *executor.AuditLogger, a actor, now time.Time, offer *entity.LeaseOffer, to workflow.LeaseOfferStatus, action, reason string) error {
	from := offer.Status
	offer.Status = to
	if to != workflow.LeaseOfferExpired {
		offer.RespondedOn = timePtr(now)
	}
	offer.Touch(a.UserID, now)
	if err := repos.LeaseOffers().Save(ctx, offer); err != nil {
		return err
	}

	return logTransition(ctx, repos, audit, executor.Transition{
		EntityType: entity.TypeLeaseOffer,
		EntityID:   offer.ID,
		From:       string(from),
		To:         string(to),
		Action:     action,
		Reason:     reason,
	})
}

func logTransition(ctx context.Context, repos port.Repositories, audit *executor.AuditLogger, t executor.Transition) error {
	if audit == nil {
		return nil
	}
	return audit.LogTransition(ctx, repos, t)
}
