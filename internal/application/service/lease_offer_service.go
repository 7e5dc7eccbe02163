package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xskcdf/Aquiis-sub005/internal/application/executor"
	"github.com/xskcdf/Aquiis-sub005/internal/application/port"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/entity"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/workflow"
)

// LeaseTerms are the terms offered to an approved applicant
type LeaseTerms struct {
	StartDate       time.Time        `json:"start_date"`
	EndDate         time.Time        `json:"end_date"`
	MonthlyRent     *decimal.Decimal `json:"monthly_rent,omitempty"`
	SecurityDeposit decimal.Decimal  `json:"security_deposit"`
	Terms           string           `json:"terms,omitempty"`
}

// LeaseAcceptance is the outcome of accepting an offer
type LeaseAcceptance struct {
	Tenant  *entity.Tenant          `json:"tenant"`
	Lease   *entity.Lease           `json:"lease"`
	Deposit *entity.SecurityDeposit `json:"security_deposit"`
}

// LeaseOfferService manages offers made from approved applications
type LeaseOfferService interface {
	GenerateLeaseOffer(ctx context.Context, applicationID string, terms LeaseTerms) workflow.TypedResult[*entity.LeaseOffer]
	AcceptLeaseOffer(ctx context.Context, offerID, notes string) workflow.TypedResult[*LeaseAcceptance]
	DeclineLeaseOffer(ctx context.Context, offerID, reason string) workflow.Result
	WithdrawLeaseOffer(ctx context.Context, offerID, reason string) workflow.Result
	ExpireLeaseOffer(ctx context.Context, offerID string) workflow.Result
	GetLeaseOffer(ctx context.Context, offerID string) workflow.TypedResult[*entity.LeaseOffer]
}

type leaseOfferServiceImpl struct {
	Deps
}

// NewLeaseOfferService creates a new LeaseOfferService
func NewLeaseOfferService(deps Deps) LeaseOfferService {
	return &leaseOfferServiceImpl{Deps: deps}
}

// GenerateLeaseOffer creates a pending offer for an approved application
func (s *leaseOfferServiceImpl) GenerateLeaseOffer(ctx context.Context, applicationID string, terms LeaseTerms) workflow.TypedResult[*entity.LeaseOffer] {
	a, fail := s.actor(ctx)
	if fail != nil {
		return workflow.Lift[*entity.LeaseOffer](*fail)
	}

	var errs []string
	if terms.StartDate.IsZero() || terms.EndDate.IsZero() {
		errs = append(errs, "Lease start and end dates are required")
	} else if !terms.EndDate.After(terms.StartDate) {
		errs = append(errs, "Lease end date must be after the start date")
	}
	if terms.SecurityDeposit.IsNegative() {
		errs = append(errs, "Security deposit cannot be negative")
	}
	if terms.MonthlyRent != nil && !terms.MonthlyRent.IsPositive() {
		errs = append(errs, "Monthly rent must be positive")
	}
	if len(errs) > 0 {
		return workflow.FailWith[*entity.LeaseOffer]("Invalid lease terms", errs...)
	}

	return executor.ExecuteTyped(ctx, s.Executor, "lease_offer.generate", func(ctx context.Context, uow port.UnitOfWork) (workflow.TypedResult[*entity.LeaseOffer], error) {
		now := s.now()

		app, err := uow.Applications().GetByID(ctx, a.OrganizationID, applicationID)
		if err != nil {
			return workflow.TypedResult[*entity.LeaseOffer]{}, err
		}
		if app == nil {
			return workflow.FailWith[*entity.LeaseOffer]("Application not found"), nil
		}
		if app.Status != workflow.ApplicationApproved {
			return workflow.FailWith[*entity.LeaseOffer](
				fmt.Sprintf("Application must be approved before a lease offer can be generated. Current status: %s", app.Status)), nil
		}

		property, err := uow.Properties().GetByID(ctx, a.OrganizationID, app.PropertyID)
		if err != nil {
			return workflow.TypedResult[*entity.LeaseOffer]{}, err
		}
		if property == nil {
			return workflow.FailWith[*entity.LeaseOffer]("Property not found"), nil
		}
		if property.Status == workflow.PropertyOccupied {
			return workflow.FailWith[*entity.LeaseOffer]("Property is currently occupied"), nil
		}

		pending, err := uow.LeaseOffers().ListPendingByProperty(ctx, a.OrganizationID, property.ID)
		if err != nil {
			return workflow.TypedResult[*entity.LeaseOffer]{}, err
		}
		if len(pending) > 0 {
			return workflow.FailWith[*entity.LeaseOffer]("Another lease offer is pending for this property"), nil
		}

		cfg, err := settings(ctx, uow, a.OrganizationID)
		if err != nil {
			return workflow.TypedResult[*entity.LeaseOffer]{}, err
		}

		rent := property.MonthlyRent
		if terms.MonthlyRent != nil {
			rent = *terms.MonthlyRent
		}

		offer := &entity.LeaseOffer{
			RentalApplicationID: app.ID,
			PropertyID:          app.PropertyID,
			ProspectiveTenantID: app.ProspectiveTenantID,
			StartDate:           terms.StartDate.UTC(),
			EndDate:             terms.EndDate.UTC(),
			MonthlyRent:         rent,
			SecurityDeposit:     terms.SecurityDeposit,
			Terms:               terms.Terms,
			OfferedOn:           now,
			ExpiresOn:           now.AddDate(0, 0, cfg.LeaseOfferExpirationDays),
			Status:              workflow.LeaseOfferPending,
		}
		offer.Stamp(a.OrganizationID, a.UserID, now)
		if err := uow.LeaseOffers().Create(ctx, offer); err != nil {
			return workflow.TypedResult[*entity.LeaseOffer]{}, err
		}
		if err := s.Audit.LogTransition(ctx, uow, executor.Transition{
			EntityType: entity.TypeLeaseOffer,
			EntityID:   offer.ID,
			To:         string(offer.Status),
			Action:     "Generate",
			Metadata:   map[string]string{"application_id": app.ID},
		}); err != nil {
			return workflow.TypedResult[*entity.LeaseOffer]{}, err
		}

		from := app.Status
		app.Status = workflow.ApplicationLeaseOffered
		if err := saveApplication(ctx, uow, s.Audit, a, now, app, from, "GenerateLeaseOffer", ""); err != nil {
			return workflow.TypedResult[*entity.LeaseOffer]{}, err
		}

		if _, _, err := setProspectStatus(ctx, uow, a, now, app.ProspectiveTenantID, workflow.ProspectLeaseOffered); err != nil {
			return workflow.TypedResult[*entity.LeaseOffer]{}, err
		}

		property.Status = workflow.PropertyLeasePending
		property.Touch(a.UserID, now)
		if err := uow.Properties().Save(ctx, property); err != nil {
			return workflow.TypedResult[*entity.LeaseOffer]{}, err
		}

		s.Logger.Info("Lease offer generated", "offer_id", offer.ID, "application_id", app.ID)
		return workflow.OkWith(offer, "Lease offer generated"), nil
	})
}

// AcceptLeaseOffer converts the prospect into a tenant and signs the lease
func (s *leaseOfferServiceImpl) AcceptLeaseOffer(ctx context.Context, offerID, notes string) workflow.TypedResult[*LeaseAcceptance] {
	a, fail := s.actor(ctx)
	if fail != nil {
		return workflow.Lift[*LeaseAcceptance](*fail)
	}

	return executor.ExecuteTyped(ctx, s.Executor, "lease_offer.accept", func(ctx context.Context, uow port.UnitOfWork) (workflow.TypedResult[*LeaseAcceptance], error) {
		now := s.now()

		offer, res, err := s.load(ctx, uow, a, offerID, workflow.LeaseOfferAccepted)
		if err != nil || res != nil {
			return workflow.Lift[*LeaseAcceptance](deref(res)), err
		}
		if now.After(offer.ExpiresOn) {
			return workflow.FailWith[*LeaseAcceptance]("Lease offer has expired"), nil
		}

		app, err := uow.Applications().GetByID(ctx, a.OrganizationID, offer.RentalApplicationID)
		if err != nil {
			return workflow.TypedResult[*LeaseAcceptance]{}, err
		}
		if app == nil {
			return workflow.FailWith[*LeaseAcceptance]("Application not found"), nil
		}
		if !workflow.ApplicationTable.IsValidTransition(app.Status, workflow.ApplicationLeaseAccepted) {
			return workflow.FailWith[*LeaseAcceptance](
				workflow.ApplicationTable.InvalidTransitionReason(app.Status, workflow.ApplicationLeaseAccepted)), nil
		}

		prospect, err := uow.Prospects().GetByID(ctx, a.OrganizationID, offer.ProspectiveTenantID)
		if err != nil {
			return workflow.TypedResult[*LeaseAcceptance]{}, err
		}
		if prospect == nil {
			return workflow.FailWith[*LeaseAcceptance]("Prospective tenant not found"), nil
		}

		property, err := uow.Properties().GetByID(ctx, a.OrganizationID, offer.PropertyID)
		if err != nil {
			return workflow.TypedResult[*LeaseAcceptance]{}, err
		}
		if property == nil {
			return workflow.FailWith[*LeaseAcceptance]("Property not found"), nil
		}
		if property.Status == workflow.PropertyOccupied {
			return workflow.FailWith[*LeaseAcceptance]("Property is currently occupied"), nil
		}

		tenant := &entity.Tenant{
			FirstName:           prospect.FirstName,
			LastName:            prospect.LastName,
			Email:               prospect.Email,
			Phone:               prospect.Phone,
			ProspectiveTenantID: &prospect.ID,
		}
		tenant.Stamp(a.OrganizationID, a.UserID, now)
		if err := uow.Tenants().Create(ctx, tenant); err != nil {
			return workflow.TypedResult[*LeaseAcceptance]{}, err
		}

		leaseStatus := workflow.LeasePending
		if !offer.StartDate.After(startOfDay(now)) {
			leaseStatus = workflow.LeaseActive
		}
		lease := &entity.Lease{
			PropertyID:            property.ID,
			TenantID:              tenant.ID,
			LeaseOfferID:          &offer.ID,
			StartDate:             offer.StartDate,
			EndDate:               offer.EndDate,
			MonthlyRent:           offer.MonthlyRent,
			SecurityDepositAmount: offer.SecurityDeposit,
			Terms:                 offer.Terms,
			Status:                leaseStatus,
		}
		lease.Stamp(a.OrganizationID, a.UserID, now)
		if err := uow.Leases().Create(ctx, lease); err != nil {
			return workflow.TypedResult[*LeaseAcceptance]{}, err
		}

		deposit := &entity.SecurityDeposit{
			LeaseID:          lease.ID,
			TenantID:         tenant.ID,
			Amount:           offer.SecurityDeposit,
			DateReceived:     now,
			InInvestmentPool: true,
			PoolEntryDate:    timePtr(offer.StartDate),
			Status:           workflow.DepositHeld,
		}
		deposit.Stamp(a.OrganizationID, a.UserID, now)
		if err := uow.Deposits().Create(ctx, deposit); err != nil {
			return workflow.TypedResult[*LeaseAcceptance]{}, err
		}

		offer.ResponseNotes = notes
		offer.ConvertedLeaseID = &lease.ID
		if err := saveOffer(ctx, uow, s.Audit, a, now, offer, workflow.LeaseOfferAccepted, "Accept", notes); err != nil {
			return workflow.TypedResult[*LeaseAcceptance]{}, err
		}

		from := app.Status
		app.Status = workflow.ApplicationLeaseAccepted
		if err := saveApplication(ctx, uow, s.Audit, a, now, app, from, "AcceptLeaseOffer", ""); err != nil {
			return workflow.TypedResult[*LeaseAcceptance]{}, err
		}

		previous := prospect.Status
		prospect.Status = workflow.ProspectConvertedToTenant
		prospect.ConvertedTenantID = &tenant.ID
		prospect.Touch(a.UserID, now)
		if err := uow.Prospects().Save(ctx, prospect); err != nil {
			return workflow.TypedResult[*LeaseAcceptance]{}, err
		}
		if err := s.Audit.LogTransition(ctx, uow, executor.Transition{
			EntityType: entity.TypeProspectiveTenant,
			EntityID:   prospect.ID,
			From:       string(previous),
			To:         string(prospect.Status),
			Action:     "ConvertToTenant",
			Metadata:   map[string]string{"tenant_id": tenant.ID, "lease_id": lease.ID},
		}); err != nil {
			return workflow.TypedResult[*LeaseAcceptance]{}, err
		}

		property.Status = workflow.PropertyOccupied
		property.Touch(a.UserID, now)
		if err := uow.Properties().Save(ctx, property); err != nil {
			return workflow.TypedResult[*LeaseAcceptance]{}, err
		}

		if err := s.withdrawCompetingOffers(ctx, uow, a, now, offer); err != nil {
			return workflow.TypedResult[*LeaseAcceptance]{}, err
		}

		competing, err := uow.Applications().ListByProperty(ctx, a.OrganizationID, property.ID, activeApplicationStatuses()...)
		if err != nil {
			return workflow.TypedResult[*LeaseAcceptance]{}, err
		}
		for _, other := range competing {
			if other.ID == app.ID || !workflow.ApplicationTable.IsValidTransition(other.Status, workflow.ApplicationDenied) {
				continue
			}
			if err := denyApplication(ctx, uow, s.Audit, a, now, other, ReasonLeasedToAnother, "AutoDeny"); err != nil {
				return workflow.TypedResult[*LeaseAcceptance]{}, err
			}
		}

		s.Logger.Info("Lease offer accepted", "offer_id", offer.ID, "lease_id", lease.ID, "tenant_id", tenant.ID)
		return workflow.OkWith(&LeaseAcceptance{Tenant: tenant, Lease: lease, Deposit: deposit},
			"Lease offer accepted and lease created"), nil
	})
}

// DeclineLeaseOffer records that the prospect declined the offer
func (s *leaseOfferServiceImpl) DeclineLeaseOffer(ctx context.Context, offerID, reason string) workflow.Result {
	a, fail := s.actor(ctx)
	if fail != nil {
		return *fail
	}

	return s.Executor.Execute(ctx, "lease_offer.decline", func(ctx context.Context, uow port.UnitOfWork) (workflow.Result, error) {
		now := s.now()

		offer, res, err := s.load(ctx, uow, a, offerID, workflow.LeaseOfferDeclined)
		if err != nil || res != nil {
			return deref(res), err
		}

		offer.ResponseNotes = reason
		if err := saveOffer(ctx, uow, s.Audit, a, now, offer, workflow.LeaseOfferDeclined, "Decline", reason); err != nil {
			return workflow.Result{}, err
		}

		res2, err := s.closeApplication(ctx, uow, a, now, offer, workflow.ApplicationLeaseDeclined, "DeclineLeaseOffer", reason)
		if err != nil || res2 != nil {
			return deref(res2), err
		}

		if _, _, err := setProspectStatus(ctx, uow, a, now, offer.ProspectiveTenantID, workflow.ProspectLeaseDeclined); err != nil {
			return workflow.Result{}, err
		}
		return workflow.Ok("Lease offer declined"), nil
	})
}

// WithdrawLeaseOffer retracts a pending offer; the application expires
func (s *leaseOfferServiceImpl) WithdrawLeaseOffer(ctx context.Context, offerID, reason string) workflow.Result {
	a, fail := s.actor(ctx)
	if fail != nil {
		return *fail
	}
	if reason == "" {
		return workflow.Fail("A reason is required to withdraw a lease offer")
	}

	return s.Executor.Execute(ctx, "lease_offer.withdraw", func(ctx context.Context, uow port.UnitOfWork) (workflow.Result, error) {
		now := s.now()

		offer, res, err := s.load(ctx, uow, a, offerID, workflow.LeaseOfferWithdrawn)
		if err != nil || res != nil {
			return deref(res), err
		}

		if err := saveOffer(ctx, uow, s.Audit, a, now, offer, workflow.LeaseOfferWithdrawn, "Withdraw", reason); err != nil {
			return workflow.Result{}, err
		}

		res2, err := s.closeApplication(ctx, uow, a, now, offer, workflow.ApplicationExpired, "WithdrawLeaseOffer", reason)
		if err != nil || res2 != nil {
			return deref(res2), err
		}
		return workflow.Ok("Lease offer withdrawn"), nil
	})
}

// ExpireLeaseOffer expires a pending offer past its expiry date
func (s *leaseOfferServiceImpl) ExpireLeaseOffer(ctx context.Context, offerID string) workflow.Result {
	a, fail := s.actor(ctx)
	if fail != nil {
		return *fail
	}

	return s.Executor.Execute(ctx, "lease_offer.expire", func(ctx context.Context, uow port.UnitOfWork) (workflow.Result, error) {
		now := s.now()

		offer, res, err := s.load(ctx, uow, a, offerID, workflow.LeaseOfferExpired)
		if err != nil || res != nil {
			return deref(res), err
		}
		if !now.After(offer.ExpiresOn) {
			return workflow.Fail("Lease offer has not reached its expiration date"), nil
		}

		if err := saveOffer(ctx, uow, s.Audit, a, now, offer, workflow.LeaseOfferExpired, "Expire", ""); err != nil {
			return workflow.Result{}, err
		}

		res2, err := s.closeApplication(ctx, uow, a, now, offer, workflow.ApplicationExpired, "Expire", "Lease offer expired")
		if err != nil || res2 != nil {
			return deref(res2), err
		}
		return workflow.Ok("Lease offer expired"), nil
	})
}

// GetLeaseOffer returns one offer
func (s *leaseOfferServiceImpl) GetLeaseOffer(ctx context.Context, offerID string) workflow.TypedResult[*entity.LeaseOffer] {
	a, fail := s.actor(ctx)
	if fail != nil {
		return workflow.Lift[*entity.LeaseOffer](*fail)
	}

	offer, err := s.TxManager.Reader().LeaseOffers().GetByID(ctx, a.OrganizationID, offerID)
	if err != nil {
		s.Logger.Error("Failed to load lease offer", "offer_id", offerID, "error", err)
		return workflow.Lift[*entity.LeaseOffer](workflow.Internal(fmt.Sprintf("An error occurred: %s", err.Error())))
	}
	if offer == nil {
		return workflow.FailWith[*entity.LeaseOffer]("Lease offer not found")
	}
	return workflow.OkWith(offer, "")
}

func (s *leaseOfferServiceImpl) load(ctx context.Context, uow port.UnitOfWork, a actor, offerID string, target workflow.LeaseOfferStatus) (*entity.LeaseOffer, *workflow.Result, error) {
	offer, err := uow.LeaseOffers().GetByID(ctx, a.OrganizationID, offerID)
	if err != nil {
		return nil, nil, err
	}
	if offer == nil {
		res := workflow.Fail("Lease offer not found")
		return nil, &res, nil
	}
	if !workflow.LeaseOfferTable.IsValidTransition(offer.Status, target) {
		res := workflow.Fail(workflow.LeaseOfferTable.InvalidTransitionReason(offer.Status, target))
		return nil, &res, nil
	}
	return offer, nil, nil
}

// withdrawCompetingOffers retracts every other pending offer on the accepted offer's property
// and expires the applications they were made for. The property stays occupied.
func (s *leaseOfferServiceImpl) withdrawCompetingOffers(ctx context.Context, uow port.UnitOfWork, a actor, now time.Time, accepted *entity.LeaseOffer) error {
	pending, err := uow.LeaseOffers().ListPendingByProperty(ctx, a.OrganizationID, accepted.PropertyID)
	if err != nil {
		return err
	}

	for _, other := range pending {
		if other.ID == accepted.ID {
			continue
		}
		if err := saveOffer(ctx, uow, s.Audit, a, now, other, workflow.LeaseOfferWithdrawn, "AutoWithdraw", ReasonLeasedToAnother); err != nil {
			return err
		}

		app, err := uow.Applications().GetByID(ctx, a.OrganizationID, other.RentalApplicationID)
		if err != nil {
			return err
		}
		if app == nil || !workflow.ApplicationTable.IsValidTransition(app.Status, workflow.ApplicationExpired) {
			continue
		}
		from := app.Status
		app.Status = workflow.ApplicationExpired
		app.DenialReason = ReasonLeasedToAnother
		if err := saveApplication(ctx, uow, s.Audit, a, now, app, from, "AutoWithdraw", ReasonLeasedToAnother); err != nil {
			return err
		}
	}
	return nil
}

// closeApplication moves the offer's application to a terminal status and frees the property
func (s *leaseOfferServiceImpl) closeApplication(ctx context.Context, uow port.UnitOfWork, a actor, now time.Time, offer *entity.LeaseOffer, to workflow.ApplicationStatus, action, reason string) (*workflow.Result, error) {
	app, err := uow.Applications().GetByID(ctx, a.OrganizationID, offer.RentalApplicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		res := workflow.Fail("Application not found")
		return &res, nil
	}
	if !workflow.ApplicationTable.IsValidTransition(app.Status, to) {
		res := workflow.Fail(workflow.ApplicationTable.InvalidTransitionReason(app.Status, to))
		return &res, nil
	}

	from := app.Status
	app.Status = to
	if reason != "" && to == workflow.ApplicationExpired {
		app.DenialReason = reason
	}
	if err := saveApplication(ctx, uow, s.Audit, a, now, app, from, action, reason); err != nil {
		return nil, err
	}
	return nil, releaseProperty(ctx, uow, a, now, app.PropertyID, app.ID)
}
