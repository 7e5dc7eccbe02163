package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xskcdf/Aquiis-sub005/internal/application/executor"
	"github.com/xskcdf/Aquiis-sub005/internal/application/port"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/entity"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/workflow"
)

// SubmitApplicationRequest carries the data captured when a prospect applies
type SubmitApplicationRequest struct {
	ProspectiveTenantID string           `json:"prospective_tenant_id"`
	PropertyID          string           `json:"property_id"`
	MonthlyIncome       decimal.Decimal  `json:"monthly_income"`
	ApplicationFee      *decimal.Decimal `json:"application_fee,omitempty"`
}

// ScreeningRequest selects which checks to order
type ScreeningRequest struct {
	BackgroundCheck bool `json:"background_check"`
	CreditCheck     bool `json:"credit_check"`
}

// ScreeningOutcome records the results returned by the screening providers
type ScreeningOutcome struct {
	BackgroundCheckPassed *bool                    `json:"background_check_passed,omitempty"`
	CreditScore           *int                     `json:"credit_score,omitempty"`
	CreditCheckPassed     *bool                    `json:"credit_check_passed,omitempty"`
	OverallResult         workflow.ScreeningResult `json:"overall_result"`
	Notes                 string                   `json:"notes,omitempty"`
}

// ApplicationWorkflowState is a read model of where an application stands
type ApplicationWorkflowState struct {
	Application       *entity.RentalApplication    `json:"application"`
	Screening         *entity.ApplicationScreening `json:"screening,omitempty"`
	CurrentStatus     workflow.ApplicationStatus   `json:"current_status"`
	ValidNextStatuses []workflow.ApplicationStatus `json:"valid_next_statuses"`
	History           []*entity.WorkflowAuditLog   `json:"history"`
}

// ApplicationService drives a rental application through its lifecycle
type ApplicationService interface {
	SubmitApplication(ctx context.Context, req SubmitApplicationRequest) workflow.TypedResult[*entity.RentalApplication]
	MarkApplicationFeePaid(ctx context.Context, applicationID string, amount decimal.Decimal) workflow.Result
	MarkUnderReview(ctx context.Context, applicationID string) workflow.Result
	InitiateScreening(ctx context.Context, applicationID string, req ScreeningRequest) workflow.TypedResult[*entity.ApplicationScreening]
	CompleteScreening(ctx context.Context, applicationID string, outcome ScreeningOutcome) workflow.Result
	ApproveApplication(ctx context.Context, applicationID string) workflow.Result
	DenyApplication(ctx context.Context, applicationID, reason string) workflow.Result
	WithdrawApplication(ctx context.Context, applicationID, reason string) workflow.Result
	ExpireApplication(ctx context.Context, applicationID string) workflow.Result
	GetApplicationWorkflowState(ctx context.Context, applicationID string) workflow.TypedResult[*ApplicationWorkflowState]
}

type applicationServiceImpl struct {
	Deps
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(deps Deps) ApplicationService {
	return &applicationServiceImpl{Deps: deps}
}

// SubmitApplication creates a new application for a prospect and property
func (s *applicationServiceImpl) SubmitApplication(ctx context.Context, req SubmitApplicationRequest) workflow.TypedResult[*entity.RentalApplication] {
	a, fail := s.actor(ctx)
	if fail != nil {
		return workflow.Lift[*entity.RentalApplication](*fail)
	}

	return executor.ExecuteTyped(ctx, s.Executor, "application.submit", func(ctx context.Context, uow port.UnitOfWork) (workflow.TypedResult[*entity.RentalApplication], error) {
		now := s.now()

		prospect, err := uow.Prospects().GetByID(ctx, a.OrganizationID, req.ProspectiveTenantID)
		if err != nil {
			return workflow.TypedResult[*entity.RentalApplication]{}, err
		}
		if prospect == nil {
			return workflow.FailWith[*entity.RentalApplication]("Prospective tenant not found"), nil
		}
		if prospect.Status == workflow.ProspectConvertedToTenant {
			return workflow.FailWith[*entity.RentalApplication]("Prospective tenant has already been converted to a tenant"), nil
		}

		property, err := uow.Properties().GetByID(ctx, a.OrganizationID, req.PropertyID)
		if err != nil {
			return workflow.TypedResult[*entity.RentalApplication]{}, err
		}
		if property == nil {
			return workflow.FailWith[*entity.RentalApplication]("Property not found"), nil
		}
		if property.Status == workflow.PropertyOccupied {
			return workflow.FailWith[*entity.RentalApplication]("Property is currently occupied"), nil
		}
		if property.Status == workflow.PropertyOffMarket {
			return workflow.FailWith[*entity.RentalApplication]("Property is not accepting applications"), nil
		}

		active, err := uow.Applications().ListByProspect(ctx, a.OrganizationID, prospect.ID, activeApplicationStatuses()...)
		if err != nil {
			return workflow.TypedResult[*entity.RentalApplication]{}, err
		}
		if len(active) > 0 {
			return workflow.FailWith[*entity.RentalApplication](
				"Prospective tenant already has an active application",
				fmt.Sprintf("Application %s is %s", active[0].ID, active[0].Status),
			), nil
		}

		cfg, err := settings(ctx, uow, a.OrganizationID)
		if err != nil {
			return workflow.TypedResult[*entity.RentalApplication]{}, err
		}

		fee := cfg.ApplicationFeeAmount
		if req.ApplicationFee != nil {
			fee = *req.ApplicationFee
		}
		if fee.IsNegative() {
			return workflow.FailWith[*entity.RentalApplication]("Application fee cannot be negative"), nil
		}

		app := &entity.RentalApplication{
			ProspectiveTenantID: prospect.ID,
			PropertyID:          property.ID,
			Status:              workflow.ApplicationSubmitted,
			AppliedOn:           now,
			ExpiresOn:           timePtr(now.AddDate(0, 0, cfg.ApplicationExpirationDays)),
			ApplicationFee:      fee,
			MonthlyIncome:       req.MonthlyIncome,
		}
		app.Stamp(a.OrganizationID, a.UserID, now)
		if err := uow.Applications().Create(ctx, app); err != nil {
			return workflow.TypedResult[*entity.RentalApplication]{}, err
		}

		if property.Status == workflow.PropertyAvailable {
			property.Status = workflow.PropertyApplicationPending
			property.Touch(a.UserID, now)
			if err := uow.Properties().Save(ctx, property); err != nil {
				return workflow.TypedResult[*entity.RentalApplication]{}, err
			}
		}

		previous := prospect.Status
		prospect.Status = workflow.ProspectApplied
		prospect.Touch(a.UserID, now)
		if err := uow.Prospects().Save(ctx, prospect); err != nil {
			return workflow.TypedResult[*entity.RentalApplication]{}, err
		}

		if previous == workflow.ProspectLead {
			if err := s.Audit.LogTransition(ctx, uow, executor.Transition{
				EntityType: entity.TypeProspectiveTenant,
				EntityID:   prospect.ID,
				From:       string(previous),
				To:         string(prospect.Status),
				Action:     "SubmitApplication",
				Metadata:   map[string]string{"application_id": app.ID},
			}); err != nil {
				return workflow.TypedResult[*entity.RentalApplication]{}, err
			}
		}

		if err := s.Audit.LogTransition(ctx, uow, executor.Transition{
			EntityType: entity.TypeRentalApplication,
			EntityID:   app.ID,
			To:         string(app.Status),
			Action:     "Submit",
			Metadata: map[string]string{
				"prospective_tenant_id": prospect.ID,
				"property_id":           property.ID,
			},
		}); err != nil {
			return workflow.TypedResult[*entity.RentalApplication]{}, err
		}

		s.Logger.Info("Application submitted", "application_id", app.ID, "property_id", property.ID)
		return workflow.OkWith(app, "Application submitted successfully"), nil
	})
}

// MarkApplicationFeePaid records payment of the application fee
func (s *applicationServiceImpl) MarkApplicationFeePaid(ctx context.Context, applicationID string, amount decimal.Decimal) workflow.Result {
	a, fail := s.actor(ctx)
	if fail != nil {
		return *fail
	}

	return s.Executor.Execute(ctx, "application.fee_paid", func(ctx context.Context, uow port.UnitOfWork) (workflow.Result, error) {
		now := s.now()

		app, err := uow.Applications().GetByID(ctx, a.OrganizationID, applicationID)
		if err != nil {
			return workflow.Result{}, err
		}
		if app == nil {
			return workflow.Fail("Application not found"), nil
		}
		if app.Status.IsTerminal() {
			return workflow.Fail(fmt.Sprintf("Cannot record a fee payment for an application that is %s", app.Status)), nil
		}
		if app.ApplicationFeePaid {
			return workflow.Fail("Application fee has already been paid"), nil
		}
		if amount.IsNegative() {
			return workflow.Fail("Fee amount cannot be negative"), nil
		}

		app.ApplicationFeePaid = true
		app.ApplicationFeePaidOn = timePtr(now)
		if amount.IsPositive() {
			app.ApplicationFee = amount
		}
		app.Touch(a.UserID, now)
		if err := uow.Applications().Save(ctx, app); err != nil {
			return workflow.Result{}, err
		}

		if err := s.Audit.LogTransition(ctx, uow, executor.Transition{
			EntityType: entity.TypeRentalApplication,
			EntityID:   app.ID,
			From:       string(app.Status),
			To:         string(app.Status),
			Action:     "ApplicationFeePaid",
			Metadata:   map[string]string{"amount": app.ApplicationFee.StringFixed(2)},
		}); err != nil {
			return workflow.Result{}, err
		}

		return workflow.Ok("Application fee recorded"), nil
	})
}

// MarkUnderReview moves a submitted application into review
func (s *applicationServiceImpl) MarkUnderReview(ctx context.Context, applicationID string) workflow.Result {
	a, fail := s.actor(ctx)
	if fail != nil {
		return *fail
	}

	return s.Executor.Execute(ctx, "application.under_review", func(ctx context.Context, uow port.UnitOfWork) (workflow.Result, error) {
		now := s.now()

		app, res, err := s.transition(ctx, uow, a, applicationID, workflow.ApplicationUnderReview)
		if err != nil || res != nil {
			return deref(res), err
		}

		from := app.Status
		app.Status = workflow.ApplicationUnderReview
		app.DecisionBy = a.UserID
		if err := saveApplication(ctx, uow, s.Audit, a, now, app, from, "MarkUnderReview", ""); err != nil {
			return workflow.Result{}, err
		}
		return workflow.Ok("Application is now under review"), nil
	})
}

// InitiateScreening orders background and credit checks
func (s *applicationServiceImpl) InitiateScreening(ctx context.Context, applicationID string, req ScreeningRequest) workflow.TypedResult[*entity.ApplicationScreening] {
	a, fail := s.actor(ctx)
	if fail != nil {
		return workflow.Lift[*entity.ApplicationScreening](*fail)
	}

	return executor.ExecuteTyped(ctx, s.Executor, "application.initiate_screening", func(ctx context.Context, uow port.UnitOfWork) (workflow.TypedResult[*entity.ApplicationScreening], error) {
		now := s.now()

		app, err := uow.Applications().GetByID(ctx, a.OrganizationID, applicationID)
		if err != nil {
			return workflow.TypedResult[*entity.ApplicationScreening]{}, err
		}
		if app == nil {
			return workflow.FailWith[*entity.ApplicationScreening]("Application not found"), nil
		}
		if app.Status != workflow.ApplicationUnderReview {
			return workflow.FailWith[*entity.ApplicationScreening](
				fmt.Sprintf("Application must be under review to initiate screening. Current status: %s", app.Status)), nil
		}
		if !app.ApplicationFeePaid {
			return workflow.FailWith[*entity.ApplicationScreening]("Application fee must be paid before screening can begin"), nil
		}

		existing, err := uow.Screenings().GetByApplicationID(ctx, a.OrganizationID, app.ID)
		if err != nil {
			return workflow.TypedResult[*entity.ApplicationScreening]{}, err
		}
		if existing != nil {
			return workflow.FailWith[*entity.ApplicationScreening]("Screening has already been initiated for this application"), nil
		}

		screening := &entity.ApplicationScreening{
			RentalApplicationID:      app.ID,
			BackgroundCheckRequested: req.BackgroundCheck,
			CreditCheckRequested:     req.CreditCheck,
			OverallResult:            workflow.ScreeningPending,
		}
		if req.BackgroundCheck {
			screening.BackgroundCheckRequestedOn = timePtr(now)
		}
		if req.CreditCheck {
			screening.CreditCheckRequestedOn = timePtr(now)
		}
		screening.Stamp(a.OrganizationID, a.UserID, now)
		if err := uow.Screenings().Create(ctx, screening); err != nil {
			return workflow.TypedResult[*entity.ApplicationScreening]{}, err
		}

		from := app.Status
		app.Status = workflow.ApplicationScreening
		if err := saveApplication(ctx, uow, s.Audit, a, now, app, from, "InitiateScreening", ""); err != nil {
			return workflow.TypedResult[*entity.ApplicationScreening]{}, err
		}

		if _, _, err := setProspectStatus(ctx, uow, a, now, app.ProspectiveTenantID, workflow.ProspectScreening); err != nil {
			return workflow.TypedResult[*entity.ApplicationScreening]{}, err
		}

		return workflow.OkWith(screening, "Screening initiated"), nil
	})
}

// CompleteScreening records the screening outcome; the application status is unchanged
func (s *applicationServiceImpl) CompleteScreening(ctx context.Context, applicationID string, outcome ScreeningOutcome) workflow.Result {
	a, fail := s.actor(ctx)
	if fail != nil {
		return *fail
	}
	if !outcome.OverallResult.IsValid() || outcome.OverallResult == workflow.ScreeningPending {
		return workflow.Fail("Overall screening result must be Passed, Failed or ConditionalPass")
	}

	return s.Executor.Execute(ctx, "application.complete_screening", func(ctx context.Context, uow port.UnitOfWork) (workflow.Result, error) {
		now := s.now()

		app, err := uow.Applications().GetByID(ctx, a.OrganizationID, applicationID)
		if err != nil {
			return workflow.Result{}, err
		}
		if app == nil {
			return workflow.Fail("Application not found"), nil
		}
		if app.Status != workflow.ApplicationScreening {
			return workflow.Fail(fmt.Sprintf("Application is not in screening. Current status: %s", app.Status)), nil
		}

		screening, err := uow.Screenings().GetByApplicationID(ctx, a.OrganizationID, app.ID)
		if err != nil {
			return workflow.Result{}, err
		}
		if screening == nil {
			return workflow.Fail("Screening has not been initiated for this application"), nil
		}

		if outcome.BackgroundCheckPassed != nil {
			screening.BackgroundCheckPassed = outcome.BackgroundCheckPassed
			screening.BackgroundCheckCompletedOn = timePtr(now)
		}
		if outcome.CreditScore != nil || outcome.CreditCheckPassed != nil {
			screening.CreditScore = outcome.CreditScore
			screening.CreditCheckPassed = outcome.CreditCheckPassed
			screening.CreditCheckCompletedOn = timePtr(now)
		}
		screening.OverallResult = outcome.OverallResult
		screening.ResultNotes = outcome.Notes
		screening.Touch(a.UserID, now)
		if err := uow.Screenings().Save(ctx, screening); err != nil {
			return workflow.Result{}, err
		}

		if err := s.Audit.LogTransition(ctx, uow, executor.Transition{
			EntityType: entity.TypeRentalApplication,
			EntityID:   app.ID,
			From:       string(app.Status),
			To:         string(app.Status),
			Action:     "ScreeningCompleted",
			Metadata:   map[string]string{"overall_result": string(outcome.OverallResult)},
		}); err != nil {
			return workflow.Result{}, err
		}

		return workflow.Ok("Screening results recorded"), nil
	})
}

// ApproveApplication approves an application whose screening passed
func (s *applicationServiceImpl) ApproveApplication(ctx context.Context, applicationID string) workflow.Result {
	a, fail := s.actor(ctx)
	if fail != nil {
		return *fail
	}

	return s.Executor.Execute(ctx, "application.approve", func(ctx context.Context, uow port.UnitOfWork) (workflow.Result, error) {
		now := s.now()

		app, res, err := s.transition(ctx, uow, a, applicationID, workflow.ApplicationApproved)
		if err != nil || res != nil {
			return deref(res), err
		}

		screening, err := uow.Screenings().GetByApplicationID(ctx, a.OrganizationID, app.ID)
		if err != nil {
			return workflow.Result{}, err
		}
		if screening == nil || !screening.OverallResult.AllowsApproval() {
			return workflow.Fail("Screening must pass before the application can be approved"), nil
		}

		from := app.Status
		app.Status = workflow.ApplicationApproved
		app.DecisionBy = a.UserID
		app.DecidedOn = timePtr(now)
		if err := saveApplication(ctx, uow, s.Audit, a, now, app, from, "Approve", ""); err != nil {
			return workflow.Result{}, err
		}

		if _, _, err := setProspectStatus(ctx, uow, a, now, app.ProspectiveTenantID, workflow.ProspectApproved); err != nil {
			return workflow.Result{}, err
		}

		return workflow.Ok("Application approved"), nil
	})
}

// DenyApplication denies an application with a reason
func (s *applicationServiceImpl) DenyApplication(ctx context.Context, applicationID, reason string) workflow.Result {
	a, fail := s.actor(ctx)
	if fail != nil {
		return *fail
	}
	if reason == "" {
		return workflow.Fail("A denial reason is required")
	}

	return s.Executor.Execute(ctx, "application.deny", func(ctx context.Context, uow port.UnitOfWork) (workflow.Result, error) {
		now := s.now()

		app, res, err := s.transition(ctx, uow, a, applicationID, workflow.ApplicationDenied)
		if err != nil || res != nil {
			return deref(res), err
		}

		if err := denyApplication(ctx, uow, s.Audit, a, now, app, reason, "Deny"); err != nil {
			return workflow.Result{}, err
		}
		return workflow.Ok("Application denied"), nil
	})
}

// WithdrawApplication records that the prospect withdrew
func (s *applicationServiceImpl) WithdrawApplication(ctx context.Context, applicationID, reason string) workflow.Result {
	a, fail := s.actor(ctx)
	if fail != nil {
		return *fail
	}

	return s.Executor.Execute(ctx, "application.withdraw", func(ctx context.Context, uow port.UnitOfWork) (workflow.Result, error) {
		now := s.now()

		app, res, err := s.transition(ctx, uow, a, applicationID, workflow.ApplicationWithdrawn)
		if err != nil || res != nil {
			return deref(res), err
		}

		from := app.Status
		app.Status = workflow.ApplicationWithdrawn
		app.DecidedOn = timePtr(now)
		if err := saveApplication(ctx, uow, s.Audit, a, now, app, from, "Withdraw", reason); err != nil {
			return workflow.Result{}, err
		}

		if _, _, err := setProspectStatus(ctx, uow, a, now, app.ProspectiveTenantID, workflow.ProspectWithdrawn); err != nil {
			return workflow.Result{}, err
		}
		if err := releaseProperty(ctx, uow, a, now, app.PropertyID, app.ID); err != nil {
			return workflow.Result{}, err
		}

		return workflow.Ok("Application withdrawn"), nil
	})
}

// ExpireApplication expires an application that is past its expiry date
func (s *applicationServiceImpl) ExpireApplication(ctx context.Context, applicationID string) workflow.Result {
	a, fail := s.actor(ctx)
	if fail != nil {
		return *fail
	}

	return s.Executor.Execute(ctx, "application.expire", func(ctx context.Context, uow port.UnitOfWork) (workflow.Result, error) {
		now := s.now()

		app, res, err := s.transition(ctx, uow, a, applicationID, workflow.ApplicationExpired)
		if err != nil || res != nil {
			return deref(res), err
		}
		if !app.IsExpired(now) {
			return workflow.Fail("Application has not reached its expiration date"), nil
		}
		if app.Status == workflow.ApplicationLeaseOffered {
			offer, err := uow.LeaseOffers().GetPendingByApplication(ctx, a.OrganizationID, app.ID)
			if err != nil {
				return workflow.Result{}, err
			}
			if offer != nil && !now.After(offer.ExpiresOn) {
				return workflow.Fail("Application has a lease offer that has not reached its expiration date"), nil
			}
		}

		if err := expireApplication(ctx, uow, s.Audit, a, now, app, "Application expired"); err != nil {
			return workflow.Result{}, err
		}
		return workflow.Ok("Application expired"), nil
	})
}

// GetApplicationWorkflowState returns the application's status, next steps and history
func (s *applicationServiceImpl) GetApplicationWorkflowState(ctx context.Context, applicationID string) workflow.TypedResult[*ApplicationWorkflowState] {
	a, fail := s.actor(ctx)
	if fail != nil {
		return workflow.Lift[*ApplicationWorkflowState](*fail)
	}

	repos := s.TxManager.Reader()
	app, err := repos.Applications().GetByID(ctx, a.OrganizationID, applicationID)
	if err != nil {
		s.Logger.Error("Failed to load application", "application_id", applicationID, "error", err)
		return workflow.Lift[*ApplicationWorkflowState](workflow.Internal(fmt.Sprintf("An error occurred: %s", err.Error())))
	}
	if app == nil {
		return workflow.FailWith[*ApplicationWorkflowState]("Application not found")
	}

	screening, err := repos.Screenings().GetByApplicationID(ctx, a.OrganizationID, app.ID)
	if err != nil {
		return workflow.Lift[*ApplicationWorkflowState](workflow.Internal(fmt.Sprintf("An error occurred: %s", err.Error())))
	}

	history, err := s.Audit.GetAuditHistory(ctx, entity.TypeRentalApplication, app.ID)
	if err != nil {
		return workflow.Lift[*ApplicationWorkflowState](workflow.Internal(fmt.Sprintf("An error occurred: %s", err.Error())))
	}

	return workflow.OkWith(&ApplicationWorkflowState{
		Application:       app,
		Screening:         screening,
		CurrentStatus:     app.Status,
		ValidNextStatuses: workflow.ApplicationTable.ValidNextStates(app.Status),
		History:           history,
	}, "")
}

// transition loads the application and checks that moving it to target is permitted
func (s *applicationServiceImpl) transition(ctx context.Context, uow port.UnitOfWork, a actor, applicationID string, target workflow.ApplicationStatus) (*entity.RentalApplication, *workflow.Result, error) {
	app, err := uow.Applications().GetByID(ctx, a.OrganizationID, applicationID)
	if err != nil {
		return nil, nil, err
	}
	if app == nil {
		res := workflow.Fail("Application not found")
		return nil, &res, nil
	}
	if !workflow.ApplicationTable.IsValidTransition(app.Status, target) {
		res := workflow.Fail(workflow.ApplicationTable.InvalidTransitionReason(app.Status, target))
		return nil, &res, nil
	}
	return app, nil, nil
}

func deref(r *workflow.Result) workflow.Result {
	if r == nil {
		return workflow.Result{}
	}
	return *r
}
