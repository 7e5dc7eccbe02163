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

// TourService schedules property showings for prospects
type TourService interface {
	ScheduleTour(ctx context.Context, prospectID, propertyID string, at time.Time) workflow.TypedResult[*entity.Tour]
	CompleteTour(ctx context.Context, tourID, feedback string) workflow.Result
	CancelTour(ctx context.Context, tourID, reason string) workflow.Result
	MarkTourNoShow(ctx context.Context, tourID string) workflow.Result
	ListTours(ctx context.Context, prospectID string) workflow.TypedResult[[]*entity.Tour]
}

type tourServiceImpl struct {
	Deps
}

// NewTourService creates a new TourService
func NewTourService(deps Deps) TourService {
	return &tourServiceImpl{Deps: deps}
}

// ScheduleTour books a showing and moves a fresh lead to TourScheduled
func (s *tourServiceImpl) ScheduleTour(ctx context.Context, prospectID, propertyID string, at time.Time) workflow.TypedResult[*entity.Tour] {
	a, fail := s.actor(ctx)
	if fail != nil {
		return workflow.Lift[*entity.Tour](*fail)
	}
	if at.IsZero() {
		return workflow.FailWith[*entity.Tour]("A tour time is required")
	}

	return executor.ExecuteTyped(ctx, s.Executor, "tour.schedule", func(ctx context.Context, uow port.UnitOfWork) (workflow.TypedResult[*entity.Tour], error) {
		now := s.now()

		prospect, err := uow.Prospects().GetByID(ctx, a.OrganizationID, prospectID)
		if err != nil {
			return workflow.TypedResult[*entity.Tour]{}, err
		}
		if prospect == nil {
			return workflow.FailWith[*entity.Tour]("Prospective tenant not found"), nil
		}
		if prospect.Status == workflow.ProspectConvertedToTenant {
			return workflow.FailWith[*entity.Tour]("Prospective tenant has already been converted to a tenant"), nil
		}

		property, err := uow.Properties().GetByID(ctx, a.OrganizationID, propertyID)
		if err != nil {
			return workflow.TypedResult[*entity.Tour]{}, err
		}
		if property == nil {
			return workflow.FailWith[*entity.Tour]("Property not found"), nil
		}

		tour := &entity.Tour{
			ProspectiveTenantID: prospect.ID,
			PropertyID:          property.ID,
			ScheduledOn:         at.UTC(),
			Status:              workflow.TourScheduled,
		}
		tour.Stamp(a.OrganizationID, a.UserID, now)
		if err := uow.Tours().Create(ctx, tour); err != nil {
			return workflow.TypedResult[*entity.Tour]{}, err
		}
		if err := s.Audit.LogTransition(ctx, uow, executor.Transition{
			EntityType: entity.TypeTour,
			EntityID:   tour.ID,
			To:         string(tour.Status),
			Action:     "Schedule",
			Metadata:   map[string]string{"scheduled_on": tour.ScheduledOn.Format(time.RFC3339)},
		}); err != nil {
			return workflow.TypedResult[*entity.Tour]{}, err
		}

		if prospect.Status == workflow.ProspectLead {
			prospect.Status = workflow.ProspectTourScheduled
			prospect.Touch(a.UserID, now)
			if err := uow.Prospects().Save(ctx, prospect); err != nil {
				return workflow.TypedResult[*entity.Tour]{}, err
			}
			if err := s.Audit.LogTransition(ctx, uow, executor.Transition{
				EntityType: entity.TypeProspectiveTenant,
				EntityID:   prospect.ID,
				From:       string(workflow.ProspectLead),
				To:         string(prospect.Status),
				Action:     "ScheduleTour",
			}); err != nil {
				return workflow.TypedResult[*entity.Tour]{}, err
			}
		}

		s.Logger.Info("Tour scheduled", "tour_id", tour.ID, "prospect_id", prospect.ID)
		return workflow.OkWith(tour, "Tour scheduled"), nil
	})
}

// CompleteTour records that the showing took place
func (s *tourServiceImpl) CompleteTour(ctx context.Context, tourID, feedback string) workflow.Result {
	return s.move(ctx, "tour.complete", tourID, workflow.TourCompleted, "Complete", "", func(t *entity.Tour) {
		t.Feedback = feedback
	})
}

// CancelTour cancels a scheduled showing
func (s *tourServiceImpl) CancelTour(ctx context.Context, tourID, reason string) workflow.Result {
	return s.move(ctx, "tour.cancel", tourID, workflow.TourCancelled, "Cancel", reason, func(t *entity.Tour) {
		t.CancellationReason = reason
	})
}

// MarkTourNoShow records that the prospect did not turn up
func (s *tourServiceImpl) MarkTourNoShow(ctx context.Context, tourID string) workflow.Result {
	return s.move(ctx, "tour.no_show", tourID, workflow.TourNoShow, "NoShow", "", nil)
}

// ListTours returns a prospect's tours
func (s *tourServiceImpl) ListTours(ctx context.Context, prospectID string) workflow.TypedResult[[]*entity.Tour] {
	a, fail := s.actor(ctx)
	if fail != nil {
		return workflow.Lift[[]*entity.Tour](*fail)
	}

	tours, err := s.TxManager.Reader().Tours().ListByProspect(ctx, a.OrganizationID, prospectID)
	if err != nil {
		s.Logger.Error("Failed to list tours", "prospect_id", prospectID, "error", err)
		return workflow.Lift[[]*entity.Tour](workflow.Internal(fmt.Sprintf("An error occurred: %s", err.Error())))
	}
	return workflow.OkWith(tours, "")
}

func (s *tourServiceImpl) move(ctx context.Context, name, tourID string, target workflow.TourStatus, action, reason string, mutate func(*entity.Tour)) workflow.Result {
	a, fail := s.actor(ctx)
	if fail != nil {
		return *fail
	}

	return s.Executor.Execute(ctx, name, func(ctx context.Context, uow port.UnitOfWork) (workflow.Result, error) {
		tour, err := uow.Tours().GetByID(ctx, a.OrganizationID, tourID)
		if err != nil {
			return workflow.Result{}, err
		}
		if tour == nil {
			return workflow.Fail("Tour not found"), nil
		}
		if !workflow.TourTable.IsValidTransition(tour.Status, target) {
			return workflow.Fail(workflow.TourTable.InvalidTransitionReason(tour.Status, target)), nil
		}

		from := tour.Status
		tour.Status = target
		if mutate != nil {
			mutate(tour)
		}
		tour.Touch(a.UserID, s.now())
		if err := uow.Tours().Save(ctx, tour); err != nil {
			return workflow.Result{}, err
		}
		if err := s.Audit.LogTransition(ctx, uow, executor.Transition{
			EntityType: entity.TypeTour,
			EntityID:   tour.ID,
			From:       string(from),
			To:         string(target),
			Action:     action,
			Reason:     reason,
		}); err != nil {
			return workflow.Result{}, err
		}
		return workflow.Ok(fmt.Sprintf("Tour marked %s", target)), nil
	})
}
