package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xskcdf/Aquiis-sub005/internal/application/executor"
	"github.com/xskcdf/Aquiis-sub005/internal/application/port"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/entity"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/workflow"
	"github.com/xskcdf/Aquiis-sub005/pkg/utils"
)

// CreatePropertyRequest describes a new rentable unit
type CreatePropertyRequest struct {
	Address     string          `json:"address"`
	City        string          `json:"city"`
	State       string          `json:"state"`
	ZipCode     string          `json:"zip_code"`
	MonthlyRent decimal.Decimal `json:"monthly_rent"`
}

// CreateProspectRequest describes a new lead
type CreateProspectRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// DirectoryService maintains the records the workflows operate on
type DirectoryService interface {
	CreateProperty(ctx context.Context, req CreatePropertyRequest) workflow.TypedResult[*entity.Property]
	ListProperties(ctx context.Context) workflow.TypedResult[[]*entity.Property]
	CreateProspect(ctx context.Context, req CreateProspectRequest) workflow.TypedResult[*entity.ProspectiveTenant]
	ListProspects(ctx context.Context) workflow.TypedResult[[]*entity.ProspectiveTenant]
	GetSettings(ctx context.Context) workflow.TypedResult[*entity.OrganizationSettings]
	UpdateSettings(ctx context.Context, settings entity.OrganizationSettings) workflow.TypedResult[*entity.OrganizationSettings]
}

type directoryServiceImpl struct {
	Deps
}

// NewDirectoryService creates a new DirectoryService
func NewDirectoryService(deps Deps) DirectoryService {
	return &directoryServiceImpl{Deps: deps}
}

// CreateProperty adds an Available property
func (s *directoryServiceImpl) CreateProperty(ctx context.Context, req CreatePropertyRequest) workflow.TypedResult[*entity.Property] {
	a, fail := s.actor(ctx)
	if fail != nil {
		return workflow.Lift[*entity.Property](*fail)
	}

	address := utils.SanitizeString(req.Address)
	zip := utils.SanitizeString(req.ZipCode)

	var errs []string
	if address == "" {
		errs = append(errs, "Address is required")
	}
	if zip != "" && utils.ValidateZipCode(zip) != nil {
		errs = append(errs, "Zip code is invalid")
	}
	if utils.ValidateNonNegative("monthly rent", req.MonthlyRent) != nil {
		errs = append(errs, "Monthly rent cannot be negative")
	}
	if len(errs) > 0 {
		return workflow.FailWith[*entity.Property]("Invalid property", errs...)
	}

	return executor.ExecuteTyped(ctx, s.Executor, "property.create", func(ctx context.Context, uow port.UnitOfWork) (workflow.TypedResult[*entity.Property], error) {
		p := &entity.Property{
			Address:     address,
			City:        utils.SanitizeString(req.City),
			State:       utils.SanitizeString(req.State),
			ZipCode:     zip,
			MonthlyRent: req.MonthlyRent,
			Status:      workflow.PropertyAvailable,
		}
		p.Stamp(a.OrganizationID, a.UserID, s.now())
		if err := uow.Properties().Create(ctx, p); err != nil {
			return workflow.TypedResult[*entity.Property]{}, err
		}
		return workflow.OkWith(p, "Property created"), nil
	})
}

// ListProperties returns the organization's properties
func (s *directoryServiceImpl) ListProperties(ctx context.Context) workflow.TypedResult[[]*entity.Property] {
	a, fail := s.actor(ctx)
	if fail != nil {
		return workflow.Lift[[]*entity.Property](*fail)
	}

	properties, err := s.TxManager.Reader().Properties().List(ctx, a.OrganizationID)
	if err != nil {
		s.Logger.Error("Failed to list properties", "error", err)
		return workflow.Lift[[]*entity.Property](workflow.Internal(fmt.Sprintf("An error occurred: %s", err.Error())))
	}
	return workflow.OkWith(properties, "")
}

// CreateProspect adds a new Lead
func (s *directoryServiceImpl) CreateProspect(ctx context.Context, req CreateProspectRequest) workflow.TypedResult[*entity.ProspectiveTenant] {
	a, fail := s.actor(ctx)
	if fail != nil {
		return workflow.Lift[*entity.ProspectiveTenant](*fail)
	}

	first := utils.SanitizeString(req.FirstName)
	last := utils.SanitizeString(req.LastName)
	email := utils.SanitizeString(req.Email)

	var errs []string
	if first == "" || last == "" {
		errs = append(errs, "First and last name are required")
	}
	if email != "" && utils.ValidateEmail(email) != nil {
		errs = append(errs, "Email address is invalid")
	}
	if len(errs) > 0 {
		return workflow.FailWith[*entity.ProspectiveTenant]("Invalid prospective tenant", errs...)
	}

	return executor.ExecuteTyped(ctx, s.Executor, "prospect.create", func(ctx context.Context, uow port.UnitOfWork) (workflow.TypedResult[*entity.ProspectiveTenant], error) {
		p := &entity.ProspectiveTenant{
			FirstName: first,
			LastName:  last,
			Email:     email,
			Phone:     utils.SanitizeString(req.Phone),
			Status:    workflow.ProspectLead,
		}
		p.Stamp(a.OrganizationID, a.UserID, s.now())
		if err := uow.Prospects().Create(ctx, p); err != nil {
			return workflow.TypedResult[*entity.ProspectiveTenant]{}, err
		}
		return workflow.OkWith(p, "Prospective tenant created"), nil
	})
}

// ListProspects returns the organization's prospective tenants
func (s *directoryServiceImpl) ListProspects(ctx context.Context) workflow.TypedResult[[]*entity.ProspectiveTenant] {
	a, fail := s.actor(ctx)
	if fail != nil {
		return workflow.Lift[[]*entity.ProspectiveTenant](*fail)
	}

	prospects, err := s.TxManager.Reader().Prospects().List(ctx, a.OrganizationID)
	if err != nil {
		s.Logger.Error("Failed to list prospects", "error", err)
		return workflow.Lift[[]*entity.ProspectiveTenant](workflow.Internal(fmt.Sprintf("An error occurred: %s", err.Error())))
	}
	return workflow.OkWith(prospects, "")
}

// GetSettings returns the organization's settings or the defaults
func (s *directoryServiceImpl) GetSettings(ctx context.Context) workflow.TypedResult[*entity.OrganizationSettings] {
	a, fail := s.actor(ctx)
	if fail != nil {
		return workflow.Lift[*entity.OrganizationSettings](*fail)
	}

	cfg, err := settings(ctx, s.TxManager.Reader(), a.OrganizationID)
	if err != nil {
		s.Logger.Error("Failed to load settings", "error", err)
		return workflow.Lift[*entity.OrganizationSettings](workflow.Internal(fmt.Sprintf("An error occurred: %s", err.Error())))
	}
	return workflow.OkWith(cfg, "")
}

// UpdateSettings replaces the organization's workflow settings
func (s *directoryServiceImpl) UpdateSettings(ctx context.Context, in entity.OrganizationSettings) workflow.TypedResult[*entity.OrganizationSettings] {
	a, fail := s.actor(ctx)
	if fail != nil {
		return workflow.Lift[*entity.OrganizationSettings](*fail)
	}

	var errs []string
	if in.ApplicationExpirationDays < 0 || in.LeaseOfferExpirationDays < 0 {
		errs = append(errs, "Expiration days cannot be negative")
	}
	if in.ApplicationFeeAmount.IsNegative() {
		errs = append(errs, "Application fee cannot be negative")
	}
	if in.OrganizationSharePercentage.IsNegative() || in.OrganizationSharePercentage.GreaterThan(decimal.NewFromInt(1)) {
		errs = append(errs, "Organization share percentage must be between 0 and 1")
	}
	if in.DefaultDividendPaymentMethod != "" && !in.DefaultDividendPaymentMethod.IsChoice() {
		errs = append(errs, "Default dividend payment method must be LeaseCredit or Check")
	}
	if len(errs) > 0 {
		return workflow.FailWith[*entity.OrganizationSettings]("Invalid settings", errs...)
	}

	return executor.ExecuteTyped(ctx, s.Executor, "settings.update", func(ctx context.Context, uow port.UnitOfWork) (workflow.TypedResult[*entity.OrganizationSettings], error) {
		now := s.now()

		current, err := uow.Settings().Get(ctx, a.OrganizationID)
		if err != nil {
			return workflow.TypedResult[*entity.OrganizationSettings]{}, err
		}
		if current == nil {
			current = entity.DefaultOrganizationSettings(a.OrganizationID)
			current.Stamp(a.OrganizationID, a.UserID, now)
		} else {
			current.Touch(a.UserID, now)
		}

		current.ApplicationExpirationDays = in.ApplicationExpirationDays
		current.LeaseOfferExpirationDays = in.LeaseOfferExpirationDays
		current.ApplicationFeeAmount = in.ApplicationFeeAmount
		current.OrganizationSharePercentage = in.OrganizationSharePercentage
		current.DefaultDividendPaymentMethod = in.DefaultDividendPaymentMethod
		current.Normalize()

		if err := uow.Settings().Save(ctx, current); err != nil {
			return workflow.TypedResult[*entity.OrganizationSettings]{}, err
		}
		return workflow.OkWith(current, "Settings updated"), nil
	})
}
