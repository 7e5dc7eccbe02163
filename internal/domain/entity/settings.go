package entity

import (
	"github.com/shopspring/decimal"

	"github.com/xskcdf/Aquiis-sub005/internal/domain/workflow"
)

// Organization defaults applied when no settings row exists
const (
	DefaultApplicationExpirationDays = 30
	DefaultLeaseOfferExpirationDays  = 7
)

// DefaultOrganizationSharePercentage is the fraction of pool earnings kept by the organization
var DefaultOrganizationSharePercentage = decimal.RequireFromString("0.20")

// OrganizationSettings holds per-organization workflow knobs
type OrganizationSettings struct {
	BaseModel
	ApplicationExpirationDays    int                    `gorm:"not null" json:"application_expiration_days"`
	LeaseOfferExpirationDays     int                    `gorm:"not null" json:"lease_offer_expiration_days"`
	ApplicationFeeAmount         decimal.Decimal        `gorm:"type:decimal(18,2)" json:"application_fee_amount"`
	OrganizationSharePercentage  decimal.Decimal        `gorm:"type:decimal(5,4)" json:"organization_share_percentage"`
	DefaultDividendPaymentMethod workflow.PaymentMethod `gorm:"type:varchar(32);not null" json:"default_dividend_payment_method"`
}

// DefaultOrganizationSettings returns unsaved settings with the documented defaults
func DefaultOrganizationSettings(organizationID string) *OrganizationSettings {
	s := &OrganizationSettings{
		ApplicationExpirationDays:    DefaultApplicationExpirationDays,
		LeaseOfferExpirationDays:     DefaultLeaseOfferExpirationDays,
		ApplicationFeeAmount:         decimal.Zero,
		OrganizationSharePercentage:  DefaultOrganizationSharePercentage,
		DefaultDividendPaymentMethod: workflow.PaymentMethodLeaseCredit,
	}
	s.OrganizationID = organizationID
	return s
}

// Normalize replaces unset values with defaults
func (s *OrganizationSettings) Normalize() {
	if s.ApplicationExpirationDays <= 0 {
		s.ApplicationExpirationDays = DefaultApplicationExpirationDays
	}
	if s.LeaseOfferExpirationDays <= 0 {
		s.LeaseOfferExpirationDays = DefaultLeaseOfferExpirationDays
	}
	if !s.DefaultDividendPaymentMethod.IsChoice() {
		s.DefaultDividendPaymentMethod = workflow.PaymentMethodLeaseCredit
	}
}
