package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xskcdf/Aquiis-sub005/internal/domain/workflow"
)

// RentalApplication is a prospect's application to rent a property
type RentalApplication struct {
	BaseModel
	Versioned
	ProspectiveTenantID  string                     `gorm:"type:varchar(36);index;not null" json:"prospective_tenant_id"`
	PropertyID           string                     `gorm:"type:varchar(36);index;not null" json:"property_id"`
	Status               workflow.ApplicationStatus `gorm:"type:varchar(32);index;not null" json:"status"`
	AppliedOn            time.Time                  `gorm:"not null" json:"applied_on"`
	ExpiresOn            *time.Time                 `json:"expires_on,omitempty"`
	ApplicationFee       decimal.Decimal            `gorm:"type:decimal(18,2)" json:"application_fee"`
	ApplicationFeePaid   bool                       `gorm:"not null;default:false" json:"application_fee_paid"`
	ApplicationFeePaidOn *time.Time                 `json:"application_fee_paid_on,omitempty"`
	MonthlyIncome        decimal.Decimal            `gorm:"type:decimal(18,2)" json:"monthly_income"`
	DecisionBy           string                     `gorm:"size:64" json:"decision_by,omitempty"`
	DecidedOn            *time.Time                 `json:"decided_on,omitempty"`
	DenialReason         string                     `gorm:"type:text" json:"denial_reason,omitempty"`
}

// IsExpired reports whether the application has passed its expiry date
func (a *RentalApplication) IsExpired(now time.Time) bool {
	return a.ExpiresOn != nil && now.After(*a.ExpiresOn)
}

// ApplicationScreening holds background and credit check state, one per application
type ApplicationScreening struct {
	BaseModel
	RentalApplicationID        string                   `gorm:"type:varchar(36);uniqueIndex;not null" json:"rental_application_id"`
	BackgroundCheckRequested   bool                     `json:"background_check_requested"`
	BackgroundCheckRequestedOn *time.Time               `json:"background_check_requested_on,omitempty"`
	BackgroundCheckPassed      *bool                    `json:"background_check_passed,omitempty"`
	BackgroundCheckCompletedOn *time.Time               `json:"background_check_completed_on,omitempty"`
	CreditCheckRequested       bool                     `json:"credit_check_requested"`
	CreditCheckRequestedOn     *time.Time               `json:"credit_check_requested_on,omitempty"`
	CreditScore                *int                     `json:"credit_score,omitempty"`
	CreditCheckPassed          *bool                    `json:"credit_check_passed,omitempty"`
	CreditCheckCompletedOn     *time.Time               `json:"credit_check_completed_on,omitempty"`
	OverallResult              workflow.ScreeningResult `gorm:"type:varchar(32);not null" json:"overall_result"`
	ResultNotes                string                   `gorm:"type:text" json:"result_notes,omitempty"`
}
