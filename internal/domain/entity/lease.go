package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xskcdf/Aquiis-sub005/internal/domain/workflow"
)

// LeaseOffer is the offer generated from an approved application
type LeaseOffer struct {
	BaseModel
	Versioned
	RentalApplicationID string                    `gorm:"type:varchar(36);index;not null" json:"rental_application_id"`
	PropertyID          string                    `gorm:"type:varchar(36);index;not null" json:"property_id"`
	ProspectiveTenantID string                    `gorm:"type:varchar(36);index;not null" json:"prospective_tenant_id"`
	StartDate           time.Time                 `gorm:"not null" json:"start_date"`
	EndDate             time.Time                 `gorm:"not null" json:"end_date"`
	MonthlyRent         decimal.Decimal           `gorm:"type:decimal(18,2)" json:"monthly_rent"`
	SecurityDeposit     decimal.Decimal           `gorm:"type:decimal(18,2)" json:"security_deposit"`
	Terms               string                    `gorm:"type:text" json:"terms,omitempty"`
	OfferedOn           time.Time                 `gorm:"not null" json:"offered_on"`
	ExpiresOn           time.Time                 `gorm:"not null" json:"expires_on"`
	RespondedOn         *time.Time                `json:"responded_on,omitempty"`
	ResponseNotes       string                    `gorm:"type:text" json:"response_notes,omitempty"`
	Status              workflow.LeaseOfferStatus `gorm:"type:varchar(32);index;not null" json:"status"`
	ConvertedLeaseID    *string                   `gorm:"type:varchar(36)" json:"converted_lease_id,omitempty"`
}

// Lease is a signed agreement between a tenant and a property
type Lease struct {
	BaseModel
	PropertyID            string               `gorm:"type:varchar(36);index;not null" json:"property_id"`
	TenantID              string               `gorm:"type:varchar(36);index;not null" json:"tenant_id"`
	LeaseOfferID          *string              `gorm:"type:varchar(36)" json:"lease_offer_id,omitempty"`
	StartDate             time.Time            `gorm:"not null" json:"start_date"`
	EndDate               time.Time            `gorm:"not null" json:"end_date"`
	MonthlyRent           decimal.Decimal      `gorm:"type:decimal(18,2)" json:"monthly_rent"`
	SecurityDepositAmount decimal.Decimal      `gorm:"type:decimal(18,2)" json:"security_deposit_amount"`
	Terms                 string               `gorm:"type:text" json:"terms,omitempty"`
	Status                workflow.LeaseStatus `gorm:"type:varchar(32);index;not null" json:"status"`
}

// SecurityDeposit is the deposit held for a lease, optionally invested in the yearly pool
type SecurityDeposit struct {
	BaseModel
	LeaseID          string                 `gorm:"type:varchar(36);index;not null" json:"lease_id"`
	TenantID         string                 `gorm:"type:varchar(36);index;not null" json:"tenant_id"`
	Amount           decimal.Decimal        `gorm:"type:decimal(18,2)" json:"amount"`
	DateReceived     time.Time              `gorm:"not null" json:"date_received"`
	InInvestmentPool bool                   `gorm:"not null;default:false" json:"in_investment_pool"`
	PoolEntryDate    *time.Time             `json:"pool_entry_date,omitempty"`
	PoolExitDate     *time.Time             `json:"pool_exit_date,omitempty"`
	Status           workflow.DepositStatus `gorm:"type:varchar(32);not null" json:"status"`
}
