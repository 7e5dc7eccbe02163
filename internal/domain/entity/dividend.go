package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xskcdf/Aquiis-sub005/internal/domain/workflow"
)

// SecurityDepositInvestmentPool aggregates one organization's invested deposits for a year
type SecurityDepositInvestmentPool struct {
	BaseModel
	Versioned
	Year                        int                 `gorm:"index;not null" json:"year"`
	StartingBalance             decimal.Decimal     `gorm:"type:decimal(18,2)" json:"starting_balance"`
	EndingBalance               decimal.Decimal     `gorm:"type:decimal(18,2)" json:"ending_balance"`
	TotalEarnings               decimal.Decimal     `gorm:"type:decimal(18,2)" json:"total_earnings"`
	ReturnRate                  decimal.Decimal     `gorm:"type:decimal(9,6)" json:"return_rate"`
	OrganizationSharePercentage decimal.Decimal     `gorm:"type:decimal(5,4)" json:"organization_share_percentage"`
	OrganizationShare           decimal.Decimal     `gorm:"type:decimal(18,2)" json:"organization_share"`
	TenantShareTotal            decimal.Decimal     `gorm:"type:decimal(18,2)" json:"tenant_share_total"`
	ActiveLeaseCount            int                 `json:"active_lease_count"`
	DividendPerLease            decimal.Decimal     `gorm:"type:decimal(18,2)" json:"dividend_per_lease"`
	CalculatedOn                *time.Time          `json:"calculated_on,omitempty"`
	DistributedOn               *time.Time          `json:"distributed_on,omitempty"`
	Status                      workflow.PoolStatus `gorm:"type:varchar(32);not null" json:"status"`
}

// SecurityDepositDividend is one deposit's share of a pool's tenant earnings
type SecurityDepositDividend struct {
	BaseModel
	Versioned
	SecurityDepositID  string                  `gorm:"type:varchar(36);uniqueIndex:idx_dividend_deposit_year;not null" json:"security_deposit_id"`
	InvestmentPoolID   string                  `gorm:"type:varchar(36);index;not null" json:"investment_pool_id"`
	LeaseID            string                  `gorm:"type:varchar(36);index;not null" json:"lease_id"`
	TenantID           string                  `gorm:"type:varchar(36);index;not null" json:"tenant_id"`
	Year               int                     `gorm:"uniqueIndex:idx_dividend_deposit_year;not null" json:"year"`
	BaseDividendAmount decimal.Decimal         `gorm:"type:decimal(18,2)" json:"base_dividend_amount"`
	ProrationFactor    decimal.Decimal         `gorm:"type:decimal(5,4)" json:"proration_factor"`
	MonthsInPool       int                     `json:"months_in_pool"`
	DividendAmount     decimal.Decimal         `gorm:"type:decimal(18,2)" json:"dividend_amount"`
	PaymentMethod      workflow.PaymentMethod  `gorm:"type:varchar(32);not null" json:"payment_method"`
	ChoiceMadeOn       *time.Time              `json:"choice_made_on,omitempty"`
	PaymentProcessedOn *time.Time              `json:"payment_processed_on,omitempty"`
	Status             workflow.DividendStatus `gorm:"type:varchar(32);not null" json:"status"`
}
