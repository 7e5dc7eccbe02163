package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xskcdf/Aquiis-sub005/internal/domain/workflow"
)

// Property represents a rentable unit
type Property struct {
	BaseModel
	Address     string                  `gorm:"size:255;not null" json:"address"`
	City        string                  `gorm:"size:100" json:"city"`
	State       string                  `gorm:"size:50" json:"state"`
	ZipCode     string                  `gorm:"size:20" json:"zip_code"`
	MonthlyRent decimal.Decimal         `gorm:"type:decimal(18,2)" json:"monthly_rent"`
	Status      workflow.PropertyStatus `gorm:"type:varchar(32);not null" json:"status"`
}

// ProspectiveTenant is a lead that has not signed a lease yet
type ProspectiveTenant struct {
	BaseModel
	FirstName         string                  `gorm:"size:100;not null" json:"first_name"`
	LastName          string                  `gorm:"size:100;not null" json:"last_name"`
	Email             string                  `gorm:"size:255" json:"email"`
	Phone             string                  `gorm:"size:50" json:"phone"`
	Status            workflow.ProspectStatus `gorm:"type:varchar(32);not null" json:"status"`
	ConvertedTenantID *string                 `gorm:"type:varchar(36)" json:"converted_tenant_id,omitempty"`
}

func (p *ProspectiveTenant) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Tenant is a prospect that accepted a lease offer
type Tenant struct {
	BaseModel
	FirstName           string  `gorm:"size:100;not null" json:"first_name"`
	LastName            string  `gorm:"size:100;not null" json:"last_name"`
	Email               string  `gorm:"size:255" json:"email"`
	Phone               string  `gorm:"size:50" json:"phone"`
	ProspectiveTenantID *string `gorm:"type:varchar(36);index" json:"prospective_tenant_id,omitempty"`
}

// Tour is a scheduled property showing
type Tour struct {
	BaseModel
	Versioned
	ProspectiveTenantID string              `gorm:"type:varchar(36);index;not null" json:"prospective_tenant_id"`
	PropertyID          string              `gorm:"type:varchar(36);index;not null" json:"property_id"`
	ScheduledOn         time.Time           `gorm:"not null" json:"scheduled_on"`
	Status              workflow.TourStatus `gorm:"type:varchar(32);not null" json:"status"`
	Feedback            string              `gorm:"type:text" json:"feedback,omitempty"`
	CancellationReason  string              `gorm:"type:text" json:"cancellation_reason,omitempty"`
}
