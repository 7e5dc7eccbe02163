package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel carries the identity, tenancy and audit columns shared by every persisted entity
type BaseModel struct {
	ID             string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrganizationID string         `gorm:"type:varchar(36);index;not null" json:"organization_id"`
	CreatedBy      string         `gorm:"size:64" json:"created_by"`
	CreatedOn      time.Time      `json:"created_on"`
	ModifiedBy     string         `gorm:"size:64" json:"modified_by,omitempty"`
	ModifiedOn     *time.Time     `json:"modified_on,omitempty"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID when the caller did not
func (b *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Stamp fills the tenancy and creation columns for a new row
func (b *BaseModel) Stamp(organizationID, actor string, now time.Time) {
	b.OrganizationID = organizationID
	b.CreatedBy = actor
	b.CreatedOn = now
}

// Touch records a modification
func (b *BaseModel) Touch(actor string, now time.Time) {
	b.ModifiedBy = actor
	b.ModifiedOn = &now
}

// Versioned is embedded by entities whose status writes are guarded by an optimistic concurrency token
type Versioned struct {
	Version int `gorm:"not null" json:"version"`
}

func (v *Versioned) CurrentVersion() int { return v.Version }

func (v *Versioned) SetVersion(n int) { v.Version = n }

// Entity type tags recorded in the audit log
const (
	TypeRentalApplication = "RentalApplication"
	TypeProspectiveTenant = "ProspectiveTenant"
	TypeProperty          = "Property"
	TypeLeaseOffer        = "LeaseOffer"
	TypeLease             = "Lease"
	TypeTour              = "Tour"
	TypeInvestmentPool    = "SecurityDepositInvestmentPool"
	TypeDividend          = "SecurityDepositDividend"
)

// All returns one zero value of every persisted entity, in dependency order for migration
func All() []any {
	return []any{
		&OrganizationSettings{},
		&Property{},
		&ProspectiveTenant{},
		&Tenant{},
		&Tour{},
		&RentalApplication{},
		&ApplicationScreening{},
		&LeaseOffer{},
		&Lease{},
		&SecurityDeposit{},
		&SecurityDepositInvestmentPool{},
		&SecurityDepositDividend{},
		&WorkflowAuditLog{},
	}
}
