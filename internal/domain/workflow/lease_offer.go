package workflow

import "database/sql/driver"

// LeaseOfferStatus is the lifecycle status of a lease offer
type LeaseOfferStatus string

const (
	LeaseOfferPending   LeaseOfferStatus = "Pending"
	LeaseOfferAccepted  LeaseOfferStatus = "Accepted"
	LeaseOfferDeclined  LeaseOfferStatus = "Declined"
	LeaseOfferExpired   LeaseOfferStatus = "Expired"
	LeaseOfferWithdrawn LeaseOfferStatus = "Withdrawn"
)

// AllLeaseOfferStatuses lists every member of the enum
var AllLeaseOfferStatuses = []LeaseOfferStatus{
	LeaseOfferPending, LeaseOfferAccepted, LeaseOfferDeclined, LeaseOfferExpired, LeaseOfferWithdrawn,
}

// LeaseOfferTable is the lease offer transition table
var LeaseOfferTable = buildLeaseOfferTable()

func buildLeaseOfferTable() *Table[LeaseOfferStatus] {
	b := NewTableBuilder[LeaseOfferStatus]("lease offer")
	b.Configure(LeaseOfferPending).
		Permit(LeaseOfferAccepted, LeaseOfferDeclined, LeaseOfferExpired, LeaseOfferWithdrawn)
	for _, s := range []LeaseOfferStatus{LeaseOfferAccepted, LeaseOfferDeclined, LeaseOfferExpired, LeaseOfferWithdrawn} {
		b.Configure(s)
	}
	return b.Build()
}

// IsValid checks if the status is a member of the enum
func (s LeaseOfferStatus) IsValid() bool {
	switch s {
	case LeaseOfferPending, LeaseOfferAccepted, LeaseOfferDeclined, LeaseOfferExpired, LeaseOfferWithdrawn:
		return true
	}
	return false
}

// IsTerminal returns true once the offer has been answered or has lapsed
func (s LeaseOfferStatus) IsTerminal() bool {
	return LeaseOfferTable.IsTerminal(s)
}

func (s LeaseOfferStatus) String() string {
	return string(s)
}

// Value implements driver.Valuer
func (s LeaseOfferStatus) Value() (driver.Value, error) {
	return statusValue(s)
}

// Scan implements sql.Scanner
func (s *LeaseOfferStatus) Scan(src any) error {
	return scanStatus(s, src)
}
