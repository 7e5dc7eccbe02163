package workflow

import "database/sql/driver"

// ApplicationStatus is the lifecycle status of a rental application
type ApplicationStatus string

const (
	ApplicationSubmitted     ApplicationStatus = "Submitted"
	ApplicationUnderReview   ApplicationStatus = "UnderReview"
	ApplicationScreening     ApplicationStatus = "Screening"
	ApplicationApproved      ApplicationStatus = "Approved"
	ApplicationDenied        ApplicationStatus = "Denied"
	ApplicationLeaseOffered  ApplicationStatus = "LeaseOffered"
	ApplicationLeaseAccepted ApplicationStatus = "LeaseAccepted"
	ApplicationLeaseDeclined ApplicationStatus = "LeaseDeclined"
	ApplicationExpired       ApplicationStatus = "Expired"
	ApplicationWithdrawn     ApplicationStatus = "Withdrawn"
)

// AllApplicationStatuses lists every member of the enum
var AllApplicationStatuses = []ApplicationStatus{
	ApplicationSubmitted, ApplicationUnderReview, ApplicationScreening, ApplicationApproved,
	ApplicationDenied, ApplicationLeaseOffered, ApplicationLeaseAccepted, ApplicationLeaseDeclined,
	ApplicationExpired, ApplicationWithdrawn,
}

// ApplicationTable is the rental application transition table
var ApplicationTable = buildApplicationTable()

func buildApplicationTable() *Table[ApplicationStatus] {
	b := NewTableBuilder[ApplicationStatus]("application")

	b.Configure(ApplicationSubmitted).
		Permit(ApplicationUnderReview, ApplicationDenied, ApplicationWithdrawn, ApplicationExpired)

	b.Configure(ApplicationUnderReview).
		Permit(ApplicationScreening, ApplicationDenied, ApplicationWithdrawn, ApplicationExpired)

	b.Configure(ApplicationScreening).
		Permit(ApplicationApproved, ApplicationDenied, ApplicationWithdrawn)

	b.Configure(ApplicationApproved).
		Permit(ApplicationLeaseOffered, ApplicationDenied)

	b.Configure(ApplicationLeaseOffered).
		Permit(ApplicationLeaseAccepted, ApplicationLeaseDeclined, ApplicationExpired)

	// terminal
	b.Configure(ApplicationDenied)
	b.Configure(ApplicationLeaseAccepted)
	b.Configure(ApplicationLeaseDeclined)
	b.Configure(ApplicationExpired)
	b.Configure(ApplicationWithdrawn)

	return b.Build()
}

// IsValid checks if the status is a member of the enum
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationSubmitted, ApplicationUnderReview, ApplicationScreening, ApplicationApproved,
		ApplicationDenied, ApplicationLeaseOffered, ApplicationLeaseAccepted, ApplicationLeaseDeclined,
		ApplicationExpired, ApplicationWithdrawn:
		return true
	}
	return false
}

// IsTerminal returns true if the application can no longer change status
func (s ApplicationStatus) IsTerminal() bool {
	return ApplicationTable.IsTerminal(s)
}

func (s ApplicationStatus) String() string {
	return string(s)
}

// Value implements driver.Valuer
func (s ApplicationStatus) Value() (driver.Value, error) {
	return statusValue(s)
}

// Scan implements sql.Scanner
func (s *ApplicationStatus) Scan(src any) error {
	return scanStatus(s, src)
}
