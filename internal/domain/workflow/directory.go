package workflow

import "database/sql/driver"

// PropertyStatus is the availability of a rentable unit
type PropertyStatus string

const (
	PropertyAvailable          PropertyStatus = "Available"
	PropertyApplicationPending PropertyStatus = "ApplicationPending"
	PropertyLeasePending       PropertyStatus = "LeasePending"
	PropertyOccupied           PropertyStatus = "Occupied"
	PropertyOffMarket          PropertyStatus = "OffMarket"
)

func (s PropertyStatus) IsValid() bool {
	switch s {
	case PropertyAvailable, PropertyApplicationPending, PropertyLeasePending, PropertyOccupied, PropertyOffMarket:
		return true
	}
	return false
}

func (s PropertyStatus) String() string { return string(s) }

func (s PropertyStatus) Value() (driver.Value, error) { return statusValue(s) }

func (s *PropertyStatus) Scan(src any) error { return scanStatus(s, src) }

// ProspectStatus tracks a prospective tenant through the leasing funnel
type ProspectStatus string

const (
	ProspectLead              ProspectStatus = "Lead"
	ProspectTourScheduled     ProspectStatus = "TourScheduled"
	ProspectApplied           ProspectStatus = "Applied"
	ProspectScreening         ProspectStatus = "Screening"
	ProspectApproved          ProspectStatus = "Approved"
	ProspectDenied            ProspectStatus = "Denied"
	ProspectLeaseOffered      ProspectStatus = "LeaseOffered"
	ProspectLeaseDeclined     ProspectStatus = "LeaseDeclined"
	ProspectConvertedToTenant ProspectStatus = "ConvertedToTenant"
	ProspectWithdrawn         ProspectStatus = "Withdrawn"
)

func (s ProspectStatus) IsValid() bool {
	switch s {
	case ProspectLead, ProspectTourScheduled, ProspectApplied, ProspectScreening, ProspectApproved,
		ProspectDenied, ProspectLeaseOffered, ProspectLeaseDeclined, ProspectConvertedToTenant, ProspectWithdrawn:
		return true
	}
	return false
}

func (s ProspectStatus) String() string { return string(s) }

func (s ProspectStatus) Value() (driver.Value, error) { return statusValue(s) }

func (s *ProspectStatus) Scan(src any) error { return scanStatus(s, src) }

// LeaseStatus is the lifecycle of a signed lease
type LeaseStatus string

const (
	LeasePending    LeaseStatus = "Pending"
	LeaseActive     LeaseStatus = "Active"
	LeaseExpired    LeaseStatus = "Expired"
	LeaseTerminated LeaseStatus = "Terminated"
)

func (s LeaseStatus) IsValid() bool {
	switch s {
	case LeasePending, LeaseActive, LeaseExpired, LeaseTerminated:
		return true
	}
	return false
}

func (s LeaseStatus) String() string { return string(s) }

func (s LeaseStatus) Value() (driver.Value, error) { return statusValue(s) }

func (s *LeaseStatus) Scan(src any) error { return scanStatus(s, src) }

// ScreeningResult is the overall outcome of background and credit checks
type ScreeningResult string

const (
	ScreeningPending         ScreeningResult = "Pending"
	ScreeningPassed          ScreeningResult = "Passed"
	ScreeningFailed          ScreeningResult = "Failed"
	ScreeningConditionalPass ScreeningResult = "ConditionalPass"
)

func (r ScreeningResult) IsValid() bool {
	switch r {
	case ScreeningPending, ScreeningPassed, ScreeningFailed, ScreeningConditionalPass:
		return true
	}
	return false
}

// AllowsApproval reports whether an application with this result may be approved
func (r ScreeningResult) AllowsApproval() bool {
	return r == ScreeningPassed || r == ScreeningConditionalPass
}

func (r ScreeningResult) String() string { return string(r) }

func (r ScreeningResult) Value() (driver.Value, error) { return statusValue(r) }

func (r *ScreeningResult) Scan(src any) error { return scanStatus(r, src) }
