package workflow

import "database/sql/driver"

// TourStatus is the lifecycle status of a property showing
type TourStatus string

const (
	TourScheduled TourStatus = "Scheduled"
	TourCompleted TourStatus = "Completed"
	TourCancelled TourStatus = "Cancelled"
	TourNoShow    TourStatus = "NoShow"
)

// AllTourStatuses lists every member of the enum
var AllTourStatuses = []TourStatus{TourScheduled, TourCompleted, TourCancelled, TourNoShow}

// TourTable is the tour transition table
var TourTable = buildTourTable()

func buildTourTable() *Table[TourStatus] {
	b := NewTableBuilder[TourStatus]("tour")
	b.Configure(TourScheduled).Permit(TourCompleted, TourCancelled, TourNoShow)
	b.Configure(TourCompleted)
	b.Configure(TourCancelled)
	b.Configure(TourNoShow)
	return b.Build()
}

// IsValid checks if the status is a member of the enum
func (s TourStatus) IsValid() bool {
	switch s {
	case TourScheduled, TourCompleted, TourCancelled, TourNoShow:
		return true
	}
	return false
}

func (s TourStatus) String() string {
	return string(s)
}

// Value implements driver.Valuer
func (s TourStatus) Value() (driver.Value, error) {
	return statusValue(s)
}

// Scan implements sql.Scanner
func (s *TourStatus) Scan(src any) error {
	return scanStatus(s, src)
}
