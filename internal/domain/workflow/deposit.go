package workflow

import "database/sql/driver"

// PoolStatus is the yearly investment pool lifecycle. It is linear.
type PoolStatus string

const (
	PoolOpen        PoolStatus = "Open"
	PoolCalculated  PoolStatus = "Calculated"
	PoolDistributed PoolStatus = "Distributed"
	PoolClosed      PoolStatus = "Closed"
)

// AllPoolStatuses lists every member of the enum
var AllPoolStatuses = []PoolStatus{PoolOpen, PoolCalculated, PoolDistributed, PoolClosed}

// PoolTable is the investment pool transition table
var PoolTable = buildPoolTable()

func buildPoolTable() *Table[PoolStatus] {
	b := NewTableBuilder[PoolStatus]("investment pool")
	b.Configure(PoolOpen).Permit(PoolCalculated)
	b.Configure(PoolCalculated).Permit(PoolDistributed)
	b.Configure(PoolDistributed).Permit(PoolClosed)
	b.Configure(PoolClosed)
	return b.Build()
}

// IsValid checks if the status is a member of the enum
func (s PoolStatus) IsValid() bool {
	switch s {
	case PoolOpen, PoolCalculated, PoolDistributed, PoolClosed:
		return true
	}
	return false
}

func (s PoolStatus) String() string { return string(s) }

func (s PoolStatus) Value() (driver.Value, error) { return statusValue(s) }

func (s *PoolStatus) Scan(src any) error { return scanStatus(s, src) }

// DividendStatus is the lifecycle of a single tenant dividend
type DividendStatus string

const (
	DividendPending    DividendStatus = "Pending"
	DividendChoiceMade DividendStatus = "ChoiceMade"
	DividendApplied    DividendStatus = "Applied"
	DividendPaid       DividendStatus = "Paid"
)

// AllDividendStatuses lists every member of the enum
var AllDividendStatuses = []DividendStatus{DividendPending, DividendChoiceMade, DividendApplied, DividendPaid}

// DividendTable is the dividend transition table
var DividendTable = buildDividendTable()

func buildDividendTable() *Table[DividendStatus] {
	b := NewTableBuilder[DividendStatus]("dividend")
	b.Configure(DividendPending).Permit(DividendChoiceMade)
	b.Configure(DividendChoiceMade).Permit(DividendApplied, DividendPaid)
	b.Configure(DividendApplied)
	b.Configure(DividendPaid)
	return b.Build()
}

// IsValid checks if the status is a member of the enum
func (s DividendStatus) IsValid() bool {
	switch s {
	case DividendPending, DividendChoiceMade, DividendApplied, DividendPaid:
		return true
	}
	return false
}

func (s DividendStatus) String() string { return string(s) }

func (s DividendStatus) Value() (driver.Value, error) { return statusValue(s) }

func (s *DividendStatus) Scan(src any) error { return scanStatus(s, src) }

// PaymentMethod is how a tenant receives a dividend
type PaymentMethod string

const (
	PaymentMethodPending     PaymentMethod = "Pending"
	PaymentMethodLeaseCredit PaymentMethod = "LeaseCredit"
	PaymentMethodCheck       PaymentMethod = "Check"
)

// IsValid checks if the method is a member of the enum
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodPending, PaymentMethodLeaseCredit, PaymentMethodCheck:
		return true
	}
	return false
}

// IsChoice reports whether the method is a concrete payout choice
func (m PaymentMethod) IsChoice() bool {
	return m == PaymentMethodLeaseCredit || m == PaymentMethodCheck
}

func (m PaymentMethod) String() string { return string(m) }

func (m PaymentMethod) Value() (driver.Value, error) { return statusValue(m) }

func (m *PaymentMethod) Scan(src any) error { return scanStatus(m, src) }

// DepositStatus tracks whether a security deposit is still held
type DepositStatus string

const (
	DepositHeld     DepositStatus = "Held"
	DepositRefunded DepositStatus = "Refunded"
)

func (s DepositStatus) IsValid() bool {
	return s == DepositHeld || s == DepositRefunded
}

func (s DepositStatus) String() string { return string(s) }

func (s DepositStatus) Value() (driver.Value, error) { return statusValue(s) }

func (s *DepositStatus) Scan(src any) error { return scanStatus(s, src) }
