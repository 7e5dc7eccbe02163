// Package dividend computes the yearly distribution of security deposit pool earnings.
package dividend

import (
	"time"

	"github.com/shopspring/decimal"
)

var twelve = decimal.NewFromInt(12)

// PoolSplit is the result of dividing a year's earnings between the organization and its tenants
type PoolSplit struct {
	OrganizationShare decimal.Decimal
	TenantShareTotal  decimal.Decimal
	DividendPerLease  decimal.Decimal
	ReturnRate        decimal.Decimal
}

// SplitEarnings divides earnings by the organization share percentage.
// Losses are absorbed by the organization: earnings <= 0 yield zero for both parties.
func SplitEarnings(earnings, sharePct decimal.Decimal) (orgShare, tenantPool decimal.Decimal) {
	if !earnings.IsPositive() {
		return decimal.Zero, decimal.Zero
	}

	sharePct = clamp(sharePct, decimal.Zero, decimal.NewFromInt(1))
	orgShare = earnings.Mul(sharePct).Round(2)
	tenantPool = earnings.Sub(orgShare)
	if tenantPool.IsNegative() {
		tenantPool = decimal.Zero
	}
	return orgShare, tenantPool
}

// PerLease divides the tenant pool evenly across active leases
func PerLease(tenantPool decimal.Decimal, activeLeases int) decimal.Decimal {
	if activeLeases <= 0 || !tenantPool.IsPositive() {
		return decimal.Zero
	}
	return tenantPool.Div(decimal.NewFromInt(int64(activeLeases))).Round(2)
}

// ReturnRate is earnings relative to the starting balance, zero when there was no balance
func ReturnRate(earnings, startingBalance decimal.Decimal) decimal.Decimal {
	if !startingBalance.IsPositive() {
		return decimal.Zero
	}
	return earnings.Div(startingBalance).Round(6)
}

// Split computes every pool-level figure in one call
func Split(earnings, startingBalance, sharePct decimal.Decimal, activeLeases int) PoolSplit {
	org, tenants := SplitEarnings(earnings, sharePct)
	return PoolSplit{
		OrganizationShare: org,
		TenantShareTotal:  tenants,
		DividendPerLease:  PerLease(tenants, activeLeases),
		ReturnRate:        ReturnRate(earnings, startingBalance),
	}
}

// MonthsInPool counts the calendar months of year during which a deposit sat in the pool.
// Partial months count as whole months. A nil entry means the deposit never entered the pool.
func MonthsInPool(entry, exit *time.Time, year int) int {
	if entry == nil {
		return 0
	}

	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	start := entry.UTC()
	if start.Before(yearStart) {
		start = yearStart
	}
	end := yearEnd
	if exit != nil && exit.UTC().Before(yearEnd) {
		end = exit.UTC()
	}
	if end.Before(start) {
		return 0
	}

	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month()) + 1
	if months < 0 {
		return 0
	}
	if months > 12 {
		return 12
	}
	return months
}

// ActiveDuring reports whether a deposit was in the pool for at least part of year
func ActiveDuring(entry, exit *time.Time, year int) bool {
	return MonthsInPool(entry, exit, year) > 0
}

// ProrationFactor is months/12 bounded to [0,1]
func ProrationFactor(months int) decimal.Decimal {
	f := decimal.NewFromInt(int64(months)).Div(twelve)
	return clamp(f, decimal.Zero, decimal.NewFromInt(1)).Round(4)
}

// Prorate scales a base dividend by the months the deposit was pooled, rounded to cents
func Prorate(base decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 {
		return decimal.Zero
	}
	if months >= 12 {
		return base.Round(2)
	}
	return base.Mul(decimal.NewFromInt(int64(months))).Div(twelve).Round(2)
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
