// Package export renders workflow data as spreadsheet workbooks.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/xskcdf/Aquiis-sub005/internal/domain/entity"
)

// Workbook layout
const (
	SummarySheet   = "Summary"
	DividendsSheet = "Dividends"

	dateLayout = "2006-01-02"
)

var dividendHeader = []any{
	"Dividend ID", "Security Deposit ID", "Lease ID", "Tenant ID", "Months In Pool",
	"Proration Factor", "Base Amount", "Dividend Amount", "Payment Method", "Status", "Processed On",
}

// DividendReportWriter writes a pool's yearly dividend report as an xlsx workbook
type DividendReportWriter struct {
	logger *zap.Logger
}

// NewDividendReportWriter creates a new DividendReportWriter
func NewDividendReportWriter(logger *zap.Logger) *DividendReportWriter {
	return &DividendReportWriter{logger: logger}
}

// WriteDividendReport writes a Summary sheet for the pool and one Dividends row per dividend
func (r *DividendReportWriter) WriteDividendReport(w io.Writer, pool *entity.SecurityDepositInvestmentPool, dividends []*entity.SecurityDepositDividend) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to rename summary sheet: %w", err)
	}
	if _, err := file.NewSheet(DividendsSheet); err != nil {
		return fmt.Errorf("failed to create dividends sheet: %w", err)
	}

	if err := r.fillSummary(file, pool, len(dividends)); err != nil {
		return fmt.Errorf("failed to fill summary: %w", err)
	}
	if err := r.fillDividends(file, dividends); err != nil {
		return fmt.Errorf("failed to fill dividends: %w", err)
	}

	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	r.logger.Info("Dividend report written",
		zap.String("pool_id", pool.ID),
		zap.Int("year", pool.Year),
		zap.Int("dividend_count", len(dividends)))
	return nil
}

func (r *DividendReportWriter) fillSummary(file *excelize.File, pool *entity.SecurityDepositInvestmentPool, count int) error {
	rows := [][]any{
		{"Year", pool.Year},
		{"Status", string(pool.Status)},
		{"Starting Balance", money(pool.StartingBalance)},
		{"Ending Balance", money(pool.EndingBalance)},
		{"Total Earnings", money(pool.TotalEarnings)},
		{"Return Rate", pool.ReturnRate.InexactFloat64()},
		{"Organization Share %", pool.OrganizationSharePercentage.InexactFloat64()},
		{"Organization Share", money(pool.OrganizationShare)},
		{"Tenant Share Total", money(pool.TenantShareTotal)},
		{"Active Leases", pool.ActiveLeaseCount},
		{"Dividend Per Lease", money(pool.DividendPerLease)},
		{"Dividends", count},
		{"Calculated On", date(pool.CalculatedOn)},
		{"Distributed On", date(pool.DistributedOn)},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to set summary row %d: %w", i+1, err)
		}
	}
	return file.SetColWidth(SummarySheet, "A", "A", 24)
}

func (r *DividendReportWriter) fillDividends(file *excelize.File, dividends []*entity.SecurityDepositDividend) error {
	if err := file.SetSheetRow(DividendsSheet, "A1", &dividendHeader); err != nil {
		return fmt.Errorf("failed to set header: %w", err)
	}

	for i, d := range dividends {
		row := []any{
			d.ID,
			d.SecurityDepositID,
			d.LeaseID,
			d.TenantID,
			d.MonthsInPool,
			d.ProrationFactor.InexactFloat64(),
			money(d.BaseDividendAmount),
			money(d.DividendAmount),
			string(d.PaymentMethod),
			string(d.Status),
			date(d.PaymentProcessedOn),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(DividendsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to set dividend row %d: %w", i+2, err)
		}
	}
	return file.SetColWidth(DividendsSheet, "A", "D", 38)
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func date(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
