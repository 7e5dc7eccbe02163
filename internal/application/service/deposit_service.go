package service

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/xskcdf/Aquiis-sub005/internal/application/executor"
	"github.com/xskcdf/Aquiis-sub005/internal/application/port"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/dividend"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/entity"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/workflow"
)

// PoolEarnings is the year-end investment statement for an organization's pool
type PoolEarnings struct {
	TotalEarnings   decimal.Decimal `json:"total_earnings"`
	StartingBalance decimal.Decimal `json:"starting_balance"`
	EndingBalance   decimal.Decimal `json:"ending_balance"`
}

// PoolDetails is a pool together with its dividends
type PoolDetails struct {
	Pool      *entity.SecurityDepositInvestmentPool `json:"pool"`
	Dividends []*entity.SecurityDepositDividend     `json:"dividends"`
}

// DividendReportWriter renders a pool and its dividends to w
type DividendReportWriter interface {
	WriteDividendReport(w io.Writer, pool *entity.SecurityDepositInvestmentPool, dividends []*entity.SecurityDepositDividend) error
}

// DepositService runs the yearly security deposit dividend cycle
type DepositService interface {
	CalculateDividends(ctx context.Context, year int, earnings PoolEarnings) workflow.TypedResult[*PoolDetails]
	RecordDividendChoice(ctx context.Context, dividendID string, method workflow.PaymentMethod) workflow.Result
	DistributeDividends(ctx context.Context, year int) workflow.TypedResult[*PoolDetails]
	ClosePool(ctx context.Context, year int) workflow.Result
	GetPool(ctx context.Context, year int) workflow.TypedResult[*entity.SecurityDepositInvestmentPool]
	ListDividends(ctx context.Context, year int) workflow.TypedResult[[]*entity.SecurityDepositDividend]
	ExportDividendReport(ctx context.Context, year int, w io.Writer) workflow.Result
}

type depositServiceImpl struct {
	Deps
	reports DividendReportWriter
}

// NewDepositService creates a new DepositService
func NewDepositService(deps Deps, reports DividendReportWriter) DepositService {
	return &depositServiceImpl{Deps: deps, reports: reports}
}

// CalculateDividends splits the year's earnings and creates one dividend per pooled deposit
func (s *depositServiceImpl) CalculateDividends(ctx context.Context, year int, earnings PoolEarnings) workflow.TypedResult[*PoolDetails] {
	a, fail := s.actor(ctx)
	if fail != nil {
		return workflow.Lift[*PoolDetails](*fail)
	}

	var errs []string
	if year < 1900 || year > 9999 {
		errs = append(errs, fmt.Sprintf("Year %d is out of range", year))
	}
	if earnings.StartingBalance.IsNegative() || earnings.EndingBalance.IsNegative() {
		errs = append(errs, "Pool balances cannot be negative")
	}
	if len(errs) > 0 {
		return workflow.FailWith[*PoolDetails]("Invalid pool statement", errs...)
	}

	return executor.ExecuteTyped(ctx, s.Executor, "dividends.calculate", func(ctx context.Context, uow port.UnitOfWork) (workflow.TypedResult[*PoolDetails], error) {
		now := s.now()

		cfg, err := settings(ctx, uow, a.OrganizationID)
		if err != nil {
			return workflow.TypedResult[*PoolDetails]{}, err
		}

		pool, err := uow.Pools().GetByYear(ctx, a.OrganizationID, year)
		if err != nil {
			return workflow.TypedResult[*PoolDetails]{}, err
		}
		if pool == nil {
			pool = &entity.SecurityDepositInvestmentPool{Year: year, Status: workflow.PoolOpen}
			pool.Stamp(a.OrganizationID, a.UserID, now)
			if err := uow.Pools().Create(ctx, pool); err != nil {
				return workflow.TypedResult[*PoolDetails]{}, err
			}
			if err := s.Audit.LogTransition(ctx, uow, executor.Transition{
				EntityType: entity.TypeInvestmentPool,
				EntityID:   pool.ID,
				To:         string(pool.Status),
				Action:     "Open",
			}); err != nil {
				return workflow.TypedResult[*PoolDetails]{}, err
			}
		}
		if !workflow.PoolTable.IsValidTransition(pool.Status, workflow.PoolCalculated) {
			return workflow.FailWith[*PoolDetails](
				workflow.PoolTable.InvalidTransitionReason(pool.Status, workflow.PoolCalculated)), nil
		}

		deposits, err := uow.Deposits().ListPooledDuring(ctx, a.OrganizationID, year)
		if err != nil {
			return workflow.TypedResult[*PoolDetails]{}, err
		}
		type pooled struct {
			deposit *entity.SecurityDeposit
			months  int
		}
		var active []pooled
		for _, d := range deposits {
			if months := dividend.MonthsInPool(d.PoolEntryDate, d.PoolExitDate, year); months > 0 {
				active = append(active, pooled{deposit: d, months: months})
			}
		}

		split := dividend.Split(earnings.TotalEarnings, earnings.StartingBalance, cfg.OrganizationSharePercentage, len(active))

		pool.StartingBalance = earnings.StartingBalance
		pool.EndingBalance = earnings.EndingBalance
		pool.TotalEarnings = earnings.TotalEarnings
		pool.ReturnRate = split.ReturnRate
		pool.OrganizationSharePercentage = cfg.OrganizationSharePercentage
		pool.OrganizationShare = split.OrganizationShare
		pool.TenantShareTotal = split.TenantShareTotal
		pool.ActiveLeaseCount = len(active)
		pool.DividendPerLease = split.DividendPerLease
		pool.CalculatedOn = timePtr(now)
		pool.Status = workflow.PoolCalculated
		pool.Touch(a.UserID, now)
		if err := uow.Pools().Save(ctx, pool); err != nil {
			return workflow.TypedResult[*PoolDetails]{}, err
		}
		if err := s.Audit.LogTransition(ctx, uow, executor.Transition{
			EntityType: entity.TypeInvestmentPool,
			EntityID:   pool.ID,
			From:       string(workflow.PoolOpen),
			To:         string(pool.Status),
			Action:     "CalculateDividends",
			Metadata: map[string]string{
				"total_earnings":     pool.TotalEarnings.StringFixed(2),
				"active_lease_count": strconv.Itoa(pool.ActiveLeaseCount),
				"dividend_per_lease": pool.DividendPerLease.StringFixed(2),
			},
		}); err != nil {
			return workflow.TypedResult[*PoolDetails]{}, err
		}

		dividends := make([]*entity.SecurityDepositDividend, 0, len(active))
		for _, p := range active {
			d := &entity.SecurityDepositDividend{
				SecurityDepositID:  p.deposit.ID,
				InvestmentPoolID:   pool.ID,
				LeaseID:            p.deposit.LeaseID,
				TenantID:           p.deposit.TenantID,
				Year:               year,
				BaseDividendAmount: split.DividendPerLease,
				ProrationFactor:    dividend.ProrationFactor(p.months),
				MonthsInPool:       p.months,
				DividendAmount:     dividend.Prorate(split.DividendPerLease, p.months),
				PaymentMethod:      workflow.PaymentMethodPending,
				Status:             workflow.DividendPending,
			}
			d.Stamp(a.OrganizationID, a.UserID, now)
			if err := uow.Dividends().Create(ctx, d); err != nil {
				return workflow.TypedResult[*PoolDetails]{}, err
			}
			if err := s.Audit.LogTransition(ctx, uow, executor.Transition{
				EntityType: entity.TypeDividend,
				EntityID:   d.ID,
				To:         string(d.Status),
				Action:     "CalculateDividends",
				Metadata:   map[string]string{"months_in_pool": strconv.Itoa(d.MonthsInPool)},
			}); err != nil {
				return workflow.TypedResult[*PoolDetails]{}, err
			}
			dividends = append(dividends, d)
		}

		s.Logger.Info("Dividends calculated", "year", year, "pool_id", pool.ID, "dividends", len(dividends))
		return workflow.OkWith(&PoolDetails{Pool: pool, Dividends: dividends},
			fmt.Sprintf("Calculated %d dividends for %d", len(dividends), year)), nil
	})
}

// RecordDividendChoice stores the tenant's payout choice
func (s *depositServiceImpl) RecordDividendChoice(ctx context.Context, dividendID string, method workflow.PaymentMethod) workflow.Result {
	a, fail := s.actor(ctx)
	if fail != nil {
		return *fail
	}
	if !method.IsChoice() {
		return workflow.Fail(fmt.Sprintf("Payment method must be %s or %s", workflow.PaymentMethodLeaseCredit, workflow.PaymentMethodCheck))
	}

	return s.Executor.Execute(ctx, "dividends.record_choice", func(ctx context.Context, uow port.UnitOfWork) (workflow.Result, error) {
		d, err := uow.Dividends().GetByID(ctx, a.OrganizationID, dividendID)
		if err != nil {
			return workflow.Result{}, err
		}
		if d == nil {
			return workflow.Fail("Dividend not found"), nil
		}

		pool, err := uow.Pools().GetByYear(ctx, a.OrganizationID, d.Year)
		if err != nil {
			return workflow.Result{}, err
		}
		if pool == nil || pool.Status != workflow.PoolCalculated {
			return workflow.Fail("Dividend choices can only be recorded while the pool is calculated"), nil
		}

		if !workflow.DividendTable.IsValidTransition(d.Status, workflow.DividendChoiceMade) {
			return workflow.Fail(workflow.DividendTable.InvalidTransitionReason(d.Status, workflow.DividendChoiceMade)), nil
		}

		if err := s.choose(ctx, uow, a, d, method, "RecordChoice"); err != nil {
			return workflow.Result{}, err
		}
		return workflow.Ok("Dividend payment choice recorded"), nil
	})
}

// DistributeDividends pays out every dividend of a calculated pool
func (s *depositServiceImpl) DistributeDividends(ctx context.Context, year int) workflow.TypedResult[*PoolDetails] {
	a, fail := s.actor(ctx)
	if fail != nil {
		return workflow.Lift[*PoolDetails](*fail)
	}

	return executor.ExecuteTyped(ctx, s.Executor, "dividends.distribute", func(ctx context.Context, uow port.UnitOfWork) (workflow.TypedResult[*PoolDetails], error) {
		now := s.now()

		pool, res, err := s.loadPool(ctx, uow, a, year, workflow.PoolDistributed)
		if err != nil || res != nil {
			return workflow.Lift[*PoolDetails](deref(res)), err
		}

		cfg, err := settings(ctx, uow, a.OrganizationID)
		if err != nil {
			return workflow.TypedResult[*PoolDetails]{}, err
		}

		dividends, err := uow.Dividends().ListByYear(ctx, a.OrganizationID, year)
		if err != nil {
			return workflow.TypedResult[*PoolDetails]{}, err
		}

		for _, d := range dividends {
			if d.Status == workflow.DividendPending {
				if err := s.choose(ctx, uow, a, d, cfg.DefaultDividendPaymentMethod, "DefaultChoice"); err != nil {
					return workflow.TypedResult[*PoolDetails]{}, err
				}
			}
			if d.Status != workflow.DividendChoiceMade {
				continue
			}

			target := workflow.DividendApplied
			if d.PaymentMethod == workflow.PaymentMethodCheck {
				target = workflow.DividendPaid
			}
			from := d.Status
			d.Status = target
			d.PaymentProcessedOn = timePtr(now)
			d.Touch(a.UserID, now)
			if err := uow.Dividends().Save(ctx, d); err != nil {
				return workflow.TypedResult[*PoolDetails]{}, err
			}
			if err := s.Audit.LogTransition(ctx, uow, executor.Transition{
				EntityType: entity.TypeDividend,
				EntityID:   d.ID,
				From:       string(from),
				To:         string(target),
				Action:     "Distribute",
				Metadata:   map[string]string{"amount": d.DividendAmount.StringFixed(2)},
			}); err != nil {
				return workflow.TypedResult[*PoolDetails]{}, err
			}
		}

		if err := s.savePool(ctx, uow, a, pool, workflow.PoolDistributed, "Distribute", func() {
			pool.DistributedOn = timePtr(now)
		}); err != nil {
			return workflow.TypedResult[*PoolDetails]{}, err
		}

		s.Logger.Info("Dividends distributed", "year", year, "pool_id", pool.ID, "dividends", len(dividends))
		return workflow.OkWith(&PoolDetails{Pool: pool, Dividends: dividends},
			fmt.Sprintf("Distributed %d dividends for %d", len(dividends), year)), nil
	})
}

// ClosePool closes a distributed pool
func (s *depositServiceImpl) ClosePool(ctx context.Context, year int) workflow.Result {
	a, fail := s.actor(ctx)
	if fail != nil {
		return *fail
	}

	return s.Executor.Execute(ctx, "dividends.close_pool", func(ctx context.Context, uow port.UnitOfWork) (workflow.Result, error) {
		pool, res, err := s.loadPool(ctx, uow, a, year, workflow.PoolClosed)
		if err != nil || res != nil {
			return deref(res), err
		}
		if err := s.savePool(ctx, uow, a, pool, workflow.PoolClosed, "Close", nil); err != nil {
			return workflow.Result{}, err
		}
		return workflow.Ok(fmt.Sprintf("Investment pool for %d closed", year)), nil
	})
}

// GetPool returns the organization's pool for a year
func (s *depositServiceImpl) GetPool(ctx context.Context, year int) workflow.TypedResult[*entity.SecurityDepositInvestmentPool] {
	a, fail := s.actor(ctx)
	if fail != nil {
		return workflow.Lift[*entity.SecurityDepositInvestmentPool](*fail)
	}

	pool, err := s.TxManager.Reader().Pools().GetByYear(ctx, a.OrganizationID, year)
	if err != nil {
		s.Logger.Error("Failed to load investment pool", "year", year, "error", err)
		return workflow.Lift[*entity.SecurityDepositInvestmentPool](workflow.Internal(fmt.Sprintf("An error occurred: %s", err.Error())))
	}
	if pool == nil {
		return workflow.FailWith[*entity.SecurityDepositInvestmentPool](fmt.Sprintf("No investment pool exists for %d", year))
	}
	return workflow.OkWith(pool, "")
}

// ListDividends returns the dividends calculated for a year
func (s *depositServiceImpl) ListDividends(ctx context.Context, year int) workflow.TypedResult[[]*entity.SecurityDepositDividend] {
	a, fail := s.actor(ctx)
	if fail != nil {
		return workflow.Lift[[]*entity.SecurityDepositDividend](*fail)
	}

	dividends, err := s.TxManager.Reader().Dividends().ListByYear(ctx, a.OrganizationID, year)
	if err != nil {
		s.Logger.Error("Failed to list dividends", "year", year, "error", err)
		return workflow.Lift[[]*entity.SecurityDepositDividend](workflow.Internal(fmt.Sprintf("An error occurred: %s", err.Error())))
	}
	return workflow.OkWith(dividends, "")
}

// ExportDividendReport writes the year's pool and dividends as a workbook
func (s *depositServiceImpl) ExportDividendReport(ctx context.Context, year int, w io.Writer) workflow.Result {
	a, fail := s.actor(ctx)
	if fail != nil {
		return *fail
	}

	repos := s.TxManager.Reader()
	pool, err := repos.Pools().GetByYear(ctx, a.OrganizationID, year)
	if err != nil {
		s.Logger.Error("Failed to load investment pool", "year", year, "error", err)
		return workflow.Internal(fmt.Sprintf("An error occurred: %s", err.Error()))
	}
	if pool == nil {
		return workflow.Fail(fmt.Sprintf("No investment pool exists for %d", year))
	}
	if pool.Status == workflow.PoolOpen {
		return workflow.Fail("Dividends have not been calculated for this pool")
	}

	dividends, err := repos.Dividends().ListByYear(ctx, a.OrganizationID, year)
	if err != nil {
		s.Logger.Error("Failed to list dividends", "year", year, "error", err)
		return workflow.Internal(fmt.Sprintf("An error occurred: %s", err.Error()))
	}

	if err := s.reports.WriteDividendReport(w, pool, dividends); err != nil {
		s.Logger.Error("Failed to write dividend report", "year", year, "error", err)
		return workflow.Internal(fmt.Sprintf("An error occurred: %s", err.Error()))
	}
	return workflow.Ok(fmt.Sprintf("Dividend report for %d exported", year))
}

func (s *depositServiceImpl) choose(ctx context.Context, uow port.UnitOfWork, a actor, d *entity.SecurityDepositDividend, method workflow.PaymentMethod, action string) error {
	now := s.now()
	from := d.Status
	d.PaymentMethod = method
	d.Status = workflow.DividendChoiceMade
	d.ChoiceMadeOn = timePtr(now)
	d.Touch(a.UserID, now)
	if err := uow.Dividends().Save(ctx, d); err != nil {
		return err
	}
	return s.Audit.LogTransition(ctx, uow, executor.Transition{
		EntityType: entity.TypeDividend,
		EntityID:   d.ID,
		From:       string(from),
		To:         string(d.Status),
		Action:     action,
		Metadata:   map[string]string{"payment_method": string(method)},
	})
}

func (s *depositServiceImpl) loadPool(ctx context.Context, uow port.UnitOfWork, a actor, year int, target workflow.PoolStatus) (*entity.SecurityDepositInvestmentPool, *workflow.Result, error) {
	pool, err := uow.Pools().GetByYear(ctx, a.OrganizationID, year)
	if err != nil {
		return nil, nil, err
	}
	if pool == nil {
		res := workflow.Fail(fmt.Sprintf("No investment pool exists for %d", year))
		return nil, &res, nil
	}
	if !workflow.PoolTable.IsValidTransition(pool.Status, target) {
		res := workflow.Fail(workflow.PoolTable.InvalidTransitionReason(pool.Status, target))
		return nil, &res, nil
	}
	return pool, nil, nil
}

func (s *depositServiceImpl) savePool(ctx context.Context, uow port.UnitOfWork, a actor, pool *entity.SecurityDepositInvestmentPool, to workflow.PoolStatus, action string, mutate func()) error {
	from := pool.Status
	pool.Status = to
	if mutate != nil {
		mutate()
	}
	pool.Touch(a.UserID, s.now())
	if err := uow.Pools().Save(ctx, pool); err != nil {
		return err
	}
	return s.Audit.LogTransition(ctx, uow, executor.Transition{
		EntityType: entity.TypeInvestmentPool,
		EntityID:   pool.ID,
		From:       string(from),
		To:         string(to),
		Action:     action,
	})
}
