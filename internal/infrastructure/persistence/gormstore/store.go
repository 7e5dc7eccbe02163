package gormstore

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xskcdf/Aquiis-sub005/internal/application/port"
)

// Store wraps a GORM connection and implements port.TransactionManager
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore creates a new store
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
	}
}

// DB exposes the underlying connection
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Begin opens a transaction and binds every repository to it
func (s *Store) Begin(ctx context.Context) (port.UnitOfWork, error) {
	if port.UnitOfWorkFromContext(ctx) != nil {
		return nil, port.ErrNestedTransaction
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("Failed to begin transaction", zap.Error(tx.Error))
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	return &UnitOfWork{
		repositories: repositories{db: tx},
		tx:           tx,
		logger:       s.logger,
	}, nil
}

// Reader returns repositories bound to the pool
func (s *Store) Reader() port.Repositories {
	return repositories{db: s.db}
}

// UnitOfWork is a single database transaction
type UnitOfWork struct {
	repositories
	tx     *gorm.DB
	logger *zap.Logger
	done   bool
}

// Commit commits the transaction
func (u *UnitOfWork) Commit() error {
	if u.done {
		return port.ErrTransactionDone
	}
	u.done = true

	if err := u.tx.Commit().Error; err != nil {
		u.logger.Error("Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback discards every change staged on the transaction
func (u *UnitOfWork) Rollback() error {
	if u.done {
		return port.ErrTransactionDone
	}
	u.done = true

	if err := u.tx.Rollback().Error; err != nil && !errors.Is(err, gorm.ErrInvalidTransaction) {
		u.logger.Error("Failed to rollback transaction", zap.Error(err))
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

type repositories struct {
	db *gorm.DB
}

func (r repositories) Settings() port.SettingsRepository { return &SettingsRepository{db: r.db} }
func (r repositories) Properties() port.PropertyRepository { return &PropertyRepository{db: r.db} }
func (r repositories) Prospects() port.ProspectRepository { return &ProspectRepository{db: r.db} }
func (r repositories) Tenants() port.TenantRepository { return &TenantRepository{db: r.db} }
func (r repositories) Tours() port.TourRepository { return &TourRepository{db: r.db} }
func (r repositories) Applications() port.ApplicationRepository { return &ApplicationRepository{db: r.db} }
func (r repositories) Screenings() port.ScreeningRepository { return &ScreeningRepository{db: r.db} }
func (r repositories) LeaseOffers() port.LeaseOfferRepository { return &LeaseOfferRepository{db: r.db} }
func (r repositories) Leases() port.LeaseRepository { return &LeaseRepository{db: r.db} }
func (r repositories) Deposits() port.DepositRepository { return &DepositRepository{db: r.db} }
func (r repositories) Pools() port.PoolRepository { return &PoolRepository{db: r.db} }
func (r repositories) Dividends() port.DividendRepository { return &DividendRepository{db: r.db} }
func (r repositories) AuditLogs() port.AuditLogRepository { return &AuditLogRepository{db: r.db} }

// Verify interface compliance
var (
	_ port.TransactionManager = (*Store)(nil)
	_ port.UnitOfWork         = (*UnitOfWork)(nil)
)
