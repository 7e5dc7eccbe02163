// Package executor runs workflow operations inside a single transaction and records their audit trail.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xskcdf/Aquiis-sub005/internal/application/port"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/workflow"
)

// ConflictMessage is returned when an entity changed between read and write
const ConflictMessage = "The record was changed by another user. Reload and try again."

// Operation is a unit of workflow logic run against an open transaction
type Operation func(ctx context.Context, uow port.UnitOfWork) (workflow.Result, error)

// TypedOperation is an Operation that also returns a payload
type TypedOperation[T any] func(ctx context.Context, uow port.UnitOfWork) (workflow.TypedResult[T], error)

// Executor is the transactional boundary of the workflow layer.
// Each call performs exactly one commit or one rollback and never retries.
type Executor struct {
	txManager port.TransactionManager
	logger    *zap.Logger
	metrics   *Metrics
}

// New creates an executor
func New(txManager port.TransactionManager, logger *zap.Logger, metrics *Metrics) *Executor {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Executor{
		txManager: txManager,
		logger:    logger,
		metrics:   metrics,
	}
}

// Execute runs op, committing only when it returns a successful result
func (e *Executor) Execute(ctx context.Context, name string, op Operation) workflow.Result {
	res := ExecuteTyped(ctx, e, name, func(ctx context.Context, uow port.UnitOfWork) (workflow.TypedResult[struct{}], error) {
		r, err := op(ctx, uow)
		return workflow.Lift[struct{}](r), err
	})
	return res.Result
}

// ExecuteTyped is Execute for operations carrying a payload
func ExecuteTyped[T any](ctx context.Context, e *Executor, name string, op TypedOperation[T]) (result workflow.TypedResult[T]) {
	start := time.Now()
	defer func() {
		e.metrics.Executions.WithLabelValues(name, string(result.Kind)).Inc()
		e.metrics.Duration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	uow, err := e.txManager.Begin(ctx)
	if err != nil {
		e.logger.Error("Failed to begin workflow transaction",
			zap.String("operation", name),
			zap.Error(err))
		return workflow.Lift[T](workflow.Internal(fmt.Sprintf("An error occurred: %s", err.Error())))
	}

	res, err := invoke(port.ContextWithUnitOfWork(ctx, uow), uow, op)
	if err != nil {
		e.rollback(name, uow)
		if errors.Is(err, port.ErrConcurrentModification) {
			e.logger.Info("Workflow operation conflicted",
				zap.String("operation", name),
				zap.Error(err))
			return workflow.Lift[T](workflow.Conflict(ConflictMessage))
		}

		e.logger.Error("Workflow operation failed",
			zap.String("operation", name),
			zap.Error(err))
		return workflow.Lift[T](workflow.Internal(fmt.Sprintf("An error occurred: %s", err.Error())))
	}

	if !res.Success {
		e.rollback(name, uow)
		e.logger.Info("Workflow operation rejected",
			zap.String("operation", name),
			zap.String("message", res.Message),
			zap.Strings("errors", res.Errors))
		return res
	}

	if err := uow.Commit(); err != nil {
		e.logger.Error("Failed to commit workflow transaction",
			zap.String("operation", name),
			zap.Error(err))
		return workflow.Lift[T](workflow.Internal(fmt.Sprintf("An error occurred: %s", err.Error())))
	}

	e.logger.Debug("Workflow operation committed",
		zap.String("operation", name),
		zap.Duration("elapsed", time.Since(start)))
	return res
}

// invoke turns a panic inside op into an error so the caller rolls back
func invoke[T any](ctx context.Context, uow port.UnitOfWork, op TypedOperation[T]) (res workflow.TypedResult[T], err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return op(ctx, uow)
}

func (e *Executor) rollback(name string, uow port.UnitOfWork) {
	if err := uow.Rollback(); err != nil {
		e.logger.Error("Failed to rollback workflow transaction",
			zap.String("operation", name),
			zap.Error(err))
	}
}
