package port

import "errors"

var (
	// ErrConcurrentModification is returned by Save when the row version changed since it was read
	ErrConcurrentModification = errors.New("entity was modified by another request")
	// ErrNestedTransaction is returned by Begin when the context already carries a unit of work
	ErrNestedTransaction = errors.New("nested transactions are not supported")
	// ErrTransactionDone is returned when a unit of work is used after Commit or Rollback
	ErrTransactionDone = errors.New("transaction has already been committed or rolled back")
)
