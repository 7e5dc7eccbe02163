// Package gormstoretest opens migrated in-memory stores for tests.
package gormstoretest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xskcdf/Aquiis-sub005/internal/infrastructure/persistence/gormstore"
	"github.com/xskcdf/Aquiis-sub005/pkg/database"
)

// OpenDB returns a migrated in-memory sqlite database private to the test
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	logger := zap.NewNop()
	db, err := database.Open(database.Config{
		Driver:       database.DriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	}, logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db, logger) })

	if err := database.NewMigrator(db, logger).RunMigrations(gormstore.Migrations()); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// New returns a store over a fresh test database
func New(t testing.TB) *gormstore.Store {
	t.Helper()
	return gormstore.NewStore(OpenDB(t), zap.NewNop())
}
