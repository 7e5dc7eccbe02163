package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type widget struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func memoryConfig() Config {
	return Config{
		Driver:       DriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	}
}

func TestOpen_SQLiteFile(t *testing.T) {
	logger := zap.NewNop()
	db, err := Open(Config{Path: filepath.Join(t.TempDir(), "test.db")}, logger)
	require.NoError(t, err)
	defer Close(db, logger)

	var mode string
	require.NoError(t, db.Raw("PRAGMA journal_mode").Scan(&mode).Error)
	assert.Equal(t, "wal", mode)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestRunMigrations(t *testing.T) {
	logger := zap.NewNop()
	db, err := Open(memoryConfig(), logger)
	require.NoError(t, err)
	defer Close(db, logger)

	calls := 0
	migrations := []Migration{
		{Version: 2, Name: "seed", Up: func(tx *gorm.DB) error {
			calls++
			return tx.Create(&widget{Name: "first"}).Error
		}},
		{Version: 1, Name: "widgets", Up: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&widget{})
		}},
	}

	m := NewMigrator(db, logger)
	require.NoError(t, m.RunMigrations(migrations))
	require.NoError(t, m.RunMigrations(migrations))
	assert.Equal(t, 1, calls, "applied migrations are skipped")

	applied, err := m.Applied()
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{1: true, 2: true}, applied)

	var count int64
	require.NoError(t, db.Model(&widget{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRunMigrations_FailureRollsBack(t *testing.T) {
	logger := zap.NewNop()
	db, err := Open(memoryConfig(), logger)
	require.NoError(t, err)
	defer Close(db, logger)

	boom := errors.New("boom")
	err = NewMigrator(db, logger).RunMigrations([]Migration{
		{Version: 1, Name: "widgets", Up: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&widget{}); err != nil {
				return err
			}
			return tx.Create(&widget{Name: "x"}).Error
		}},
		{Version: 2, Name: "broken", Up: func(tx *gorm.DB) error {
			if err := tx.Create(&widget{Name: "y"}).Error; err != nil {
				return err
			}
			return boom
		}},
	})
	require.ErrorIs(t, err, boom)

	applied, err := NewMigrator(db, logger).Applied()
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{1: true}, applied)

	var count int64
	require.NoError(t, db.Model(&widget{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestParseGormLevel(t *testing.T) {
	tests := []struct {
		in   string
		want gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"ERROR", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"", gormlogger.Warn},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseGormLevel(tt.in))
		})
	}
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), "warn", 10*time.Millisecond)
	ctx := context.Background()
	fc := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(ctx, time.Now(), fc, nil)
	assert.Equal(t, 0, logs.Len(), "fast queries are not logged at warn")

	l.Trace(ctx, time.Now().Add(-time.Second), fc, nil)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Slow query", logs.All()[0].Message)

	l.Trace(ctx, time.Now(), fc, gorm.ErrRecordNotFound)
	assert.Equal(t, 1, logs.Len(), "not found is not an error")

	l.Trace(ctx, time.Now(), fc, errors.New("syntax error"))
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "Query failed", logs.All()[1].Message)

	silent := l.LogMode(gormlogger.Silent)
	silent.Trace(ctx, time.Now(), fc, errors.New("ignored"))
	assert.Equal(t, 2, logs.Len())
}
