package database

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migration is one versioned schema change
type Migration struct {
	Version int
	Name    string
	Up      func(tx *gorm.DB) error
}

// SchemaMigration records an applied migration
type SchemaMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// Migrator handles database migrations
type Migrator struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewMigrator creates a new migrator
func NewMigrator(db *gorm.DB, logger *zap.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger,
	}
}

// Applied returns the set of applied migration versions
func (m *Migrator) Applied() (map[int]bool, error) {
	if err := m.db.AutoMigrate(&SchemaMigration{}); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	var records []SchemaMigration
	if err := m.db.Find(&records).Error; err != nil {
		return nil, err
	}

	applied := make(map[int]bool, len(records))
	for _, r := range records {
		applied[r.Version] = true
	}
	return applied, nil
}

// RunMigrations executes all pending migrations in version order, each in its own transaction
func (m *Migrator) RunMigrations(migrations []Migration) error {
	m.logger.Info("Starting database migrations", zap.Int("known", len(migrations)))

	applied, err := m.Applied()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	sorted := append([]Migration(nil), migrations...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Version < sorted[j].Version
	})

	for _, migration := range sorted {
		if applied[migration.Version] {
			m.logger.Debug("Skipping applied migration",
				zap.Int("version", migration.Version),
				zap.String("name", migration.Name))
			continue
		}

		m.logger.Info("Applying migration",
			zap.Int("version", migration.Version),
			zap.String("name", migration.Name))

		if err := m.applyMigration(migration); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
		}
	}

	m.logger.Info("Database migrations completed successfully")
	return nil
}

func (m *Migrator) applyMigration(migration Migration) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		if err := migration.Up(tx); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}

		record := SchemaMigration{
			Version:   migration.Version,
			Name:      migration.Name,
			AppliedAt: time.Now().UTC(),
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
		return nil
	})
}
