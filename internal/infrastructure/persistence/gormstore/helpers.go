package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/xskcdf/Aquiis-sub005/internal/application/port"
)

type versioned interface {
	CurrentVersion() int
	SetVersion(int)
}

// first loads one row scoped to the organization, returning (nil, nil) when absent
func first[T any](ctx context.Context, db *gorm.DB, organizationID string, query string, args ...any) (*T, error) {
	var out T
	err := db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Where(query, args...).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func create(ctx context.Context, db *gorm.DB, model any, name string) error {
	if v, ok := model.(versioned); ok && v.CurrentVersion() == 0 {
		v.SetVersion(1)
	}
	if err := db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	return nil
}

func save(ctx context.Context, db *gorm.DB, model any, name string) error {
	if err := db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	return nil
}

// saveVersioned writes every column only if the stored version still matches the loaded one
func saveVersioned(ctx context.Context, db *gorm.DB, model versioned, name string) error {
	expected := model.CurrentVersion()
	model.SetVersion(expected + 1)

	res := db.WithContext(ctx).
		Model(model).
		Where("version = ?", expected).
		Select("*").
		Updates(model)
	if res.Error != nil {
		model.SetVersion(expected)
		return fmt.Errorf("failed to save %s: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		model.SetVersion(expected)
		return fmt.Errorf("%s version %d: %w", name, expected, port.ErrConcurrentModification)
	}
	return nil
}
