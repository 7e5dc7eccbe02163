package gormstore

import (
	"gorm.io/gorm"

	"github.com/xskcdf/Aquiis-sub005/internal/domain/entity"
	"github.com/xskcdf/Aquiis-sub005/pkg/database"
)

// Migrations returns the schema history of the workflow store
func Migrations() []database.Migration {
	return []database.Migration{
		{
			Version: 1,
			Name:    "initial_schema",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(entity.All()...)
			},
		},
	}
}
