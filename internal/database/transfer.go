package database

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"leadgen-dashboard/internal/models"
)

const copyBatchSize = 500

// TableCount is the number of rows copied into one table.
type TableCount struct {
	Table string
	Rows  int
}

// CopyAll copies every table from src to dst in dependency order, keeping ids.
// Each table is written in its own transaction; the first failure stops the copy.
func CopyAll(src, dst *gorm.DB) ([]TableCount, error) {
	steps := []struct {
		table string
		copy  func(src, dst *gorm.DB) (int, error)
	}{
		{"admins", copyTable[models.Admin]},
		{"countries", copyTable[models.Country]},
		{"cities", copyTable[models.City]},
		{"areas", copyTable[models.Area]},
		{"scrape_jobs", copyTable[models.ScrapeJob]},
		{"businesses", copyTable[models.Business]},
		{"business_interactions", copyTable[models.BusinessInteraction]},
	}

	var counts []TableCount
	for _, step := range steps {
		n, err := step.copy(src, dst)
		if err != nil {
			return counts, fmt.Errorf("copying %s: %w", step.table, err)
		}
		counts = append(counts, TableCount{Table: step.table, Rows: n})
	}
	return counts, nil
}

func copyTable[T any](src, dst *gorm.DB) (int, error) {
	var rows []T
	if err := src.Find(&rows).Error; err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	err := dst.Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).CreateInBatches(&rows, copyBatchSize).Error
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
