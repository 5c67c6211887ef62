// Package catalog maintains the master part-number-to-description
// table, loaded in bulk from tabular sources (CSV or XLSX).
package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/warekit/rackstock/internal/models"
)

// Service is the catalog store.
type Service struct {
	db *gorm.DB
}

// NewService creates a catalog service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// BulkImport upserts catalog rows. Row 0 is a header and is discarded.
// Each remaining row contributes its first two fields as
// (part number, description); shorter rows are skipped silently and a
// repeated part number within one batch keeps the last occurrence.
// Returns the number of rows upserted.
func (s *Service) BulkImport(ctx context.Context, rows [][]string) (int, error) {
	if len(rows) <= 1 {
		return 0, nil
	}

	db := s.db.WithContext(ctx)
	imported := 0

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows[1:] {
			if len(row) < 2 {
				continue
			}
			part := models.MasterPart{
				PartNumber:  row[0],
				Description: row[1],
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "part_number"}},
				DoUpdates: clause.AssignmentColumns([]string{"description", "updated_at"}),
			}).Create(&part).Error
			if err != nil {
				return fmt.Errorf("upsert part %q: %w", part.PartNumber, err)
			}
			imported++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return imported, nil
}

// ImportCSV reads an entire CSV stream and bulk-imports it.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	// Part lists come from many exports with ragged column counts.
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, record)
	}
	return s.BulkImport(ctx, rows)
}

// ImportXLSX reads the first sheet of an XLSX stream and bulk-imports it.
func (s *Service) ImportXLSX(ctx context.Context, r io.Reader) (int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return 0, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return 0, fmt.Errorf("read xlsx rows: %w", err)
	}
	return s.BulkImport(ctx, rows)
}

// Describe resolves a part number to its description, nil when the part
// is not cataloged.
func (s *Service) Describe(ctx context.Context, partNumber string) (*string, error) {
	var part models.MasterPart
	err := s.db.WithContext(ctx).Where("part_number = ?", partNumber).First(&part).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch part: %w", err)
	}
	return &part.Description, nil
}
