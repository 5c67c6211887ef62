// Package ledger records all quantity-affecting events as an append-only
// transaction log and keeps the materialized items projection consistent
// with it. The projection invariant: the quantity stored for any
// (rack, cell, part) key always equals the sum of all recorded changes
// for that key, with a non-positive sum represented by row absence.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/warekit/rackstock/internal/models"
)

var (
	// ErrZeroChange rejects transactions that would move nothing.
	ErrZeroChange = errors.New("quantity change must be nonzero")
	// ErrUnknownEmployee rejects transactions attributed to an employee
	// that was never registered.
	ErrUnknownEmployee = errors.New("unknown employee")
)

// Service is the inventory ledger over a GORM store.
type Service struct {
	db *gorm.DB
}

// NewService creates a ledger service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Result is returned from RecordTransaction so callers can update their
// view without a re-query.
type Result struct {
	Transaction models.InventoryTransaction `json:"transaction"`
	// NewQuantity is the materialized quantity after the change; zero
	// means the item row is absent.
	NewQuantity int `json:"new_quantity"`
}

// Item is one materialized stock line enriched with its catalog
// description (nil when the part is not cataloged).
type Item struct {
	CellIndex   int     `json:"cell_index"`
	PartNumber  string  `json:"part_number"`
	Quantity    int     `json:"quantity"`
	Description *string `json:"description"`
}

// SearchHit locates a part somewhere in the warehouse.
type SearchHit struct {
	RackID     string `json:"rack_id"`
	CellIndex  int    `json:"cell_index"`
	PartNumber string `json:"part_number"`
	Quantity   int    `json:"quantity"`
}

// RecordTransaction appends an immutable log row and reconciles the
// items projection, all inside one database transaction:
//
//   - existing item, sum still positive: quantity updated in place
//   - existing item, sum at or below zero: item row deleted
//   - no item, positive change: item row inserted
//   - no item, negative change: logged only, no negative-stock row
func (s *Service) RecordTransaction(ctx context.Context, rackID string, cellIndex int, partNumber string, quantityChange int, employeeID string) (*Result, error) {
	if quantityChange == 0 {
		return nil, ErrZeroChange
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Employee{}).Where("employee_id = ?", employeeID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("verify employee: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEmployee, employeeID)
	}

	result := &Result{}
	err := db.Transaction(func(tx *gorm.DB) error {
		result.Transaction = models.InventoryTransaction{
			RackID:         rackID,
			CellIndex:      cellIndex,
			PartNumber:     partNumber,
			QuantityChange: quantityChange,
			EmployeeID:     employeeID,
			Timestamp:      time.Now().UTC(),
		}
		if err := tx.Create(&result.Transaction).Error; err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}

		lookup := tx.Where(
			"rack_id = ? AND cell_index = ? AND part_number = ?",
			rackID, cellIndex, partNumber,
		)
		// Serialize concurrent writers on the same key. SQLite has a
		// single writer and no FOR UPDATE syntax.
		if tx.Dialector.Name() == "postgres" {
			lookup = lookup.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var item models.InventoryItem
		err := lookup.First(&item).Error
		switch {
		case err == nil:
			newQuantity := item.Quantity + quantityChange
			if newQuantity > 0 {
				if err := tx.Model(&item).Update("quantity", newQuantity).Error; err != nil {
					return fmt.Errorf("update item: %w", err)
				}
				result.NewQuantity = newQuantity
			} else {
				if err := tx.Delete(&item).Error; err != nil {
					return fmt.Errorf("delete emptied item: %w", err)
				}
				result.NewQuantity = 0
			}
			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			if quantityChange <= 0 {
				// Withdrawal against nothing: stays in the log, creates
				// no negative-stock row.
				result.NewQuantity = 0
				return nil
			}
			item = models.InventoryItem{
				RackID:     rackID,
				CellIndex:  cellIndex,
				PartNumber: partNumber,
				Quantity:   quantityChange,
			}
			// Another writer may have inserted the row between our
			// lookup and here; fold the change in instead of failing
			// on the unique key.
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "rack_id"}, {Name: "cell_index"}, {Name: "part_number"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"quantity": gorm.Expr("quantity + ?", quantityChange),
				}),
			}).Create(&item).Error
			if err != nil {
				return fmt.Errorf("insert item: %w", err)
			}
			result.NewQuantity = quantityChange
			return nil

		default:
			return fmt.Errorf("lookup item: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ItemsForRack returns the current projection grouped by cell index,
// each line joined with its catalog description.
func (s *Service) ItemsForRack(ctx context.Context, rackID string) (map[int][]Item, error) {
	var rows []Item
	err := s.db.WithContext(ctx).
		Table("items").
		Select("items.cell_index, items.part_number, items.quantity, master_parts.description").
		Joins("LEFT JOIN master_parts ON master_parts.part_number = items.part_number").
		Where("items.rack_id = ?", rackID).
		Order("items.cell_index, items.part_number").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch items: %w", err)
	}

	byCell := make(map[int][]Item, len(rows))
	for _, row := range rows {
		byCell[row.CellIndex] = append(byCell[row.CellIndex], row)
	}
	return byCell, nil
}

// SearchPart finds current stock whose part number contains the given
// fragment, across all racks. Audit questions go to CellHistory instead.
func (s *Service) SearchPart(ctx context.Context, partial string) ([]SearchHit, error) {
	var hits []SearchHit
	err := s.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("LOWER(part_number) LIKE ?", "%"+strings.ToLower(partial)+"%").
		Order("rack_id, cell_index, part_number").
		Scan(&hits).Error
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return hits, nil
}

// CellHistory returns the audit trail for one cell, newest first.
func (s *Service) CellHistory(ctx context.Context, rackID string, cellIndex int) ([]models.InventoryTransaction, error) {
	var txs []models.InventoryTransaction
	err := s.db.WithContext(ctx).
		Where("rack_id = ? AND cell_index = ?", rackID, cellIndex).
		Order("timestamp DESC, id DESC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return txs, nil
}
