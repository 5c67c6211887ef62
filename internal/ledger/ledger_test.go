package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/warekit/rackstock/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Rack{},
		&models.InventoryItem{},
		&models.InventoryTransaction{},
		&models.MasterPart{},
		&models.Employee{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	if err := db.Create(&models.Employee{EmployeeID: "emp-1", Name: "Test Employee", PinHash: "x"}).Error; err != nil {
		t.Fatalf("Failed to seed employee: %v", err)
	}
	return db
}

func mustRecord(t *testing.T, s *Service, cell int, part string, change int) *Result {
	t.Helper()
	res, err := s.RecordTransaction(context.Background(), "rack-1", cell, part, change, "emp-1")
	if err != nil {
		t.Fatalf("RecordTransaction(%d, %s, %+d) failed: %v", cell, part, change, err)
	}
	return res
}

func itemQuantity(t *testing.T, db *gorm.DB, cell int, part string) (int, bool) {
	t.Helper()
	var item models.InventoryItem
	err := db.Where("rack_id = ? AND cell_index = ? AND part_number = ?", "rack-1", cell, part).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false
	}
	if err != nil {
		t.Fatalf("Item lookup failed: %v", err)
	}
	return item.Quantity, true
}

func TestProjectionFollowsLog(t *testing.T) {
	db := openTestDB(t)
	s := NewService(db)

	// +5 then -3 on cell 0 / part A1 reads 2.
	res := mustRecord(t, s, 0, "A1", 5)
	if res.NewQuantity != 5 {
		t.Errorf("Expected new quantity 5, got %d", res.NewQuantity)
	}
	res = mustRecord(t, s, 0, "A1", -3)
	if res.NewQuantity != 2 {
		t.Errorf("Expected new quantity 2, got %d", res.NewQuantity)
	}
	if q, ok := itemQuantity(t, db, 0, "A1"); !ok || q != 2 {
		t.Errorf("Expected item row with quantity 2, got (%d, %v)", q, ok)
	}

	// -2 more empties the cell: the row must be gone, not zeroed.
	res = mustRecord(t, s, 0, "A1", -2)
	if res.NewQuantity != 0 {
		t.Errorf("Expected new quantity 0, got %d", res.NewQuantity)
	}
	if _, ok := itemQuantity(t, db, 0, "A1"); ok {
		t.Error("Item row should be absent after the sum reached zero")
	}

	// A global search finds nothing for the emptied key.
	hits, err := s.SearchPart(context.Background(), "A1")
	if err != nil {
		t.Fatalf("SearchPart failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("Expected no search hits, got %+v", hits)
	}

	// The log keeps all three movements.
	var txCount int64
	db.Model(&models.InventoryTransaction{}).Count(&txCount)
	if txCount != 3 {
		t.Errorf("Expected 3 log rows, got %d", txCount)
	}
}

func TestProjectionEqualsSumForNonNegativeRuns(t *testing.T) {
	sequences := [][]int{
		{1},
		{5, -3, 7, -9},
		{10, -10},
		{3, 3, 3, -1, -8},
		{2, -1, -1, 4},
	}

	for _, seq := range sequences {
		db := openTestDB(t)
		s := NewService(db)

		sum := 0
		for _, change := range seq {
			mustRecord(t, s, 4, "P-77", change)
			sum += change
		}

		q, ok := itemQuantity(t, db, 4, "P-77")
		if sum > 0 {
			if !ok || q != sum {
				t.Errorf("Sequence %v: expected quantity %d, got (%d, present=%v)", seq, sum, q, ok)
			}
		} else if ok {
			t.Errorf("Sequence %v: expected absent row, found quantity %d", seq, q)
		}
	}
}

func TestWithdrawalAgainstNothing(t *testing.T) {
	db := openTestDB(t)
	s := NewService(db)

	// A withdrawal with no stock is logged but produces no negative row.
	res := mustRecord(t, s, 2, "B9", -4)
	if res.NewQuantity != 0 {
		t.Errorf("Expected new quantity 0, got %d", res.NewQuantity)
	}
	if _, ok := itemQuantity(t, db, 2, "B9"); ok {
		t.Error("No item row should exist for a withdrawal against nothing")
	}
	var txCount int64
	db.Model(&models.InventoryTransaction{}).Count(&txCount)
	if txCount != 1 {
		t.Errorf("The withdrawal must still be logged, got %d rows", txCount)
	}

	// The lost remainder is not carried: a later +3 reads 3, not -1.
	res = mustRecord(t, s, 2, "B9", 3)
	if res.NewQuantity != 3 {
		t.Errorf("Expected new quantity 3, got %d", res.NewQuantity)
	}
}

func TestRecordTransactionRejectsZeroChange(t *testing.T) {
	s := NewService(openTestDB(t))
	_, err := s.RecordTransaction(context.Background(), "rack-1", 0, "A1", 0, "emp-1")
	if !errors.Is(err, ErrZeroChange) {
		t.Errorf("Expected ErrZeroChange, got %v", err)
	}
}

func TestRecordTransactionRejectsUnknownEmployee(t *testing.T) {
	db := openTestDB(t)
	s := NewService(db)

	_, err := s.RecordTransaction(context.Background(), "rack-1", 0, "A1", 5, "ghost")
	if !errors.Is(err, ErrUnknownEmployee) {
		t.Errorf("Expected ErrUnknownEmployee, got %v", err)
	}

	// Nothing may reach the log when the precondition fails.
	var txCount int64
	db.Model(&models.InventoryTransaction{}).Count(&txCount)
	if txCount != 0 {
		t.Errorf("Rejected transaction must not be logged, got %d rows", txCount)
	}
}

func TestItemsForRackJoinsCatalog(t *testing.T) {
	db := openTestDB(t)
	s := NewService(db)

	if err := db.Create(&models.MasterPart{PartNumber: "A1", Description: "Hex bolt M8x40"}).Error; err != nil {
		t.Fatalf("Failed to seed catalog: %v", err)
	}

	mustRecord(t, s, 0, "A1", 5)
	mustRecord(t, s, 0, "ZZ-UNCATALOGED", 2)
	mustRecord(t, s, 3, "A1", 1)

	items, err := s.ItemsForRack(context.Background(), "rack-1")
	if err != nil {
		t.Fatalf("ItemsForRack failed: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 cells with stock, got %d", len(items))
	}
	cell0 := items[0]
	if len(cell0) != 2 {
		t.Fatalf("Expected 2 lines in cell 0, got %d", len(cell0))
	}
	if cell0[0].PartNumber != "A1" || cell0[0].Description == nil || *cell0[0].Description != "Hex bolt M8x40" {
		t.Errorf("Expected cataloged A1 first, got %+v", cell0[0])
	}
	if cell0[1].PartNumber != "ZZ-UNCATALOGED" || cell0[1].Description != nil {
		t.Errorf("Uncataloged part should have nil description, got %+v", cell0[1])
	}
	if len(items[3]) != 1 || items[3][0].Quantity != 1 {
		t.Errorf("Expected one line with quantity 1 in cell 3, got %+v", items[3])
	}
}

func TestSearchPartIsSubstringAcrossRacks(t *testing.T) {
	db := openTestDB(t)
	s := NewService(db)

	mustRecord(t, s, 0, "KL-100", 5)
	res, err := s.RecordTransaction(context.Background(), "rack-2", 7, "kl-1001", 2, "emp-1")
	if err != nil {
		t.Fatalf("RecordTransaction failed: %v", err)
	}
	if res.NewQuantity != 2 {
		t.Errorf("Expected new quantity 2, got %d", res.NewQuantity)
	}
	mustRecord(t, s, 1, "XX-9", 1)

	hits, err := s.SearchPart(context.Background(), "L-100")
	if err != nil {
		t.Fatalf("SearchPart failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("Expected 2 hits, got %+v", hits)
	}
	if hits[0].RackID != "rack-1" || hits[0].CellIndex != 0 || hits[0].Quantity != 5 {
		t.Errorf("Unexpected first hit: %+v", hits[0])
	}
	if hits[1].RackID != "rack-2" || hits[1].CellIndex != 7 {
		t.Errorf("Unexpected second hit: %+v", hits[1])
	}
}

func TestCellHistoryNewestFirst(t *testing.T) {
	db := openTestDB(t)
	s := NewService(db)

	mustRecord(t, s, 5, "A1", 3)
	mustRecord(t, s, 5, "A1", -1)
	mustRecord(t, s, 6, "A1", 9) // other cell, must not appear

	history, err := s.CellHistory(context.Background(), "rack-1", 5)
	if err != nil {
		t.Fatalf("CellHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 history rows, got %d", len(history))
	}
	if history[0].QuantityChange != -1 || history[1].QuantityChange != 3 {
		t.Errorf("History not newest-first: %+v", history)
	}
	for _, tx := range history {
		if tx.EmployeeID != "emp-1" {
			t.Errorf("Transaction missing employee attribution: %+v", tx)
		}
	}
}
