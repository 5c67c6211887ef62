// Seeds a demo rack, a small parts catalog, and one employee so a fresh
// install has something to look at. Safe to run only against an empty
// database.
package main

import (
	"context"
	"log"

	"github.com/warekit/rackstock/internal/catalog"
	"github.com/warekit/rackstock/internal/config"
	"github.com/warekit/rackstock/internal/database"
	"github.com/warekit/rackstock/internal/layout"
	"github.com/warekit/rackstock/internal/ledger"
	"github.com/warekit/rackstock/internal/models"
	"github.com/warekit/rackstock/internal/registry"
	"github.com/warekit/rackstock/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	err = db.AutoMigrate(
		&models.Rack{},
		&models.InventoryItem{},
		&models.InventoryTransaction{},
		&models.MasterPart{},
		&models.Employee{},
	)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	ctx := context.Background()

	// Demo employee
	pinHash, err := utils.HashPin("4711")
	if err != nil {
		log.Fatalf("Failed to hash pin: %v", err)
	}
	employee := models.Employee{EmployeeID: "demo", Name: "Demo Employee", PinHash: pinHash}
	if err := db.Create(&employee).Error; err != nil {
		log.Fatalf("Failed to create employee: %v", err)
	}
	log.Println("✅ Employee 'demo' created (pin 4711)")

	// Demo catalog
	parts := catalog.NewService(db.DB)
	imported, err := parts.BulkImport(ctx, [][]string{
		{"part_number", "description"},
		{"A1", "Hex bolt M8x40"},
		{"A2", "Hex nut M8"},
		{"B7", "Bearing 6204-2RS"},
		{"C3", "V-belt XPZ 1000"},
	})
	if err != nil {
		log.Fatalf("Failed to import catalog: %v", err)
	}
	log.Printf("✅ Catalog imported (%d parts)", imported)

	// Demo rack with 3x4 grid
	cells, err := layout.InitializeGrid(3, 4)
	if err != nil {
		log.Fatalf("Failed to initialize grid: %v", err)
	}
	racks := registry.NewService(db.DB)
	if _, err := racks.CreateRack(ctx, "demo_rack", "demo_rack.jpg", cells); err != nil {
		log.Fatalf("Failed to create rack: %v", err)
	}
	log.Println("✅ Rack 'demo_rack' created (3x4 grid)")

	// A few movements
	books := ledger.NewService(db.DB)
	for _, mv := range []struct {
		cell   int
		part   string
		change int
	}{
		{0, "A1", 25},
		{0, "A2", 25},
		{5, "B7", 4},
		{5, "B7", -1},
		{11, "C3", 2},
	} {
		if _, err := books.RecordTransaction(ctx, "demo_rack", mv.cell, mv.part, mv.change, "demo"); err != nil {
			log.Fatalf("Failed to record transaction: %v", err)
		}
	}
	log.Println("✅ Sample transactions recorded")
}
