package models

import "time"

// InventoryItem is the materialized current quantity for one part in one
// cell. It is a projection of the transaction log, never edited directly:
// a key whose summed changes drop to zero or below has no row at all.
type InventoryItem struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	RackID     string `gorm:"type:varchar(255);not null;uniqueIndex:idx_items_rack_cell_part;index" json:"rack_id"`
	CellIndex  int    `gorm:"not null;uniqueIndex:idx_items_rack_cell_part" json:"cell_index"`
	PartNumber string `gorm:"type:varchar(255);not null;uniqueIndex:idx_items_rack_cell_part" json:"part_number"`
	Quantity   int    `gorm:"not null" json:"quantity"`

	// Relations
	Rack Rack `gorm:"foreignKey:RackID;references:RackID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for InventoryItem model
func (InventoryItem) TableName() string {
	return "items"
}

// InventoryTransaction is one immutable row of the append-only movement
// log. QuantityChange is signed and never zero.
type InventoryTransaction struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	RackID         string    `gorm:"type:varchar(255);not null;index" json:"rack_id"`
	CellIndex      int       `gorm:"not null" json:"cell_index"`
	PartNumber     string    `gorm:"type:varchar(255);not null;index" json:"part_number"`
	QuantityChange int       `gorm:"not null" json:"quantity_change"`
	EmployeeID     string    `gorm:"type:varchar(255);not null;index" json:"employee_id"`
	Timestamp      time.Time `gorm:"not null;index" json:"timestamp"`
}

// TableName specifies the table name for InventoryTransaction model
func (InventoryTransaction) TableName() string {
	return "transactions"
}
