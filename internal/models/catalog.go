package models

import "time"

// MasterPart maps a part number to its human-readable description.
// Maintained by bulk import, last import wins on conflict.
type MasterPart struct {
	PartNumber  string `gorm:"primaryKey;type:varchar(255)" json:"part_number"`
	Description string `json:"description"`

	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for MasterPart model
func (MasterPart) TableName() string {
	return "master_parts"
}
