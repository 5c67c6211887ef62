package models

import (
	"time"

	"gorm.io/datatypes"
)

// Rack represents one photographed storage rack. The rack id is derived
// from the source image filename and never changes afterwards.
type Rack struct {
	RackID    string         `gorm:"primaryKey;type:varchar(255)" json:"rack_id"`
	ImagePath string         `gorm:"not null" json:"image_path"`
	Layout    datatypes.JSON `json:"layout"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Rack model
func (Rack) TableName() string {
	return "racks"
}
