package models

import "time"

// Employee is the actor reference attached to every inventory
// transaction. An employee row must exist before transactions under
// that id are accepted.
type Employee struct {
	EmployeeID string `gorm:"primaryKey;type:varchar(255)" json:"employee_id"`
	Name       string `gorm:"not null" json:"name"`
	PinHash    string `gorm:"not null" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Employee model
func (Employee) TableName() string {
	return "employees"
}
