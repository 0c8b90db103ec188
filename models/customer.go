package models

import (
	"time"

	"gorm.io/gorm"
)

type Customer struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Email     string         `gorm:"size:255;not null" json:"email"`
	Phone     string         `gorm:"size:50;not null" json:"phone"`
	Address   string         `gorm:"type:text;not null" json:"address"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
}

// TableName overrides the table name
func (Customer) TableName() string {
	return "customers"
}
