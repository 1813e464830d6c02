package models

import (
	"time"

	"gorm.io/gorm"
)

// Ingredient represents a catalog ingredient. Like tags, ingredients are
// loaded out-of-band (CSV import) and are immutable from the
// recipe-authoring flow's perspective.
type Ingredient struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	Name            string         `gorm:"index;not null" json:"name"`
	MeasurementUnit string         `gorm:"not null" json:"measurement_unit"`
}
