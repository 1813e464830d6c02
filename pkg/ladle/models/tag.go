package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultTagColor is used when a tag is imported without a color.
const DefaultTagColor = "#FF0000"

// Tag represents a catalog tag that can be applied to recipes.
// Tags are created out-of-band (import); the recipe-authoring flow only
// references them.
type Tag struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"not null" json:"name"`
	Color     string         `gorm:"type:varchar(10);default:'#FF0000'" json:"color"`
	Slug      string         `gorm:"uniqueIndex;not null" json:"slug"`

	// Relationships
	Recipes []Recipe `gorm:"many2many:recipe_tags;" json:"recipes,omitempty"`
}
