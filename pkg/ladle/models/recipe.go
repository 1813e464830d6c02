package models

import (
	"time"

	"gorm.io/gorm"
)

// Recipe represents a published recipe
type Recipe struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	AuthorID    uint           `gorm:"not null;index" json:"author_id"`
	Name        string         `gorm:"not null" json:"name"`
	Image       string         `json:"image"`
	Text        string         `json:"text"`
	CookingTime uint           `gorm:"not null" json:"cooking_time"`

	// Relationships
	Author          User               `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Tags            []Tag              `gorm:"many2many:recipe_tags;" json:"tags,omitempty"`
	IngredientLines []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredient_lines,omitempty"`
}

// RecipeIngredient is one ingredient line of a recipe with its amount.
// Lines are owned by the recipe and written together with it; they are
// never created independently.
type RecipeIngredient struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	RecipeID     uint      `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientID uint      `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"ingredient_id"`
	Amount       uint      `gorm:"not null" json:"amount"`

	// Relationships
	Ingredient Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}
