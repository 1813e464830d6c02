package models

import "gorm.io/gorm"

// AllModels returns all models for migration.
// Catalog tables (Tag, Ingredient) and User come first; join tables that
// reference them follow.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Follow{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&RecipeIngredient{},
		&FavoriteRecipe{},
		&ShoppingCartEntry{},
		&APIToken{},
	}
}

// AutoMigrate runs GORM auto-migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
