package shopping

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ShoppingItem is one merged line of a user's shopping list
type ShoppingItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	TotalAmount     int64  `json:"total_amount"`
}

// Aggregate collects every ingredient line of every recipe in the user's
// shopping cart, merging lines by (name, measurement unit) and summing
// their amounts. Two catalog rows that share a name and unit are merged
// in the report even though they stay distinct entities elsewhere.
// The result is ordered by name; an empty cart yields an empty slice.
func Aggregate(db *gorm.DB, userID uint) ([]ShoppingItem, error) {
	var items []ShoppingItem
	err := db.Table("ingredients").
		Select("ingredients.name, ingredients.measurement_unit, SUM(recipe_ingredients.amount) AS total_amount").
		Joins("INNER JOIN recipe_ingredients ON recipe_ingredients.ingredient_id = ingredients.id").
		Joins("INNER JOIN recipes ON recipes.id = recipe_ingredients.recipe_id AND recipes.deleted_at IS NULL").
		Joins("INNER JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipes.id AND shopping_cart_entries.user_id = ?", userID).
		Where("ingredients.deleted_at IS NULL").
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Render formats the shopping list as a plain-text report: a header,
// one line per merged ingredient, and a footer. An empty list produces
// header and footer only.
func Render(items []ShoppingItem) string {
	lines := make([]string, 0, len(items)+3)
	lines = append(lines, "Your shopping list:")
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s (%s) - %d", item.Name, item.MeasurementUnit, item.TotalAmount))
	}
	lines = append(lines, "", "Happy shopping! Your Ladle.")
	return strings.Join(lines, "\n")
}
