package recipes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/okarpova/ladle/pkg/ladle/auth"
	"github.com/okarpova/ladle/pkg/ladle/models"
	"gorm.io/gorm"
)

// The favorite and shopping-cart toggles share one implementation: a
// uniquely-keyed (user, recipe) join row where a duplicate insert is
// reported as a conflict and removing a missing row as not found.

// addRelation inserts a (user, recipe) join row and responds with the
// short recipe representation.
func addRelation[T any](h *Handler, c *gin.Context, build func(userID, recipeID uint) T) {
	userID, _ := auth.GetUserID(c)
	recipeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}

	var recipe models.Recipe
	if err := h.db.First(&recipe, recipeID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	entry := build(userID, uint(recipeID))
	if err := h.db.Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Relation already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create relation"})
		return
	}

	c.JSON(http.StatusCreated, shortRecipeToResponse(recipe))
}

// removeRelation deletes a (user, recipe) join row
func removeRelation[T any](h *Handler, c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	recipeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}

	var entry T
	result := h.db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&entry)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove relation"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Relation does not exist"})
		return
	}

	c.Status(http.StatusNoContent)
}

// AddFavorite adds a recipe to the caller's favorites
// @Summary Favorite a recipe
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} ShortRecipeResponse
// @Failure 404 {object} map[string]string "Recipe not found"
// @Failure 409 {object} map[string]string "Already favorited"
// @Security BearerAuth
// @Router /recipes/{id}/favorite [post]
func (h *Handler) AddFavorite(c *gin.Context) {
	addRelation(h, c, func(userID, recipeID uint) models.FavoriteRecipe {
		return models.FavoriteRecipe{UserID: userID, RecipeID: recipeID}
	})
}

// RemoveFavorite removes a recipe from the caller's favorites
// @Summary Unfavorite a recipe
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 404 {object} map[string]string "Not favorited"
// @Security BearerAuth
// @Router /recipes/{id}/favorite [delete]
func (h *Handler) RemoveFavorite(c *gin.Context) {
	removeRelation[models.FavoriteRecipe](h, c)
}

// AddToCart adds a recipe to the caller's shopping cart
// @Summary Add a recipe to the shopping cart
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} ShortRecipeResponse
// @Failure 404 {object} map[string]string "Recipe not found"
// @Failure 409 {object} map[string]string "Already in cart"
// @Security BearerAuth
// @Router /recipes/{id}/shopping_cart [post]
func (h *Handler) AddToCart(c *gin.Context) {
	addRelation(h, c, func(userID, recipeID uint) models.ShoppingCartEntry {
		return models.ShoppingCartEntry{UserID: userID, RecipeID: recipeID}
	})
}

// RemoveFromCart removes a recipe from the caller's shopping cart
// @Summary Remove a recipe from the shopping cart
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 404 {object} map[string]string "Not in cart"
// @Security BearerAuth
// @Router /recipes/{id}/shopping_cart [delete]
func (h *Handler) RemoveFromCart(c *gin.Context) {
	removeRelation[models.ShoppingCartEntry](h, c)
}
