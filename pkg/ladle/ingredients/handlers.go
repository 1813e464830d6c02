package ingredients

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/okarpova/ladle/pkg/ladle/models"
	"gorm.io/gorm"
)

// Handler handles ingredient catalog requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new ingredients handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// IngredientResponse represents an ingredient in API responses
type IngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// ToResponse converts an ingredient model to its API representation
func ToResponse(ing models.Ingredient) IngredientResponse {
	return IngredientResponse{
		ID:              ing.ID,
		Name:            ing.Name,
		MeasurementUnit: ing.MeasurementUnit,
	}
}

// List returns the ingredient catalog, optionally filtered by a
// case-insensitive name prefix
// @Summary List ingredients
// @Description Get catalog ingredients, optionally filtered by name prefix (case-insensitive)
// @Tags ingredients
// @Produce json
// @Param name query string false "Name prefix filter"
// @Success 200 {array} IngredientResponse
// @Router /ingredients [get]
func (h *Handler) List(c *gin.Context) {
	var ings []models.Ingredient
	if err := h.db.Order("name").Find(&ings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ingredients"})
		return
	}

	// Prefix matching folds case here, not in SQL: sqlite's LIKE and
	// lower() fold ASCII only, and postgres LIKE folds nothing, so
	// neither driver handles non-Latin catalog names.
	if name := c.Query("name"); name != "" {
		prefix := strings.ToLower(name)
		matched := make([]models.Ingredient, 0, len(ings))
		for _, ing := range ings {
			if strings.HasPrefix(strings.ToLower(ing.Name), prefix) {
				matched = append(matched, ing)
			}
		}
		ings = matched
	}

	responses := make([]IngredientResponse, len(ings))
	for i, ing := range ings {
		responses[i] = ToResponse(ing)
	}

	c.JSON(http.StatusOK, responses)
}

// Get returns a single ingredient by ID
// @Summary Get an ingredient
// @Description Get a single catalog ingredient by its ID
// @Tags ingredients
// @Produce json
// @Param id path int true "Ingredient ID"
// @Success 200 {object} IngredientResponse
// @Failure 404 {object} map[string]string "Ingredient not found"
// @Router /ingredients/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ingredient ID"})
		return
	}

	var ing models.Ingredient
	if err := h.db.First(&ing, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ingredient not found"})
		return
	}

	c.JSON(http.StatusOK, ToResponse(ing))
}

// RegisterRoutes registers ingredient routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ingredients", h.List)
	rg.GET("/ingredients/:id", h.Get)
}
