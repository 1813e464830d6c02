package importexport

import (
	"encoding/csv"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/okarpova/ladle/pkg/ladle/models"
	"gorm.io/gorm"
)

// Handler handles catalog import/export requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new import/export handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ImportTag represents one tag in a tag import request
type ImportTag struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
	Slug  string `json:"slug" binding:"required"`
}

// ImportTagsRequest represents a tag import request
type ImportTagsRequest struct {
	Tags []ImportTag `json:"tags" binding:"required"`
}

// ImportIngredients imports catalog ingredients from CSV.
// Each row is "name,measurement_unit"; rows that duplicate an existing
// catalog entry are skipped.
// @Summary Import ingredients
// @Description Import the ingredient catalog from a CSV body (name,measurement_unit per row)
// @Tags import
// @Accept plain
// @Produce json
// @Success 200 {object} ImportResult
// @Failure 400 {object} map[string]string "Malformed CSV"
// @Security BearerAuth
// @Router /import/ingredients [post]
func (h *Handler) ImportIngredients(c *gin.Context) {
	reader := csv.NewReader(c.Request.Body)
	reader.FieldsPerRecord = -1

	result := ImportResult{
		Errors: []string{},
	}

	for line := 1; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed CSV: " + err.Error()})
			return
		}

		if len(row) < 2 {
			result.Errors = append(result.Errors, "row "+strconv.Itoa(line)+": expected name,measurement_unit")
			result.Skipped++
			continue
		}

		name := strings.TrimSpace(row[0])
		unit := strings.TrimSpace(row[1])
		if name == "" || unit == "" {
			result.Errors = append(result.Errors, "row "+strconv.Itoa(line)+": empty name or unit")
			result.Skipped++
			continue
		}

		var count int64
		h.db.Model(&models.Ingredient{}).Where("name = ? AND measurement_unit = ?", name, unit).Count(&count)
		if count > 0 {
			result.Skipped++
			continue
		}

		ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
		if err := h.db.Create(&ingredient).Error; err != nil {
			result.Errors = append(result.Errors, "row "+strconv.Itoa(line)+": "+err.Error())
			result.Skipped++
			continue
		}

		result.Imported++
	}

	c.JSON(http.StatusOK, result)
}

// ImportTags imports catalog tags from JSON. Tags whose slug already
// exists are skipped; a missing color falls back to the default.
// @Summary Import tags
// @Description Import the tag catalog from JSON
// @Tags import
// @Accept json
// @Produce json
// @Param request body ImportTagsRequest true "Tags to import"
// @Success 200 {object} ImportResult
// @Security BearerAuth
// @Router /import/tags [post]
func (h *Handler) ImportTags(c *gin.Context) {
	var req ImportTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := ImportResult{
		Errors: []string{},
	}

	for i, t := range req.Tags {
		var count int64
		h.db.Model(&models.Tag{}).Where("slug = ?", t.Slug).Count(&count)
		if count > 0 {
			result.Skipped++
			continue
		}

		color := t.Color
		if color == "" {
			color = models.DefaultTagColor
		}

		tag := models.Tag{Name: t.Name, Color: color, Slug: t.Slug}
		if err := h.db.Create(&tag).Error; err != nil {
			result.Errors = append(result.Errors, "tag "+strconv.Itoa(i)+": "+err.Error())
			result.Skipped++
			continue
		}

		result.Imported++
	}

	c.JSON(http.StatusOK, result)
}

// ExportIngredients exports the ingredient catalog as CSV
// @Summary Export ingredients
// @Description Download the ingredient catalog as CSV
// @Tags import
// @Produce plain
// @Success 200 {string} string "CSV data"
// @Security BearerAuth
// @Router /export/ingredients [get]
func (h *Handler) ExportIngredients(c *gin.Context) {
	var ingredients []models.Ingredient
	if err := h.db.Order("name").Find(&ingredients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ingredients"})
		return
	}

	var sb strings.Builder
	writer := csv.NewWriter(&sb)
	for _, ing := range ingredients {
		if err := writer.Write([]string{ing.Name, ing.MeasurementUnit}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write CSV"})
			return
		}
	}
	writer.Flush()

	c.Header("Content-Disposition", `attachment; filename="ingredients.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(sb.String()))
}

// RegisterRoutes registers import/export routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/import/ingredients", h.ImportIngredients)
	rg.POST("/import/tags", h.ImportTags)
	rg.GET("/export/ingredients", h.ExportIngredients)
}
