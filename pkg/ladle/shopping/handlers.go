package shopping

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/okarpova/ladle/pkg/ladle/auth"
	"gorm.io/gorm"
)

// Handler handles shopping list requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new shopping handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// Download returns the caller's consolidated shopping list as a
// plain-text attachment. An empty cart is not an error; the report then
// contains only header and footer.
// @Summary Download the shopping list
// @Description Download a deduplicated, summed ingredient list for every recipe in the caller's cart
// @Tags shopping
// @Produce plain
// @Success 200 {string} string "Shopping list report"
// @Security BearerAuth
// @Router /shopping_cart/download [get]
func (h *Handler) Download(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	items, err := Aggregate(h.db, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build shopping list"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(Render(items)))
}

// RegisterRoutes registers shopping routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/shopping_cart/download", h.Download)
}
