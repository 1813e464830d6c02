package subscriptions

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/okarpova/ladle/pkg/ladle/auth"
	"github.com/okarpova/ladle/pkg/ladle/models"
	"github.com/okarpova/ladle/pkg/ladle/recipes"
	"gorm.io/gorm"
)

// Handler handles author subscription requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new subscriptions handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// AuthorResponse represents a followed author with a preview of their recipes
type AuthorResponse struct {
	ID           uint                          `json:"id"`
	Username     string                        `json:"username"`
	FirstName    string                        `json:"first_name"`
	LastName     string                        `json:"last_name"`
	IsSubscribed bool                          `json:"is_subscribed"`
	Recipes      []recipes.ShortRecipeResponse `json:"recipes"`
	RecipesCount int64                         `json:"recipes_count"`
}

// SubscriptionListResponse is a paginated page of followed authors
type SubscriptionListResponse struct {
	Count   int64            `json:"count"`
	Results []AuthorResponse `json:"results"`
}

// authorToResponse builds the author representation with a recipe preview
func (h *Handler) authorToResponse(author models.User, subscribed bool, recipesLimit int) AuthorResponse {
	var count int64
	h.db.Model(&models.Recipe{}).Where("author_id = ?", author.ID).Count(&count)

	var authorRecipes []models.Recipe
	query := h.db.Where("author_id = ?", author.ID).Order("created_at DESC")
	if recipesLimit > 0 {
		query = query.Limit(recipesLimit)
	}
	query.Find(&authorRecipes)

	previews := make([]recipes.ShortRecipeResponse, len(authorRecipes))
	for i, r := range authorRecipes {
		previews[i] = recipes.ShortRecipeResponse{
			ID:          r.ID,
			Name:        r.Name,
			Image:       r.Image,
			CookingTime: r.CookingTime,
		}
	}

	return AuthorResponse{
		ID:           author.ID,
		Username:     author.Username,
		FirstName:    author.FirstName,
		LastName:     author.LastName,
		IsSubscribed: subscribed,
		Recipes:      previews,
		RecipesCount: count,
	}
}

// Subscribe follows an author
// @Summary Follow an author
// @Tags subscriptions
// @Produce json
// @Param id path int true "Author ID"
// @Success 201 {object} AuthorResponse
// @Failure 400 {object} map[string]string "Cannot follow yourself"
// @Failure 404 {object} map[string]string "Author not found"
// @Failure 409 {object} map[string]string "Already following"
// @Security BearerAuth
// @Router /users/{id}/subscribe [post]
func (h *Handler) Subscribe(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	authorID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid author ID"})
		return
	}

	if uint(authorID) == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot follow yourself"})
		return
	}

	var author models.User
	if err := h.db.First(&author, authorID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Author not found"})
		return
	}

	follow := models.Follow{UserID: userID, AuthorID: uint(authorID)}
	if err := h.db.Create(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Already following this author"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow author"})
		return
	}

	c.JSON(http.StatusCreated, h.authorToResponse(author, true, 0))
}

// Unsubscribe unfollows an author
// @Summary Unfollow an author
// @Tags subscriptions
// @Param id path int true "Author ID"
// @Success 204
// @Failure 404 {object} map[string]string "Not following"
// @Security BearerAuth
// @Router /users/{id}/subscribe [delete]
func (h *Handler) Unsubscribe(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	authorID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid author ID"})
		return
	}

	result := h.db.Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&models.Follow{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfollow author"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not following this author"})
		return
	}

	c.Status(http.StatusNoContent)
}

// List returns the authors the caller follows, each with a recipe preview
// @Summary List followed authors
// @Tags subscriptions
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param recipes_limit query int false "Max recipes per author"
// @Success 200 {object} SubscriptionListResponse
// @Security BearerAuth
// @Router /subscriptions [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var total int64
	if err := h.db.Model(&models.Follow{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subscriptions"})
		return
	}

	limit := 20
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	page := 1
	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	recipesLimit := 0
	if rl := c.Query("recipes_limit"); rl != "" {
		if parsed, err := strconv.Atoi(rl); err == nil && parsed > 0 {
			recipesLimit = parsed
		}
	}

	var follows []models.Follow
	err := h.db.Preload("Author").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&follows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subscriptions"})
		return
	}

	results := make([]AuthorResponse, len(follows))
	for i, follow := range follows {
		results[i] = h.authorToResponse(follow.Author, true, recipesLimit)
	}

	c.JSON(http.StatusOK, SubscriptionListResponse{Count: total, Results: results})
}

// RegisterRoutes registers subscription routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/subscriptions", h.List)
	rg.POST("/users/:id/subscribe", h.Subscribe)
	rg.DELETE("/users/:id/subscribe", h.Unsubscribe)
}
