package recipes

import (
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/okarpova/ladle/pkg/ladle/auth"
	"github.com/okarpova/ladle/pkg/ladle/models"
	"gorm.io/gorm"
)

// Handler handles recipe-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new recipes handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateRecipeRequest represents the request to create a recipe
type CreateRecipeRequest struct {
	Name        string          `json:"name" binding:"required,max=100"`
	Image       string          `json:"image"`
	Text        string          `json:"text" binding:"required"`
	CookingTime uint            `json:"cooking_time" binding:"required,min=1"`
	Tags        []FlexibleID    `json:"tags"`
	Ingredients []RawIngredient `json:"ingredients"`
}

// UpdateRecipeRequest represents the request to update a recipe.
// Tags and Ingredients are pointers so a PATCH that omits them keeps the
// existing associations, while an explicit empty list is rejected.
type UpdateRecipeRequest struct {
	Name        *string          `json:"name"`
	Image       *string          `json:"image"`
	Text        *string          `json:"text"`
	CookingTime *uint            `json:"cooking_time"`
	Tags        *[]FlexibleID    `json:"tags"`
	Ingredients *[]RawIngredient `json:"ingredients"`
}

// AuthorResponse represents a recipe author in API responses
type AuthorResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// TagResponse represents a tag nested in a recipe response
type TagResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

// IngredientLineResponse represents one resolved ingredient line
type IngredientLineResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          uint   `json:"amount"`
}

// RecipeResponse represents a recipe in API responses
type RecipeResponse struct {
	ID               uint                     `json:"id"`
	Author           AuthorResponse           `json:"author"`
	Name             string                   `json:"name"`
	Image            string                   `json:"image"`
	Text             string                   `json:"text"`
	CookingTime      uint                     `json:"cooking_time"`
	Tags             []TagResponse            `json:"tags"`
	Ingredients      []IngredientLineResponse `json:"ingredients"`
	IsFavorited      bool                     `json:"is_favorited"`
	IsInShoppingCart bool                     `json:"is_in_shopping_cart"`
	CreatedAt        string                   `json:"created_at"`
}

// ShortRecipeResponse is the reduced representation used by the
// relation-toggle endpoints
type ShortRecipeResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime uint   `json:"cooking_time"`
}

// RecipeListResponse is a paginated page of recipes
type RecipeListResponse struct {
	Count   int64            `json:"count"`
	Results []RecipeResponse `json:"results"`
}

func shortRecipeToResponse(recipe models.Recipe) ShortRecipeResponse {
	return ShortRecipeResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}
}

// recipeToResponse builds the full representation. The recipe must have
// Author, Tags and IngredientLines.Ingredient preloaded. userID may be
// zero for anonymous callers, in which case both relation flags are false.
func (h *Handler) recipeToResponse(recipe models.Recipe, userID uint) RecipeResponse {
	tags := make([]TagResponse, len(recipe.Tags))
	for i, t := range recipe.Tags {
		tags[i] = TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
	}

	lines := make([]IngredientLineResponse, len(recipe.IngredientLines))
	for i, line := range recipe.IngredientLines {
		lines[i] = IngredientLineResponse{
			ID:              line.IngredientID,
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		}
	}

	var isFavorited, isInCart bool
	if userID != 0 {
		var count int64
		h.db.Model(&models.FavoriteRecipe{}).
			Where("user_id = ? AND recipe_id = ?", userID, recipe.ID).Count(&count)
		isFavorited = count > 0
		count = 0
		h.db.Model(&models.ShoppingCartEntry{}).
			Where("user_id = ? AND recipe_id = ?", userID, recipe.ID).Count(&count)
		isInCart = count > 0
	}

	return RecipeResponse{
		ID: recipe.ID,
		Author: AuthorResponse{
			ID:        recipe.Author.ID,
			Username:  recipe.Author.Username,
			FirstName: recipe.Author.FirstName,
			LastName:  recipe.Author.LastName,
		},
		Name:             recipe.Name,
		Image:            recipe.Image,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
		Tags:             tags,
		Ingredients:      lines,
		IsFavorited:      isFavorited,
		IsInShoppingCart: isInCart,
		CreatedAt:        recipe.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// defaultPageSize reads the configured page size, falling back to 20
func defaultPageSize() int {
	if v := os.Getenv("LADLE_PAGE_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return 20
}

// pageParams parses page/limit query parameters
func pageParams(c *gin.Context) (limit, offset int) {
	limit = defaultPageSize()
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

	return limit, (page - 1) * limit
}

// filteredQuery applies the recipe list filters from the request.
// The user-scoped filters are ignored for anonymous callers.
func (h *Handler) filteredQuery(c *gin.Context, userID uint) *gorm.DB {
	query := h.db.Model(&models.Recipe{})

	if author := c.Query("author"); author != "" {
		query = query.Where("recipes.author_id = ?", author)
	}

	if slugs := c.QueryArray("tags"); len(slugs) > 0 {
		tagged := h.db.Model(&models.Tag{}).
			Select("recipe_tags.recipe_id").
			Joins("JOIN recipe_tags ON recipe_tags.tag_id = tags.id").
			Where("tags.slug IN ?", slugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}

	if userID == 0 {
		return query
	}

	if c.Query("is_favorited") == "1" {
		favorited := h.db.Model(&models.FavoriteRecipe{}).
			Select("recipe_id").Where("user_id = ?", userID)
		query = query.Where("recipes.id IN (?)", favorited)
	}

	if c.Query("is_in_shopping_cart") == "1" {
		inCart := h.db.Model(&models.ShoppingCartEntry{}).
			Select("recipe_id").Where("user_id = ?", userID)
		query = query.Where("recipes.id IN (?)", inCart)
	}

	return query
}

// List returns a paginated, filtered page of recipes
// @Summary List recipes
// @Description Get recipes with optional author, tag, favorite and shopping-cart filters
// @Tags recipes
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param author query int false "Filter by author ID"
// @Param tags query []string false "Filter by tag slug (repeatable, OR-matched)"
// @Param is_favorited query string false "Pass 1 to restrict to the caller's favorites"
// @Param is_in_shopping_cart query string false "Pass 1 to restrict to the caller's cart"
// @Success 200 {object} RecipeListResponse
// @Router /recipes [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var total int64
	if err := h.filteredQuery(c, userID).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}

	limit, offset := pageParams(c)

	var results []models.Recipe
	err := h.filteredQuery(c, userID).
		Preload("Author").
		Preload("Tags").
		Preload("IngredientLines.Ingredient").
		Order("recipes.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}

	responses := make([]RecipeResponse, len(results))
	for i, recipe := range results {
		responses[i] = h.recipeToResponse(recipe, userID)
	}

	c.JSON(http.StatusOK, RecipeListResponse{Count: total, Results: responses})
}

// Get returns a single recipe by ID
// @Summary Get a recipe
// @Description Get a single recipe with its tags and ingredient lines
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} RecipeResponse
// @Failure 404 {object} map[string]string "Recipe not found"
// @Router /recipes/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}

	var recipe models.Recipe
	err = h.db.Preload("Author").
		Preload("Tags").
		Preload("IngredientLines.Ingredient").
		First(&recipe, id).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	c.JSON(http.StatusOK, h.recipeToResponse(recipe, userID))
}

// Create creates a new recipe with its tags and ingredient lines.
// Payload validation and persistence run inside one transaction so the
// catalog rows resolved by the validator cannot vanish before the write.
// @Summary Create a recipe
// @Description Create a recipe with tags and ingredient amounts
// @Tags recipes
// @Accept json
// @Produce json
// @Param request body CreateRecipeRequest true "Recipe details"
// @Success 201 {object} RecipeResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /recipes [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe := models.Recipe{
		AuthorID:    userID,
		Name:        req.Name,
		Image:       req.Image,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		payload, err := ValidatePayload(tx, req.Tags, req.Ingredients)
		if err != nil {
			return err
		}

		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Replace(payload.Tags); err != nil {
			return err
		}

		lines := make([]models.RecipeIngredient, 0, len(payload.Ingredients))
		for _, ia := range payload.Ingredients {
			lines = append(lines, models.RecipeIngredient{
				RecipeID:     recipe.ID,
				IngredientID: ia.Ingredient.ID,
				Amount:       ia.Amount,
			})
		}
		return tx.Create(&lines).Error
	})
	if err != nil {
		if IsPayloadError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create recipe"})
		}
		return
	}

	var created models.Recipe
	if err := h.db.Preload("Author").Preload("Tags").Preload("IngredientLines.Ingredient").
		First(&created, recipe.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipe"})
		return
	}

	c.JSON(http.StatusCreated, h.recipeToResponse(created, userID))
}

// canModify reports whether the caller may change the recipe
func canModify(c *gin.Context, recipe models.Recipe) bool {
	userID, ok := auth.GetUserID(c)
	if !ok {
		return false
	}
	return recipe.AuthorID == userID || auth.IsAdmin(c)
}

// Update applies a partial update to a recipe. When tags or ingredients
// are submitted they are re-validated as a pair and replace the existing
// associations wholesale.
// @Summary Update a recipe
// @Description Update a recipe; only the author or an admin may do this
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param request body UpdateRecipeRequest true "Updated fields"
// @Success 200 {object} RecipeResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Not the author"
// @Failure 404 {object} map[string]string "Recipe not found"
// @Security BearerAuth
// @Router /recipes/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}

	var recipe models.Recipe
	if err := h.db.First(&recipe, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	if !canModify(c, recipe) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author may modify this recipe"})
		return
	}

	var req UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		recipe.Name = *req.Name
	}
	if req.Image != nil {
		recipe.Image = *req.Image
	}
	if req.Text != nil {
		recipe.Text = *req.Text
	}
	if req.CookingTime != nil {
		if *req.CookingTime < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cooking time must be at least 1"})
			return
		}
		recipe.CookingTime = *req.CookingTime
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if req.Tags != nil || req.Ingredients != nil {
			var tagIDs []FlexibleID
			if req.Tags != nil {
				tagIDs = *req.Tags
			}
			var rawIngredients []RawIngredient
			if req.Ingredients != nil {
				rawIngredients = *req.Ingredients
			}

			payload, err := ValidatePayload(tx, tagIDs, rawIngredients)
			if err != nil {
				return err
			}

			if err := tx.Model(&recipe).Association("Tags").Replace(payload.Tags); err != nil {
				return err
			}
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
				return err
			}
			lines := make([]models.RecipeIngredient, 0, len(payload.Ingredients))
			for _, ia := range payload.Ingredients {
				lines = append(lines, models.RecipeIngredient{
					RecipeID:     recipe.ID,
					IngredientID: ia.Ingredient.ID,
					Amount:       ia.Amount,
				})
			}
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}

		return tx.Save(&recipe).Error
	})
	if err != nil {
		if IsPayloadError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update recipe"})
		}
		return
	}

	var updated models.Recipe
	if err := h.db.Preload("Author").Preload("Tags").Preload("IngredientLines.Ingredient").
		First(&updated, recipe.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipe"})
		return
	}

	c.JSON(http.StatusOK, h.recipeToResponse(updated, userID))
}

// Delete deletes a recipe together with its ingredient lines, favorites
// and shopping-cart entries
// @Summary Delete a recipe
// @Description Delete a recipe; only the author or an admin may do this
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} map[string]string "Recipe deleted"
// @Failure 403 {object} map[string]string "Not the author"
// @Failure 404 {object} map[string]string "Recipe not found"
// @Security BearerAuth
// @Router /recipes/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}

	var recipe models.Recipe
	if err := h.db.First(&recipe, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	if !canModify(c, recipe) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author may delete this recipe"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.FavoriteRecipe{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.ShoppingCartEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete recipe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted"})
}

// RegisterRoutes registers the public read routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/recipes", h.List)
	rg.GET("/recipes/:id", h.Get)
}

// RegisterProtectedRoutes registers the write and relation-toggle routes
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/recipes", h.Create)
	rg.PATCH("/recipes/:id", h.Update)
	rg.DELETE("/recipes/:id", h.Delete)

	rg.POST("/recipes/:id/favorite", h.AddFavorite)
	rg.DELETE("/recipes/:id/favorite", h.RemoveFavorite)
	rg.POST("/recipes/:id/shopping_cart", h.AddToCart)
	rg.DELETE("/recipes/:id/shopping_cart", h.RemoveFromCart)
}
