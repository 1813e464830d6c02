package shopping

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/okarpova/ladle/pkg/ladle/auth"
	"github.com/okarpova/ladle/pkg/ladle/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	models.AutoMigrate(db)
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email, username string) models.User {
	hash, _ := auth.HashPassword("password123")
	user := models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func createIngredient(t *testing.T, db *gorm.DB, name, unit string) models.Ingredient {
	ing := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(&ing).Error; err != nil {
		t.Fatalf("Failed to create ingredient: %v", err)
	}
	return ing
}

func createRecipeWithLine(t *testing.T, db *gorm.DB, author models.User, name string, ing models.Ingredient, amount uint) models.Recipe {
	recipe := models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        "Cook it",
		CookingTime: 10,
	}
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("Failed to create recipe: %v", err)
	}
	line := models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: ing.ID, Amount: amount}
	if err := db.Create(&line).Error; err != nil {
		t.Fatalf("Failed to create ingredient line: %v", err)
	}
	return recipe
}

func addToCart(t *testing.T, db *gorm.DB, user models.User, recipe models.Recipe) {
	entry := models.ShoppingCartEntry{UserID: user.ID, RecipeID: recipe.ID}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("Failed to add recipe to cart: %v", err)
	}
}

func TestAggregateSumsAcrossRecipes(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "test@example.com", "testuser")
	flour := createIngredient(t, db, "flour", "g")

	pancakes := createRecipeWithLine(t, db, user, "Pancakes", flour, 200)
	bread := createRecipeWithLine(t, db, user, "Bread", flour, 300)
	addToCart(t, db, user, pancakes)
	addToCart(t, db, user, bread)

	items, err := Aggregate(db, user.ID)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("Expected 1 merged item, got %d", len(items))
	}
	if items[0].Name != "flour" || items[0].MeasurementUnit != "g" {
		t.Errorf("Expected flour (g), got %+v", items[0])
	}
	if items[0].TotalAmount != 500 {
		t.Errorf("Expected total 500, got %d", items[0].TotalAmount)
	}
}

func TestAggregateMergesDuplicateCatalogRows(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "test@example.com", "testuser")

	// two distinct catalog rows sharing name and unit merge in the report
	flourA := createIngredient(t, db, "flour", "g")
	flourB := createIngredient(t, db, "flour", "g")

	pancakes := createRecipeWithLine(t, db, user, "Pancakes", flourA, 200)
	bread := createRecipeWithLine(t, db, user, "Bread", flourB, 100)
	addToCart(t, db, user, pancakes)
	addToCart(t, db, user, bread)

	items, err := Aggregate(db, user.ID)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("Expected 1 merged item, got %d", len(items))
	}
	if items[0].TotalAmount != 300 {
		t.Errorf("Expected total 300, got %d", items[0].TotalAmount)
	}
}

func TestAggregateKeepsUnitsSeparate(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "test@example.com", "testuser")
	milkML := createIngredient(t, db, "milk", "ml")
	milkCup := createIngredient(t, db, "milk", "cup")

	pancakes := createRecipeWithLine(t, db, user, "Pancakes", milkML, 250)
	porridge := createRecipeWithLine(t, db, user, "Porridge", milkCup, 1)
	addToCart(t, db, user, pancakes)
	addToCart(t, db, user, porridge)

	items, err := Aggregate(db, user.ID)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items for different units, got %d", len(items))
	}
}

func TestAggregateScopedToUser(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice@example.com", "alice")
	bob := createTestUser(t, db, "bob@example.com", "bob")
	flour := createIngredient(t, db, "flour", "g")

	pancakes := createRecipeWithLine(t, db, alice, "Pancakes", flour, 200)
	addToCart(t, db, bob, pancakes)

	items, err := Aggregate(db, alice.ID)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected empty list for a user with an empty cart, got %d items", len(items))
	}

	items, err = Aggregate(db, bob.ID)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("Expected 1 item for bob, got %d", len(items))
	}
}

func TestAggregateIgnoresDeletedRecipes(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "test@example.com", "testuser")
	flour := createIngredient(t, db, "flour", "g")

	pancakes := createRecipeWithLine(t, db, user, "Pancakes", flour, 200)
	addToCart(t, db, user, pancakes)
	db.Delete(&pancakes)

	items, err := Aggregate(db, user.ID)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected deleted recipe to be excluded, got %d items", len(items))
	}
}

func TestRender(t *testing.T) {
	items := []ShoppingItem{
		{Name: "flour", MeasurementUnit: "g", TotalAmount: 500},
		{Name: "milk", MeasurementUnit: "ml", TotalAmount: 250},
	}

	report := Render(items)
	lines := strings.Split(report, "\n")

	if lines[0] != "Your shopping list:" {
		t.Errorf("Expected header line, got %q", lines[0])
	}
	if lines[1] != "flour (g) - 500" {
		t.Errorf("Expected 'flour (g) - 500', got %q", lines[1])
	}
	if lines[2] != "milk (ml) - 250" {
		t.Errorf("Expected 'milk (ml) - 250', got %q", lines[2])
	}
	if lines[len(lines)-1] != "Happy shopping! Your Ladle." {
		t.Errorf("Expected footer line, got %q", lines[len(lines)-1])
	}
}

func TestRenderEmpty(t *testing.T) {
	report := Render(nil)
	lines := strings.Split(report, "\n")

	if len(lines) != 3 {
		t.Fatalf("Expected header, blank line and footer, got %d lines: %q", len(lines), report)
	}
	if lines[0] != "Your shopping list:" || lines[2] != "Happy shopping! Your Ladle." {
		t.Errorf("Unexpected empty report: %q", report)
	}
}

func TestDownload(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "test@example.com", "testuser")
	flour := createIngredient(t, db, "flour", "g")
	pancakes := createRecipeWithLine(t, db, user, "Pancakes", flour, 200)
	addToCart(t, db, user, pancakes)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")
	api.Use(auth.AuthMiddleware())
	NewHandler(db).RegisterRoutes(api)

	token, _ := auth.GenerateToken(user.ID, user.Email, string(user.Role))
	req, _ := http.NewRequest("GET", "/api/shopping_cart/download", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Expected text/plain content type, got %s", ct)
	}
	if cd := resp.Header().Get("Content-Disposition"); !strings.Contains(cd, "shopping_list.txt") {
		t.Errorf("Expected attachment disposition, got %s", cd)
	}
	if !strings.Contains(resp.Body.String(), "flour (g) - 200") {
		t.Errorf("Expected shopping line in body, got %q", resp.Body.String())
	}
}
