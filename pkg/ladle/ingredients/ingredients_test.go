package ingredients

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
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

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db)
	api := r.Group("/api")
	handler.RegisterRoutes(api)
	return r
}

func seedIngredients(db *gorm.DB) {
	db.Create(&models.Ingredient{Name: "flour", MeasurementUnit: "g"})
	db.Create(&models.Ingredient{Name: "flaxseed", MeasurementUnit: "g"})
	db.Create(&models.Ingredient{Name: "milk", MeasurementUnit: "ml"})
}

func TestListIngredients(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	seedIngredients(db)

	req, _ := http.NewRequest("GET", "/api/ingredients", nil)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var ings []IngredientResponse
	json.Unmarshal(resp.Body.Bytes(), &ings)

	if len(ings) != 3 {
		t.Fatalf("Expected 3 ingredients, got %d", len(ings))
	}
	if ings[0].Name != "flaxseed" {
		t.Errorf("Expected name-ordered list starting with 'flaxseed', got %s", ings[0].Name)
	}
}

func TestListIngredientsPrefixFilter(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	seedIngredients(db)

	req, _ := http.NewRequest("GET", "/api/ingredients?name=fl", nil)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	var ings []IngredientResponse
	json.Unmarshal(resp.Body.Bytes(), &ings)

	if len(ings) != 2 {
		t.Fatalf("Expected 2 matches for prefix 'fl', got %d", len(ings))
	}
	for _, ing := range ings {
		if ing.Name != "flour" && ing.Name != "flaxseed" {
			t.Errorf("Unexpected match: %s", ing.Name)
		}
	}
}

func TestListIngredientsPrefixCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	db.Create(&models.Ingredient{Name: "Flour", MeasurementUnit: "g"})

	req, _ := http.NewRequest("GET", "/api/ingredients?name=fl", nil)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	var ings []IngredientResponse
	json.Unmarshal(resp.Body.Bytes(), &ings)

	if len(ings) != 1 {
		t.Fatalf("Expected lowercase prefix to match 'Flour', got %d results", len(ings))
	}
	if ings[0].Name != "Flour" {
		t.Errorf("Expected 'Flour', got %s", ings[0].Name)
	}
}

func TestListIngredientsPrefixCaseInsensitiveNonASCII(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	db.Create(&models.Ingredient{Name: "Мука", MeasurementUnit: "г"})
	db.Create(&models.Ingredient{Name: "Молоко", MeasurementUnit: "мл"})

	req, _ := http.NewRequest("GET", "/api/ingredients?name="+url.QueryEscape("мук"), nil)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	var ings []IngredientResponse
	json.Unmarshal(resp.Body.Bytes(), &ings)

	if len(ings) != 1 {
		t.Fatalf("Expected Cyrillic prefix to match regardless of case, got %d results", len(ings))
	}
	if ings[0].Name != "Мука" {
		t.Errorf("Expected 'Мука', got %s", ings[0].Name)
	}
}

func TestListIngredientsPrefixNoMatch(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	seedIngredients(db)

	req, _ := http.NewRequest("GET", "/api/ingredients?name=zz", nil)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	var ings []IngredientResponse
	json.Unmarshal(resp.Body.Bytes(), &ings)

	if len(ings) != 0 {
		t.Errorf("Expected no matches, got %d", len(ings))
	}
}

func TestGetIngredient(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	ing := models.Ingredient{Name: "flour", MeasurementUnit: "g"}
	db.Create(&ing)

	req, _ := http.NewRequest("GET", fmt.Sprintf("/api/ingredients/%d", ing.ID), nil)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var response IngredientResponse
	json.Unmarshal(resp.Body.Bytes(), &response)

	if response.Name != "flour" || response.MeasurementUnit != "g" {
		t.Errorf("Unexpected ingredient response: %+v", response)
	}
}

func TestGetIngredientNotFound(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	req, _ := http.NewRequest("GET", "/api/ingredients/999", nil)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}
