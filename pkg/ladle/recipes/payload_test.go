package recipes

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okarpova/ladle/pkg/ladle/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupPayloadDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	models.AutoMigrate(db)
	return db
}

func seedCatalog(t *testing.T, db *gorm.DB) (models.Tag, models.Tag, models.Ingredient) {
	tag1 := models.Tag{Name: "Breakfast", Slug: "breakfast", Color: "#00FF00"}
	tag2 := models.Tag{Name: "Dinner", Slug: "dinner", Color: "#0000FF"}
	if err := db.Create(&tag1).Error; err != nil {
		t.Fatalf("Failed to create tag: %v", err)
	}
	if err := db.Create(&tag2).Error; err != nil {
		t.Fatalf("Failed to create tag: %v", err)
	}
	flour := models.Ingredient{Name: "flour", MeasurementUnit: "g"}
	if err := db.Create(&flour).Error; err != nil {
		t.Fatalf("Failed to create ingredient: %v", err)
	}
	return tag1, tag2, flour
}

func rawIng(id uint, amount string) RawIngredient {
	return RawIngredient{ID: FlexibleID(id), Amount: json.RawMessage(amount)}
}

func TestValidatePayloadSuccess(t *testing.T) {
	db := setupPayloadDB(t)
	tag1, tag2, flour := seedCatalog(t, db)

	payload, err := ValidatePayload(db,
		[]FlexibleID{FlexibleID(tag1.ID), FlexibleID(tag2.ID)},
		[]RawIngredient{rawIng(flour.ID, "3")},
	)
	if err != nil {
		t.Fatalf("ValidatePayload failed: %v", err)
	}

	if len(payload.Tags) != 2 {
		t.Errorf("Expected 2 resolved tags, got %d", len(payload.Tags))
	}
	resolved, ok := payload.Ingredients[flour.ID]
	if !ok {
		t.Fatalf("Expected ingredient %d in payload", flour.ID)
	}
	if resolved.Amount != 3 {
		t.Errorf("Expected amount 3, got %d", resolved.Amount)
	}
	if resolved.Ingredient.Name != "flour" || resolved.Ingredient.MeasurementUnit != "g" {
		t.Errorf("Expected resolved flour (g), got %+v", resolved.Ingredient)
	}
}

func TestValidatePayloadLastWriteWins(t *testing.T) {
	db := setupPayloadDB(t)
	tag1, _, flour := seedCatalog(t, db)

	payload, err := ValidatePayload(db,
		[]FlexibleID{FlexibleID(tag1.ID)},
		[]RawIngredient{
			rawIng(flour.ID, `"3"`),
			rawIng(flour.ID, `"7"`),
		},
	)
	if err != nil {
		t.Fatalf("ValidatePayload failed: %v", err)
	}

	if len(payload.Ingredients) != 1 {
		t.Fatalf("Expected 1 resolved ingredient, got %d", len(payload.Ingredients))
	}
	if got := payload.Ingredients[flour.ID].Amount; got != 7 {
		t.Errorf("Expected last occurrence's amount 7, got %d", got)
	}
}

func TestValidatePayloadLastWriteWinsOverridesBadValue(t *testing.T) {
	db := setupPayloadDB(t)
	tag1, _, flour := seedCatalog(t, db)

	// Only the resolved (last) amount is value-checked
	payload, err := ValidatePayload(db,
		[]FlexibleID{FlexibleID(tag1.ID)},
		[]RawIngredient{
			rawIng(flour.ID, "0"),
			rawIng(flour.ID, "7"),
		},
	)
	if err != nil {
		t.Fatalf("ValidatePayload failed: %v", err)
	}
	if got := payload.Ingredients[flour.ID].Amount; got != 7 {
		t.Errorf("Expected amount 7, got %d", got)
	}
}

func TestValidatePayloadMissingFields(t *testing.T) {
	db := setupPayloadDB(t)
	tag1, _, flour := seedCatalog(t, db)

	_, err := ValidatePayload(db, nil, []RawIngredient{rawIng(flour.ID, "3")})
	if !errors.Is(err, ErrMissingFields) {
		t.Errorf("Expected ErrMissingFields for empty tags, got %v", err)
	}

	_, err = ValidatePayload(db, []FlexibleID{FlexibleID(tag1.ID)}, nil)
	if !errors.Is(err, ErrMissingFields) {
		t.Errorf("Expected ErrMissingFields for empty ingredients, got %v", err)
	}
}

func TestValidatePayloadAmountFormat(t *testing.T) {
	db := setupPayloadDB(t)
	tag1, _, flour := seedCatalog(t, db)

	for _, amount := range []string{`"abc"`, `3.5`, `""`, `"-3"`, `true`, `null`} {
		_, err := ValidatePayload(db,
			[]FlexibleID{FlexibleID(tag1.ID)},
			[]RawIngredient{rawIng(flour.ID, amount)},
		)
		if !errors.Is(err, ErrInvalidAmountFormat) {
			t.Errorf("Amount %s: expected ErrInvalidAmountFormat, got %v", amount, err)
		}
	}
}

func TestValidatePayloadAmountValue(t *testing.T) {
	db := setupPayloadDB(t)
	tag1, _, flour := seedCatalog(t, db)

	for _, amount := range []string{"0", "-5", `"0"`} {
		_, err := ValidatePayload(db,
			[]FlexibleID{FlexibleID(tag1.ID)},
			[]RawIngredient{rawIng(flour.ID, amount)},
		)
		if !errors.Is(err, ErrInvalidAmountValue) {
			t.Errorf("Amount %s: expected ErrInvalidAmountValue, got %v", amount, err)
		}
	}
}

func TestValidatePayloadUnknownIngredient(t *testing.T) {
	db := setupPayloadDB(t)
	tag1, _, flour := seedCatalog(t, db)

	// One known and one unknown id still fails
	_, err := ValidatePayload(db,
		[]FlexibleID{FlexibleID(tag1.ID)},
		[]RawIngredient{
			rawIng(flour.ID, "3"),
			rawIng(9999, "2"),
		},
	)
	if !errors.Is(err, ErrUnknownIngredient) {
		t.Errorf("Expected ErrUnknownIngredient, got %v", err)
	}
}

func TestValidatePayloadUnknownTag(t *testing.T) {
	db := setupPayloadDB(t)
	tag1, _, flour := seedCatalog(t, db)

	_, err := ValidatePayload(db,
		[]FlexibleID{FlexibleID(tag1.ID), FlexibleID(9999)},
		[]RawIngredient{rawIng(flour.ID, "3")},
	)
	if !errors.Is(err, ErrUnknownTag) {
		t.Errorf("Expected ErrUnknownTag, got %v", err)
	}
}

func TestFlexibleIDUnmarshal(t *testing.T) {
	var ids []FlexibleID
	if err := json.Unmarshal([]byte(`[1, "2", "30"]`), &ids); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 30 {
		t.Errorf("Expected [1 2 30], got %v", ids)
	}

	if err := json.Unmarshal([]byte(`["x"]`), &ids); err == nil {
		t.Error("Expected error for non-numeric identifier")
	}
}
