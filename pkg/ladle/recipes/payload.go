package recipes

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/okarpova/ladle/pkg/ladle/models"
	"gorm.io/gorm"
)

// Validation errors for recipe payloads. All of these are client-input
// errors; anything else returned by ValidatePayload is a storage fault.
var (
	ErrMissingFields       = errors.New("tags and ingredients must both be provided")
	ErrInvalidAmountFormat = errors.New("ingredient amount must be an integer or a string of digits")
	ErrInvalidAmountValue  = errors.New("ingredient amount must be greater than zero")
	ErrNoValidIngredients  = errors.New("no valid ingredients provided")
	ErrUnknownIngredient   = errors.New("unknown ingredient")
	ErrUnknownTag          = errors.New("unknown tag")
)

// FlexibleID is a catalog identifier that may arrive as a JSON number
// or a numeric string.
type FlexibleID uint

func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return errors.New("invalid identifier: " + s)
	}
	*f = FlexibleID(v)
	return nil
}

// RawIngredient is one submitted ingredient reference. Amount is kept
// raw so format errors are reported as validation failures rather than
// binding errors.
type RawIngredient struct {
	ID     FlexibleID      `json:"id"`
	Amount json.RawMessage `json:"amount"`
}

// IngredientAmount pairs a resolved catalog ingredient with its
// validated amount.
type IngredientAmount struct {
	Ingredient models.Ingredient
	Amount     uint
}

// ValidatedPayload is the output of ValidatePayload: fully resolved tags
// and ingredient-amount pairs, safe to persist.
type ValidatedPayload struct {
	Tags        []models.Tag
	Ingredients map[uint]IngredientAmount
}

// parseAmount accepts a JSON integer or a string containing only digits.
func parseAmount(raw json.RawMessage) (int64, error) {
	s := bytes.TrimSpace(raw)
	if len(s) == 0 || bytes.Equal(s, []byte("null")) {
		return 0, ErrInvalidAmountFormat
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(s, &str); err != nil {
			return 0, ErrInvalidAmountFormat
		}
		if str == "" {
			return 0, ErrInvalidAmountFormat
		}
		for _, r := range str {
			if r < '0' || r > '9' {
				return 0, ErrInvalidAmountFormat
			}
		}
		n, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return 0, ErrInvalidAmountFormat
		}
		return n, nil
	}
	var n int64
	if err := json.Unmarshal(s, &n); err != nil {
		return 0, ErrInvalidAmountFormat
	}
	return n, nil
}

// ValidatePayload normalizes and validates the tags and ingredients of a
// submitted recipe, resolving identifiers against the catalog.
//
// Structural checks run before existence checks. If the same ingredient
// id appears more than once, the last occurrence's amount wins. The
// function performs no writes; existence is only guaranteed as of the
// batch lookups.
func ValidatePayload(db *gorm.DB, tagIDs []FlexibleID, rawIngredients []RawIngredient) (*ValidatedPayload, error) {
	if len(tagIDs) == 0 || len(rawIngredients) == 0 {
		return nil, ErrMissingFields
	}

	amounts := make(map[uint]int64, len(rawIngredients))
	for _, ing := range rawIngredients {
		n, err := parseAmount(ing.Amount)
		if err != nil {
			return nil, err
		}
		amounts[uint(ing.ID)] = n
	}

	for _, n := range amounts {
		if n <= 0 {
			return nil, ErrInvalidAmountValue
		}
	}

	if len(amounts) == 0 {
		return nil, ErrNoValidIngredients
	}

	ingredientIDs := make([]uint, 0, len(amounts))
	for id := range amounts {
		ingredientIDs = append(ingredientIDs, id)
	}

	var catalogIngredients []models.Ingredient
	if err := db.Where("id IN ?", ingredientIDs).Find(&catalogIngredients).Error; err != nil {
		return nil, err
	}
	if len(catalogIngredients) != len(ingredientIDs) {
		return nil, ErrUnknownIngredient
	}

	ids := make([]uint, len(tagIDs))
	for i, id := range tagIDs {
		ids[i] = uint(id)
	}
	var catalogTags []models.Tag
	if err := db.Where("id IN ?", ids).Find(&catalogTags).Error; err != nil {
		return nil, err
	}
	if len(catalogTags) != len(tagIDs) {
		return nil, ErrUnknownTag
	}

	resolved := make(map[uint]IngredientAmount, len(catalogIngredients))
	for _, ing := range catalogIngredients {
		resolved[ing.ID] = IngredientAmount{Ingredient: ing, Amount: uint(amounts[ing.ID])}
	}

	return &ValidatedPayload{Tags: catalogTags, Ingredients: resolved}, nil
}

// IsPayloadError reports whether err is one of the recipe payload
// validation errors (as opposed to a storage fault).
func IsPayloadError(err error) bool {
	for _, e := range []error{
		ErrMissingFields,
		ErrInvalidAmountFormat,
		ErrInvalidAmountValue,
		ErrNoValidIngredients,
		ErrUnknownIngredient,
		ErrUnknownTag,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
