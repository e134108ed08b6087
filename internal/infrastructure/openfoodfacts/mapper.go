package openfoodfacts

import (
	"errors"

	"github.com/foodguard/backend/internal/domain"
	"github.com/tidwall/gjson"
)

// OpenFoodFacts product fields used to build a ProductRecord
const (
	FieldTitle       = "product_name"
	FieldBrand       = "brands"
	FieldDescription = "generic_name"
	FieldIngredients = "ingredients_text"
	FieldCategory    = "categories"
)

var errInvalidJSON = errors.New("response is not valid JSON")

// MapToProductRecord converts a v0 product response body into a ProductRecord.
// It returns domain.ErrProductNotFound when the body reports status 0 or
// carries no product entry.
func MapToProductRecord(barcode string, body []byte) (*domain.ProductRecord, error) {
	if !gjson.ValidBytes(body) {
		return nil, &domain.ResolverError{Barcode: barcode, Err: errInvalidJSON}
	}

	doc := gjson.ParseBytes(body)
	if status := doc.Get("status"); status.Exists() && status.Type == gjson.Number && status.Int() == 0 {
		return nil, domain.ErrProductNotFound
	}
	product := doc.Get("product")
	if !product.IsObject() || len(product.Map()) == 0 {
		return nil, domain.ErrProductNotFound
	}

	record := domain.NewProductRecord(barcode, domain.ProductFields{
		Title:           stringField(product, FieldTitle),
		Brand:           stringField(product, FieldBrand),
		Description:     stringField(product, FieldDescription),
		IngredientsText: stringField(product, FieldIngredients),
		Category:        stringField(product, FieldCategory),
	})
	return &record, nil
}

// stringField returns nil for absent or null fields. Numbers and booleans are
// rendered as text; arrays and objects are treated as absent.
func stringField(product gjson.Result, name string) *string {
	v := product.Get(name)
	switch v.Type {
	case gjson.String, gjson.Number, gjson.True, gjson.False:
		s := v.String()
		return &s
	default:
		return nil
	}
}
