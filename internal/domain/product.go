package domain

import "strings"

// Placeholders used when the product database omits a field
const (
	PlaceholderTitle       = "No product title found"
	PlaceholderBrand       = "Unknown brand"
	PlaceholderDescription = "No description available"
	PlaceholderCategory    = "Unknown category"
)

// Symbology identifies the barcode encoding standard of a decoded symbol
type Symbology string

const (
	SymbologyEAN13      Symbology = "EAN_13"
	SymbologyEAN8       Symbology = "EAN_8"
	SymbologyUPCA       Symbology = "UPC_A"
	SymbologyUPCE       Symbology = "UPC_E"
	SymbologyCode128    Symbology = "CODE_128"
	SymbologyCode39     Symbology = "CODE_39"
	SymbologyCode93     Symbology = "CODE_93"
	SymbologyCodabar    Symbology = "CODABAR"
	SymbologyITF        Symbology = "ITF"
	SymbologyQRCode     Symbology = "QR_CODE"
	SymbologyDataMatrix Symbology = "DATA_MATRIX"
	SymbologyPDF417     Symbology = "PDF_417"
	SymbologyAztec      Symbology = "AZTEC"
	SymbologyUnknown    Symbology = "UNKNOWN"
)

// DecodedSymbol is one barcode found in an image
type DecodedSymbol struct {
	Value     string    `json:"value"`
	Symbology Symbology `json:"symbology"`
}

// ProductRecord is the canonical product metadata resolved from a barcode.
// Every field is always a string; absent upstream values are replaced with placeholders.
type ProductRecord struct {
	Barcode         string `json:"barcode"`
	Title           string `json:"title"`
	Brand           string `json:"brand"`
	Description     string `json:"description"`
	IngredientsText string `json:"ingredientsText"`
	Category        string `json:"category"`
}

// ProductFields holds raw upstream values; nil means the field was absent.
type ProductFields struct {
	Title           *string
	Brand           *string
	Description     *string
	IngredientsText *string
	Category        *string
}

// NewProductRecord builds a ProductRecord, substituting placeholders for
// absent or blank fields. Missing ingredients become "".
func NewProductRecord(barcode string, f ProductFields) ProductRecord {
	return ProductRecord{
		Barcode:         barcode,
		Title:           valueOr(f.Title, PlaceholderTitle),
		Brand:           valueOr(f.Brand, PlaceholderBrand),
		Description:     valueOr(f.Description, PlaceholderDescription),
		IngredientsText: valueOr(f.IngredientsText, ""),
		Category:        valueOr(f.Category, PlaceholderCategory),
	}
}

func valueOr(v *string, placeholder string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return placeholder
	}
	return *v
}

// HasIngredients reports whether the database listed any ingredients
func (p ProductRecord) HasIngredients() bool {
	return strings.TrimSpace(p.IngredientsText) != ""
}
