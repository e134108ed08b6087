package domain

// SafetyVerdict is the result of checking a product against a sensitivity profile
type SafetyVerdict struct {
	IsSafe                bool     `json:"isSafe"`
	ConflictingAllergies  []string `json:"conflictingAllergies"`
	ConflictingConditions []string `json:"conflictingConditions"`
	ProductName           string   `json:"productName"`
	ProductBrand          string   `json:"productBrand"`
	ProductIngredients    string   `json:"productIngredients"`
}
