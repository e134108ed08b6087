package usecase

import (
	"log"
	"strings"

	"github.com/foodguard/backend/internal/domain"
)

// SafetyMatcherConfig holds configuration for the safety matcher
type SafetyMatcherConfig struct {
	EnableDebugLogging bool
}

// SafetyMatcher compares a product's ingredient text against a sensitivity profile.
//
// Matching is a plain case-insensitive substring check: no tokenization,
// stemming or word boundaries. "nut" matches "coconut", and "peanuts" does
// not match "peanut oil".
type SafetyMatcher struct {
	enableDebugLogging bool
}

// NewSafetyMatcher creates a new safety matcher
func NewSafetyMatcher(config SafetyMatcherConfig) *SafetyMatcher {
	return &SafetyMatcher{enableDebugLogging: config.EnableDebugLogging}
}

// Match checks every declared term against the product's ingredients.
// Conflicts are reported in declaration order. The result depends only on the inputs.
func (m *SafetyMatcher) Match(product *domain.ProductRecord, profile *domain.SensitivityProfile) (*domain.SafetyVerdict, error) {
	if product == nil || profile == nil {
		return nil, domain.ErrInvalidInput
	}

	ingredients := domain.LowerText(product.IngredientsText)

	allergies := findConflicts(ingredients, profile.Allergies)
	conditions := findConflicts(ingredients, profile.Conditions)

	if m.enableDebugLogging {
		log.Printf("[MATCH] %s: allergies=%v conditions=%v", product.Barcode, allergies, conditions)
	}

	return &domain.SafetyVerdict{
		IsSafe:                len(allergies) == 0 && len(conditions) == 0,
		ConflictingAllergies:  allergies,
		ConflictingConditions: conditions,
		ProductName:           product.Title,
		ProductBrand:          product.Brand,
		ProductIngredients:    product.IngredientsText,
	}, nil
}

// findConflicts returns the normalized terms contained in text, in the
// order given, each reported once. Never returns nil.
func findConflicts(text string, terms []string) []string {
	conflicts := []string{}
	if text == "" {
		return conflicts
	}
	seen := make(map[string]bool, len(terms))
	for _, declared := range terms {
		term := domain.NormalizeTerm(declared)
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		if strings.Contains(text, term) {
			conflicts = append(conflicts, term)
		}
	}
	return conflicts
}
