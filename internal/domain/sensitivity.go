package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// SensitivityProfile is the normalized set of terms a user must avoid.
// Terms keep the order in which they were declared.
type SensitivityProfile struct {
	Allergies  []string `json:"allergies"`
	Conditions []string `json:"conditions"`
}

// NormalizeTerm trims surrounding whitespace, lower-cases and NFC-normalizes a term.
// NormalizeTerm(NormalizeTerm(s)) == NormalizeTerm(s).
func NormalizeTerm(s string) string {
	// cases.Caser is stateful, so one per call
	lower := cases.Lower(language.Und).String(strings.TrimSpace(s))
	return strings.TrimSpace(norm.NFC.String(lower))
}

// LowerText lower-cases free text the same way terms are normalized,
// so that substring checks compare like with like.
func LowerText(s string) string {
	return norm.NFC.String(cases.Lower(language.Und).String(s))
}

// ParseTerms splits comma-delimited declarations into normalized terms,
// dropping empty entries and later duplicates.
func ParseTerms(declared ...string) []string {
	terms := make([]string, 0, len(declared))
	seen := make(map[string]bool, len(declared))
	for _, entry := range declared {
		for _, piece := range strings.Split(entry, ",") {
			term := NormalizeTerm(piece)
			if term == "" || seen[term] {
				continue
			}
			seen[term] = true
			terms = append(terms, term)
		}
	}
	return terms
}

// NewSensitivityProfile derives a profile from raw declarations.
// Each entry may itself hold several comma-separated terms.
func NewSensitivityProfile(allergies, conditions []string) *SensitivityProfile {
	return &SensitivityProfile{
		Allergies:  ParseTerms(allergies...),
		Conditions: ParseTerms(conditions...),
	}
}

// IsEmpty reports whether the profile declares nothing
func (p *SensitivityProfile) IsEmpty() bool {
	return len(p.Allergies) == 0 && len(p.Conditions) == 0
}
