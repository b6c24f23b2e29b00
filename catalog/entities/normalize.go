package entities

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Accent folding so that "Aspégic" and "aspegic" key identically. The source
// registries mix accented and plain spellings for the same products.
var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldAccents(s string) string {
	folded, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return folded
}

// NormalizeName produces the case- and accent-insensitive key used for all
// name comparisons.
func NormalizeName(s string) string {
	return strings.ToLower(foldAccents(strings.TrimSpace(s)))
}

// NormalizeIngredient produces the canonical upper-case ingredient
// identifier. Ingredient equality after this normalization is the
// equivalence relation that defines analogues.
func NormalizeIngredient(s string) string {
	return strings.ToUpper(foldAccents(strings.TrimSpace(s)))
}
