// Package normalizers provides field normalization functions for identity
// derivation and header canonicalization
package normalizers

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer is a function that normalizes a string value
type Normalizer func(string) string

// registry holds all registered normalizers
var registry = make(map[string]Normalizer)

func init() {
	Register("lowercase", Lowercase)
	Register("uppercase", Uppercase)
	Register("trim", Trim)
	Register("digits_only", DigitsOnly)
	Register("alphanumeric", Alphanumeric)
	Register("collapse_whitespace", CollapseWhitespace)
	Register("nmls", NormalizeMLSNumber)
	Register("nzip", NormalizeZipCode)
	Register("nstreet", NormalizeStreet)
	Register("ncity", NormalizeCity)
	Register("nstate", NormalizeState)
}

// Register adds a normalizer to the registry
func Register(name string, fn Normalizer) {
	registry[name] = fn
}

// Apply applies a named normalizer to a value. Unknown names pass the value
// through unchanged.
func Apply(value, normalizer string) string {
	fn, ok := registry[normalizer]
	if !ok {
		return value
	}
	return fn(value)
}

// ApplyChain applies multiple normalizers in sequence
func ApplyChain(value string, normalizers ...string) string {
	result := value
	for _, name := range normalizers {
		result = Apply(result, name)
	}
	return result
}

// Lowercase converts string to lowercase
func Lowercase(s string) string {
	return strings.ToLower(s)
}

// Uppercase converts string to uppercase
func Uppercase(s string) string {
	return strings.ToUpper(s)
}

// Trim removes leading and trailing whitespace
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// DigitsOnly keeps only digit characters
func DigitsOnly(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// Alphanumeric keeps only alphanumeric characters
func Alphanumeric(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

var spaceRe = regexp.MustCompile(`\s+`)

// CollapseWhitespace trims and collapses runs of whitespace to single spaces
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// diacriticFolder strips combining marks so "Doña Ana" and "Dona Ana"
// normalize to the same bytes
var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldDiacritics removes diacritic marks from a string. Input that fails to
// transform is returned unchanged.
func FoldDiacritics(s string) string {
	folded, _, err := transform.String(diacriticFolder, s)
	if err != nil {
		return s
	}
	return folded
}

// NormalizeMLSNumber normalizes an MLS number for identity comparison:
// uppercase alphanumerics only, so "MLS# 100-22" and "mls10022" compare equal.
func NormalizeMLSNumber(s string) string {
	return strings.ToUpper(Alphanumeric(s))
}

// NormalizeZipCode keeps the 5-digit base of a US zip code. Anything that
// does not yield at least 5 digits normalizes to ""
func NormalizeZipCode(s string) string {
	digits := DigitsOnly(s)
	if len(digits) >= 5 {
		return digits[:5]
	}
	return ""
}

// suffixAbbreviations maps spelled-out street words to their USPS forms so
// "123 Main Street" and "123 Main St" derive the same identity
var suffixAbbreviations = map[string]string{
	"street":    "st",
	"avenue":    "ave",
	"boulevard": "blvd",
	"drive":     "dr",
	"road":      "rd",
	"lane":      "ln",
	"court":     "ct",
	"circle":    "cir",
	"place":     "pl",
	"terrace":   "ter",
	"parkway":   "pkwy",
	"highway":   "hwy",
	"trail":     "trl",
	"square":    "sq",
	"north":     "n",
	"south":     "s",
	"east":      "e",
	"west":      "w",
	"apartment": "apt",
	"suite":     "ste",
	"unit":      "unit",
}

// NormalizeStreet normalizes a street line for identity comparison:
// lowercase, punctuation stripped, common words abbreviated, whitespace
// collapsed.
func NormalizeStreet(s string) string {
	s = strings.ToLower(strings.TrimSpace(FoldDiacritics(s)))
	if s == "" {
		return ""
	}

	var cleaned strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			cleaned.WriteRune(r)
		}
	}

	tokens := strings.Fields(cleaned.String())
	for i, tok := range tokens {
		if abbr, ok := suffixAbbreviations[tok]; ok {
			tokens[i] = abbr
		}
	}
	return strings.Join(tokens, " ")
}

// NormalizeCity normalizes a city name for identity comparison
func NormalizeCity(s string) string {
	return CollapseWhitespace(strings.ToLower(FoldDiacritics(s)))
}

// stateCodes maps spelled-out US state names to their two-letter codes
var stateCodes = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
	"florida": "FL", "georgia": "GA", "hawaii": "HI", "idaho": "ID",
	"illinois": "IL", "indiana": "IN", "iowa": "IA", "kansas": "KS",
	"kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD",
	"massachusetts": "MA", "michigan": "MI", "minnesota": "MN", "mississippi": "MS",
	"missouri": "MO", "montana": "MT", "nebraska": "NE", "nevada": "NV",
	"new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM", "new york": "NY",
	"north carolina": "NC", "north dakota": "ND", "ohio": "OH", "oklahoma": "OK",
	"oregon": "OR", "pennsylvania": "PA", "rhode island": "RI", "south carolina": "SC",
	"south dakota": "SD", "tennessee": "TN", "texas": "TX", "utah": "UT",
	"vermont": "VT", "virginia": "VA", "washington": "WA", "west virginia": "WV",
	"wisconsin": "WI", "wyoming": "WY", "district of columbia": "DC",
}

// NormalizeState normalizes a US state to its two-letter uppercase code.
// Unrecognized values are uppercased and trimmed as-is.
func NormalizeState(s string) string {
	trimmed := CollapseWhitespace(strings.ToLower(s))
	if code, ok := stateCodes[trimmed]; ok {
		return code
	}
	return strings.ToUpper(trimmed)
}
