// Package address decomposes free-text street addresses into number, name,
// and suffix. It is the fallback used by the record transformer when the
// street components were not supplied by direct field mapping.
package address

import (
	"regexp"
	"strings"
)

// ParsedAddress holds the decomposed street components. Unrecognized parts
// are returned as empty strings, never errors.
type ParsedAddress struct {
	StreetNumber string `json:"street_number"`
	StreetName   string `json:"street_name"`
	StreetSuffix string `json:"street_suffix"`
}

var leadingNumber = regexp.MustCompile(`^\d+[A-Za-z]?$`)

// streetSuffixes is the static USPS C1 suffix abbreviation set, plus the
// spelled-out forms brokers commonly use
var streetSuffixes = map[string]struct{}{
	"ALY": {}, "ALLEY": {},
	"AVE": {}, "AVENUE": {}, "AV": {},
	"BLVD": {}, "BOULEVARD": {},
	"BND": {}, "BEND": {},
	"CIR": {}, "CIRCLE": {},
	"CT": {}, "COURT": {},
	"CV": {}, "COVE": {},
	"CRES": {}, "CRESCENT": {},
	"XING": {}, "CROSSING": {},
	"DR": {}, "DRIVE": {},
	"EXPY": {}, "EXPRESSWAY": {},
	"FWY": {}, "FREEWAY": {},
	"GLN": {}, "GLEN": {},
	"GRN": {}, "GREEN": {},
	"HTS": {}, "HEIGHTS": {},
	"HWY": {}, "HIGHWAY": {},
	"HL": {}, "HILL": {}, "HLS": {}, "HILLS": {},
	"HOLW": {}, "HOLLOW": {},
	"JCT": {}, "JUNCTION": {},
	"LNDG": {}, "LANDING": {},
	"LN": {}, "LANE": {},
	"LOOP": {},
	"MNR": {}, "MANOR": {},
	"MDWS": {}, "MEADOWS": {},
	"PARK": {},
	"PKWY": {}, "PARKWAY": {},
	"PASS": {},
	"PATH": {},
	"PIKE": {},
	"PL": {}, "PLACE": {},
	"PLZ": {}, "PLAZA": {},
	"PT": {}, "POINT": {},
	"RDG": {}, "RIDGE": {},
	"RD": {}, "ROAD": {},
	"ROW": {},
	"RUN": {},
	"SQ": {}, "SQUARE": {},
	"ST": {}, "STREET": {}, "STR": {},
	"TER": {}, "TERRACE": {},
	"TRCE": {}, "TRACE": {},
	"TRL": {}, "TRAIL": {},
	"TPKE": {}, "TURNPIKE": {},
	"VLY": {}, "VALLEY": {},
	"VW": {}, "VIEW": {},
	"WALK": {},
	"WAY": {},
}

// Parse splits a free-text address into street number, name, and suffix.
// The first token is consumed as the number when it leads with digits; the
// last token is consumed as the suffix when it is in the USPS suffix set
// (matched and returned uppercased). Everything left is the street name.
// Empty input yields all empty components.
func Parse(input string) ParsedAddress {
	var parsed ParsedAddress

	tokens := strings.Fields(strings.TrimSpace(input))
	if len(tokens) == 0 {
		return parsed
	}

	if leadingNumber.MatchString(tokens[0]) {
		parsed.StreetNumber = tokens[0]
		tokens = tokens[1:]
	}

	if len(tokens) > 0 {
		last := strings.ToUpper(strings.TrimRight(tokens[len(tokens)-1], ".,"))
		if _, ok := streetSuffixes[last]; ok {
			parsed.StreetSuffix = last
			tokens = tokens[:len(tokens)-1]
		}
	}

	parsed.StreetName = strings.Join(tokens, " ")
	return parsed
}

// IsSuffix reports whether the token (in any case) is a recognized street suffix
func IsSuffix(token string) bool {
	_, ok := streetSuffixes[strings.ToUpper(strings.TrimSpace(token))]
	return ok
}
