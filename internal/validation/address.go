package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

var usStates = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {}, "DE": {}, "DC": {},
	"FL": {}, "GA": {}, "HI": {}, "ID": {}, "IL": {}, "IN": {}, "IA": {}, "KS": {}, "KY": {},
	"LA": {}, "ME": {}, "MD": {}, "MA": {}, "MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {},
	"NE": {}, "NV": {}, "NH": {}, "NJ": {}, "NM": {}, "NY": {}, "NC": {}, "ND": {}, "OH": {},
	"OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {}, "SD": {}, "TN": {}, "TX": {}, "UT": {},
	"VT": {}, "VA": {}, "WA": {}, "WV": {}, "WI": {}, "WY": {},
	"AS": {}, "GU": {}, "MP": {}, "PR": {}, "VI": {},
}

// NormalizeState upper-cases a state code. Empty input stays empty.
func NormalizeState(state string) string {
	return strings.ToUpper(strings.TrimSpace(state))
}

// ValidateState accepts an empty value or a two-letter US state or territory code.
func ValidateState(state string) error {
	if state == "" {
		return nil
	}
	if _, ok := usStates[NormalizeState(state)]; !ok {
		return fmt.Errorf("%q is not a valid US state code", state)
	}
	return nil
}

// ValidateZipCode accepts an empty value, NNNNN or NNNNN-NNNN.
func ValidateZipCode(zip string) error {
	if zip == "" {
		return nil
	}
	if !zipPattern.MatchString(strings.TrimSpace(zip)) {
		return fmt.Errorf("enter a zip code in the format XXXXX or XXXXX-XXXX")
	}
	return nil
}
