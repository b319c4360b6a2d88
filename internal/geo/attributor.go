package geo

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// BoundaryIndex resolves a coordinate to the ISO2 code of the containing
// country polygon. Implementations are collaborator-owned (the boundary
// geometry set ships separately); an empty string means the point falls in
// international waters or outside every polygon.
type BoundaryIndex interface {
	CountryAt(lat, lon float64) string
}

// Attributor maps raw location signals to canonical ISO2 codes.
// A nil boundary index disables coordinate attribution; code and name
// attribution keep working.
type Attributor struct {
	boundaries BoundaryIndex
}

// NewAttributor creates an Attributor. boundaries may be nil.
func NewAttributor(boundaries BoundaryIndex) *Attributor {
	return &Attributor{boundaries: boundaries}
}

// EnsureISO2 normalizes a country code or free-text name to a known ISO2
// code. Two-letter inputs are validated against the known-code set, three
// letter inputs go through the ISO3 table, and anything else falls through
// to free-text name matching. Returns "" when nothing matches.
func (a *Attributor) EnsureISO2(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return ""
	}

	if len(trimmed) == 2 {
		upper := strings.ToUpper(trimmed)
		if knownISO2[upper] {
			return upper
		}
		return a.NormalizeCountryName(trimmed)
	}

	if len(trimmed) == 3 {
		if iso2, ok := iso3ToISO2[strings.ToUpper(trimmed)]; ok {
			return iso2
		}
	}

	return a.NormalizeCountryName(trimmed)
}

// NormalizeCountryName resolves a free-text country name to an ISO2 code.
// Curated keyword lists are checked first in table order (first match wins),
// then the general name table. Returns "" when nothing matches.
func (a *Attributor) NormalizeCountryName(name string) string {
	lower := lowerTrim(name)
	if lower == "" {
		return ""
	}

	for i := range Profiles {
		for _, kw := range Profiles[i].Keywords {
			if matchesKeyword(lower, kw) {
				return Profiles[i].Code
			}
		}
	}

	if code, ok := nameToISO2[lower]; ok {
		return code
	}
	return ""
}

// CountryFromLocation attributes a coordinate via point-in-polygon lookup.
// Returns "" when no boundary index is configured or the point matches no
// polygon — there is deliberately no nearest-centroid fallback here.
func (a *Attributor) CountryFromLocation(lat, lon float64) string {
	if a.boundaries == nil {
		return ""
	}
	if lat == 0 && lon == 0 {
		return ""
	}
	return a.boundaries.CountryAt(lat, lon)
}

// MatchCountries returns every curated country whose keyword list matches
// the given text. Used for news clusters, which can attribute to multiple
// countries simultaneously.
func (a *Attributor) MatchCountries(text string) []string {
	lower := strings.ToLower(text)
	var codes []string
	for i := range Profiles {
		for _, kw := range Profiles[i].Keywords {
			if matchesKeyword(lower, kw) {
				codes = append(codes, Profiles[i].Code)
				break
			}
		}
	}
	return codes
}

// matchesKeyword reports whether kw occurs in text at word boundaries.
// A plain substring check would let short names fire inside longer ones
// ("niger" inside "nigeria", "mali" inside "somalia"). Both inputs are
// expected lowercase.
func matchesKeyword(text, kw string) bool {
	for start := 0; start <= len(text)-len(kw); {
		idx := strings.Index(text[start:], kw)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(kw)
		before, _ := utf8.DecodeLastRuneInString(text[:idx])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if !isWordRune(before) && !isWordRune(after) {
			return true
		}
		start = idx + 1
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
