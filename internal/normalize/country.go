package normalize

import (
	"sort"
	"strings"

	"github.com/sells-group/lead-ingest/internal/model"
)

// WarnCountryDefaulted is attached to rows whose country was blank.
const WarnCountryDefaulted = "Country not specified, defaulted to Other"

// countries is the closed list of canonical country names.
var countries = []string{
	"Spain",
	"USA",
	"Mexico",
	"Colombia",
	"Argentina",
	"Brazil",
	"Chile",
	"Peru",
	"Venezuela",
	"Ecuador",
	"Bolivia",
	"Paraguay",
	"Uruguay",
	"Costa Rica",
	"Panama",
	"Guatemala",
	"Honduras",
	"El Salvador",
	"Nicaragua",
	"Dominican Republic",
	"Cuba",
	"Puerto Rico",
	"Canada",
	"United Kingdom",
	"France",
	"Italy",
	"Germany",
	"Portugal",
	model.CountryOther,
}

// canonicalCountry maps the folded canonical name to itself.
var canonicalCountry = func() map[string]string {
	m := make(map[string]string, len(countries))
	for _, c := range countries {
		m[Key(c)] = c
	}
	return m
}()

// countryAliases maps folded alternative spellings to canonical names.
// Keys must already be in Key() form. Append only.
var countryAliases = map[string]string{
	"united states":            "USA",
	"united states of america": "USA",
	"us":                       "USA",
	"u.s.":                     "USA",
	"u.s.a.":                   "USA",
	"america":                  "USA",
	"estados unidos":           "USA",
	"eeuu":                     "USA",
	"ee.uu.":                   "USA",
	"espana":                   "Spain",
	"es":                       "Spain",
	"esp":                      "Spain",
	"mexique":                  "Mexico",
	"mx":                       "Mexico",
	"brasil":                   "Brazil",
	"br":                       "Brazil",
	"co":                       "Colombia",
	"ar":                       "Argentina",
	"cl":                       "Chile",
	"pe":                       "Peru",
	"ve":                       "Venezuela",
	"ec":                       "Ecuador",
	"bo":                       "Bolivia",
	"py":                       "Paraguay",
	"uy":                       "Uruguay",
	"cr":                       "Costa Rica",
	"pa":                       "Panama",
	"gt":                       "Guatemala",
	"hn":                       "Honduras",
	"sv":                       "El Salvador",
	"ni":                       "Nicaragua",
	"republica dominicana":     "Dominican Republic",
	"rep. dominicana":          "Dominican Republic",
	"do":                       "Dominican Republic",
	"pr":                       "Puerto Rico",
	"ca":                       "Canada",
	"uk":                       "United Kingdom",
	"gb":                       "United Kingdom",
	"great britain":            "United Kingdom",
	"england":                  "United Kingdom",
	"reino unido":              "United Kingdom",
	"francia":                  "France",
	"fr":                       "France",
	"italia":                   "Italy",
	"it":                       "Italy",
	"alemania":                 "Germany",
	"deutschland":              "Germany",
	"de":                       "Germany",
	"pt":                       "Portugal",
	"otro":                     model.CountryOther,
	"otros":                    model.CountryOther,
	"unknown":                  model.CountryOther,
}

// Countries returns the canonical country list.
func Countries() []string {
	out := make([]string, len(countries))
	copy(out, countries)
	return out
}

// Country resolves a raw country value. Exact (case-insensitive) matches on
// the canonical list win, then the alias table; anything else is passed
// through trimmed. Blank input yields "Other" plus a warning.
func Country(raw string) (string, string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return model.CountryOther, WarnCountryDefaulted
	}
	key := Key(trimmed)
	if c, ok := canonicalCountry[key]; ok {
		return c, ""
	}
	if c, ok := countryAliases[key]; ok {
		return c, ""
	}
	return trimmed, ""
}

// IsUnknownCountry reports whether a stored country carries no information
// and may be re-derived from a phone number.
func IsUnknownCountry(c string) bool {
	switch Key(c) {
	case "", "other", "unknown":
		return true
	}
	return false
}

// callingCodes maps international calling-code prefixes to countries.
// NANP territories with their own area codes are listed with four digits so
// longest-prefix matching resolves them before the bare "1".
var callingCodes = map[string]string{
	"34":   "Spain",
	"1":    "USA",
	"1787": "Puerto Rico",
	"1939": "Puerto Rico",
	"1809": "Dominican Republic",
	"1829": "Dominican Republic",
	"1849": "Dominican Republic",
	"52":   "Mexico",
	"57":   "Colombia",
	"54":   "Argentina",
	"55":   "Brazil",
	"56":   "Chile",
	"51":   "Peru",
	"58":   "Venezuela",
	"593":  "Ecuador",
	"591":  "Bolivia",
	"595":  "Paraguay",
	"598":  "Uruguay",
	"506":  "Costa Rica",
	"507":  "Panama",
	"502":  "Guatemala",
	"504":  "Honduras",
	"503":  "El Salvador",
	"505":  "Nicaragua",
	"53":   "Cuba",
	"44":   "United Kingdom",
	"33":   "France",
	"39":   "Italy",
	"49":   "Germany",
	"351":  "Portugal",
}

// callingCodePrefixes holds the calling-code keys, longest first.
var callingCodePrefixes = func() []string {
	keys := make([]string, 0, len(callingCodes))
	for k := range callingCodes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// CountryFromPhone derives a country from the calling code of a phone
// number. Only numbers written in international form ("+", "00") or long
// enough to include a calling code (11+ digits) are considered. Returns ""
// when no country can be derived.
func CountryFromPhone(raw string) string {
	trimmed := strings.TrimSpace(raw)
	digits := Phone(trimmed)
	international := strings.HasPrefix(trimmed, "+")
	if strings.HasPrefix(digits, "00") {
		digits = digits[2:]
		international = true
	}
	if !international && len(digits) < 11 {
		return ""
	}
	for _, prefix := range callingCodePrefixes {
		if strings.HasPrefix(digits, prefix) {
			return callingCodes[prefix]
		}
	}
	return ""
}
