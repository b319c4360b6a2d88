package geo

import "strings"

// iso3ToISO2 covers the codes observed in upstream feeds (ACLED, UCDP, HAPI
// and displacement sources mostly emit alpha-3).
var iso3ToISO2 = map[string]string{
	"AFG": "AF", "ARM": "AM", "AZE": "AZ", "BGD": "BD", "BFA": "BF",
	"CAF": "CF", "CHN": "CN", "CMR": "CM", "COD": "CD", "COL": "CO",
	"DEU": "DE", "ECU": "EC", "EGY": "EG", "ETH": "ET", "FRA": "FR",
	"GBR": "GB", "GEO": "GE", "HTI": "HT", "IDN": "ID", "IND": "IN",
	"IRN": "IR", "IRQ": "IQ", "ISR": "IL", "ITA": "IT", "JOR": "JO",
	"JPN": "JP", "KEN": "KE", "KOR": "KR", "LBN": "LB", "LBY": "LY",
	"MEX": "MX", "MLI": "ML", "MMR": "MM", "MOZ": "MZ", "NER": "NE",
	"NGA": "NG", "PAK": "PK", "PHL": "PH", "PRK": "KP", "PSE": "PS",
	"RUS": "RU", "SAU": "SA", "SDN": "SD", "SOM": "SO", "SRB": "RS",
	"SSD": "SS", "SYR": "SY", "TCD": "TD", "TUR": "TR", "TWN": "TW",
	"UKR": "UA", "USA": "US", "VEN": "VE", "VNM": "VN", "YEM": "YE",
	"ZAF": "ZA", "ESP": "ES", "POL": "PL", "BRA": "BR", "ARG": "AR",
	"CAN": "CA", "AUS": "AU", "THA": "TH", "MYS": "MY", "KAZ": "KZ",
	"UZB": "UZ", "TJK": "TJ", "KGZ": "KG", "BLR": "BY", "MDA": "MD",
	"ALB": "AL", "BIH": "BA", "MKD": "MK", "GRC": "GR", "CYP": "CY",
	"TUN": "TN", "DZA": "DZ", "MAR": "MA", "SEN": "SN", "GIN": "GN",
	"GHA": "GH", "CIV": "CI", "UGA": "UG", "RWA": "RW", "BDI": "BI",
	"TZA": "TZ", "ZWE": "ZW", "ZMB": "ZM", "AGO": "AO", "NAM": "NA",
	"BOL": "BO", "PER": "PE", "CHL": "CL", "PRY": "PY", "URY": "UY",
	"GTM": "GT", "HND": "HN", "SLV": "SV", "NIC": "NI", "PAN": "PA",
	"CUB": "CU", "DOM": "DO", "LKA": "LK", "NPL": "NP", "KHM": "KH",
	"LAO": "LA", "MNG": "MN", "NLD": "NL", "BEL": "BE", "CHE": "CH",
	"AUT": "AT", "SWE": "SE", "NOR": "NO", "FIN": "FI", "DNK": "DK",
	"PRT": "PT", "IRL": "IE", "ROU": "RO", "BGR": "BG", "HUN": "HU",
	"CZE": "CZ", "SVK": "SK", "HRV": "HR", "SVN": "SI", "LTU": "LT",
	"LVA": "LV", "EST": "EE", "ERI": "ER", "DJI": "DJ", "KWT": "KW",
	"QAT": "QA", "ARE": "AE", "OMN": "OM", "BHR": "BH",
}

// nameToISO2 is the general fallback table for free-text country names that
// miss every curated keyword list. Keys are lowercase.
var nameToISO2 = map[string]string{
	"united states of america": "US",
	"usa":                      "US",
	"america":                  "US",
	"uk":                       "GB",
	"england":                  "GB",
	"south africa":             "ZA",
	"ivory coast":              "CI",
	"cote d'ivoire":            "CI",
	"congo":                    "CD",
	"republic of korea":        "KR",
	"czech republic":           "CZ",
	"czechia":                  "CZ",
	"uae":                      "AE",
	"united arab emirates":     "AE",
	"bosnia":                   "BA",
	"bosnia and herzegovina":   "BA",
	"north macedonia":          "MK",
	"eritrea":                  "ER",
	"djibouti":                 "DJ",
	"indonesia":                "ID",
	"japan":                    "JP",
	"jordan":                   "JO",
	"kenya":                    "KE",
	"italy":                    "IT",
	"spain":                    "ES",
	"poland":                   "PL",
	"brazil":                   "BR",
	"argentina":                "AR",
	"canada":                   "CA",
	"australia":                "AU",
	"thailand":                 "TH",
	"malaysia":                 "MY",
	"kazakhstan":               "KZ",
	"belarus":                  "BY",
	"moldova":                  "MD",
	"greece":                   "GR",
	"tunisia":                  "TN",
	"algeria":                  "DZ",
	"morocco":                  "MA",
	"uganda":                   "UG",
	"tanzania":                 "TZ",
	"zimbabwe":                 "ZW",
	"peru":                     "PE",
	"chile":                    "CL",
	"guatemala":                "GT",
	"honduras":                 "HN",
	"cuba":                     "CU",
	"sri lanka":                "LK",
	"nepal":                    "NP",
	"cambodia":                 "KH",
}

// iso2ToName holds display names for codes outside the curated table.
var iso2ToName = map[string]string{
	"ZA": "South Africa", "ID": "Indonesia", "JP": "Japan", "JO": "Jordan",
	"KE": "Kenya", "IT": "Italy", "ES": "Spain", "PL": "Poland",
	"BR": "Brazil", "AR": "Argentina", "CA": "Canada", "AU": "Australia",
	"TH": "Thailand", "MY": "Malaysia", "KZ": "Kazakhstan", "BY": "Belarus",
	"MD": "Moldova", "GR": "Greece", "TN": "Tunisia", "DZ": "Algeria",
	"MA": "Morocco", "UG": "Uganda", "TZ": "Tanzania", "ZW": "Zimbabwe",
	"PE": "Peru", "CL": "Chile", "GT": "Guatemala", "HN": "Honduras",
	"CU": "Cuba", "LK": "Sri Lanka", "NP": "Nepal", "KH": "Cambodia",
	"CI": "Ivory Coast", "ER": "Eritrea", "DJ": "Djibouti", "AE": "UAE",
	"BA": "Bosnia and Herzegovina", "MK": "North Macedonia", "CZ": "Czechia",
	"KW": "Kuwait", "QA": "Qatar", "OM": "Oman", "BH": "Bahrain",
}

// knownISO2 is built once from every table that can produce a code, so
// two-letter inputs can be validated rather than accepted blindly.
var knownISO2 = buildKnownISO2()

func buildKnownISO2() map[string]bool {
	known := make(map[string]bool, 256)
	for i := range Profiles {
		known[Profiles[i].Code] = true
	}
	for _, code := range iso3ToISO2 {
		known[code] = true
	}
	for _, code := range nameToISO2 {
		known[code] = true
	}
	return known
}

// region is a coarse lat/lon bounding box used as a last-resort display name
// when a convergence cell sits far from any named feature.
type region struct {
	name           string
	minLat, maxLat float64
	minLon, maxLon float64
}

var regions = []region{
	{"Eastern Europe", 44, 60, 20, 45},
	{"Western Europe", 36, 60, -10, 20},
	{"Middle East", 12, 42, 25, 63},
	{"North Africa", 15, 36, -17, 25},
	{"Sahel", 10, 20, -17, 40},
	{"Horn of Africa", -5, 18, 33, 52},
	{"Central Africa", -14, 10, 8, 32},
	{"Southern Africa", -35, -14, 10, 41},
	{"South Asia", 5, 38, 60, 93},
	{"Southeast Asia", -11, 24, 93, 141},
	{"East Asia", 18, 54, 100, 146},
	{"Central Asia", 35, 56, 46, 88},
	{"North America", 24, 72, -170, -52},
	{"Central America and Caribbean", 7, 24, -118, -59},
	{"South America", -56, 13, -82, -34},
	{"Oceania", -48, 0, 110, 180},
}

// RegionName returns a coarse human-readable region for a coordinate, or ""
// when no box matches (open ocean, polar).
func RegionName(lat, lon float64) string {
	for _, r := range regions {
		if lat >= r.minLat && lat <= r.maxLat && lon >= r.minLon && lon <= r.maxLon {
			return r.name
		}
	}
	return ""
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
