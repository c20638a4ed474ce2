package quote

import "strings"

// countryCodes maps lower-cased English country names to ISO 3166-1 alpha-2 codes.
var countryCodes = map[string]string{
	"argentina":            "AR",
	"australia":            "AU",
	"austria":              "AT",
	"belgium":              "BE",
	"bolivia":              "BO",
	"brazil":               "BR",
	"canada":               "CA",
	"chile":                "CL",
	"china":                "CN",
	"colombia":             "CO",
	"costa rica":           "CR",
	"cuba":                 "CU",
	"czech republic":       "CZ",
	"denmark":              "DK",
	"dominican republic":   "DO",
	"ecuador":              "EC",
	"egypt":                "EG",
	"el salvador":          "SV",
	"finland":              "FI",
	"france":               "FR",
	"germany":              "DE",
	"greece":               "GR",
	"guatemala":            "GT",
	"honduras":             "HN",
	"hungary":              "HU",
	"india":                "IN",
	"indonesia":            "ID",
	"ireland":              "IE",
	"israel":               "IL",
	"italy":                "IT",
	"japan":                "JP",
	"kenya":                "KE",
	"malaysia":             "MY",
	"mexico":               "MX",
	"netherlands":          "NL",
	"new zealand":          "NZ",
	"nicaragua":            "NI",
	"nigeria":              "NG",
	"norway":               "NO",
	"panama":               "PA",
	"paraguay":             "PY",
	"peru":                 "PE",
	"philippines":          "PH",
	"poland":               "PL",
	"portugal":             "PT",
	"puerto rico":          "PR",
	"romania":              "RO",
	"singapore":            "SG",
	"south africa":         "ZA",
	"south korea":          "KR",
	"spain":                "ES",
	"sweden":               "SE",
	"switzerland":          "CH",
	"thailand":             "TH",
	"turkey":               "TR",
	"ukraine":              "UA",
	"united arab emirates": "AE",
	"united kingdom":       "GB",
	"united states":        "US",
	"uruguay":              "UY",
	"venezuela":            "VE",
	"vietnam":              "VN",
}

// countryAliases are alternative spellings seen in form input.
var countryAliases = map[string]string{
	"usa":                      "US",
	"united states of america": "US",
	"uk":                       "GB",
	"great britain":            "GB",
	"méxico":                   "MX",
	"brasil":                   "BR",
	"perú":                     "PE",
	"españa":                   "ES",
	"korea":                    "KR",
	"uae":                      "AE",
	"czechia":                  "CZ",
}

var isoCodes = func() map[string]bool {
	m := make(map[string]bool, len(countryCodes))
	for _, code := range countryCodes {
		m[code] = true
	}
	return m
}()

// CountryISO resolves a country name or code to its alpha-2 code. Lookup is
// case-insensitive and already-ISO input resolves to itself.
func CountryISO(country string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(country))
	if key == "" {
		return "", false
	}
	if len(key) == 2 {
		code := strings.ToUpper(key)
		if isoCodes[code] {
			return code, true
		}
	}
	if code, ok := countryCodes[key]; ok {
		return code, true
	}
	if code, ok := countryAliases[key]; ok {
		return code, true
	}
	return "", false
}

// GetCountryISO is CountryISO without the ok flag; unknown input yields "".
func GetCountryISO(country string) string {
	code, _ := CountryISO(country)
	return code
}
