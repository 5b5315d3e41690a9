package locale

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// IsKnownCountry reports whether code is an ISO 3166-1 alpha-2 country code.
func IsKnownCountry(code string) bool {
	_, ok := parseCountry(code)
	return ok
}

// CountryName renders a country code in the given locale. Unknown codes are
// returned verbatim.
func CountryName(code string, l Locale) string {
	region, ok := parseCountry(code)
	if !ok {
		return code
	}
	name := display.Regions(l.Tag()).Name(region)
	if name == "" {
		name = display.Regions(Default.Tag()).Name(region)
	}
	if name == "" {
		return code
	}
	return name
}

func parseCountry(code string) (language.Region, bool) {
	code = strings.TrimSpace(code)
	if len(code) != 2 {
		return language.Region{}, false
	}
	region, err := language.ParseRegion(code)
	if err != nil || !region.IsCountry() {
		return language.Region{}, false
	}
	return region, true
}
