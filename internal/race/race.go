// Package race describes the race categories on offer.
package race

import (
	"strings"

	"raceday/internal/locale"
)

// Category is one of the closed set of race distances.
type Category string

const (
	Ultra    Category = "ultra"
	Marathon Category = "marathon"
	Half     Category = "half"
	K25      Category = "25k"
	K10      Category = "10k"
)

// Race is the static description of a category.
type Race struct {
	Category   Category
	Name       locale.Text
	DistanceKM float64
	// FirstBib starts the category's bib block.
	FirstBib int
}

var races = []Race{
	{
		Category: Ultra, DistanceKM: 80, FirstBib: 1,
		Name: locale.Text{locale.English: "Ultra", locale.Romanian: "Ultra", locale.French: "Ultra", locale.German: "Ultra"},
	},
	{
		Category: Marathon, DistanceKM: 42.195, FirstBib: 1001,
		Name: locale.Text{locale.English: "Marathon", locale.Romanian: "Maraton", locale.French: "Marathon", locale.German: "Marathon"},
	},
	{
		Category: Half, DistanceKM: 21.0975, FirstBib: 2001,
		Name: locale.Text{locale.English: "Half marathon", locale.Romanian: "Semimaraton", locale.French: "Semi-marathon", locale.German: "Halbmarathon"},
	},
	{
		Category: K25, DistanceKM: 25, FirstBib: 3001,
		Name: locale.Text{locale.English: "25K trail", locale.Romanian: "Cros 25K", locale.French: "Trail 25 km", locale.German: "25-km-Trail"},
	},
	{
		Category: K10, DistanceKM: 10, FirstBib: 4001,
		Name: locale.Text{locale.English: "10K run", locale.Romanian: "Alergare 10K", locale.French: "Course 10 km", locale.German: "10-km-Lauf"},
	},
}

var byCategory = func() map[Category]Race {
	m := make(map[Category]Race, len(races))
	for _, r := range races {
		m[r.Category] = r
	}
	return m
}()

// All returns every race in display order.
func All() []Race {
	out := make([]Race, len(races))
	copy(out, races)
	return out
}

// Lookup returns the race for a category.
func Lookup(c Category) (Race, bool) {
	r, ok := byCategory[c]
	return r, ok
}

// ParseCategory accepts a category name, ignoring case and surrounding whitespace.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	_, ok := byCategory[c]
	return c, ok
}

// IsValid reports whether c is in the closed enum.
func (c Category) IsValid() bool {
	_, ok := byCategory[c]
	return ok
}

func (c Category) String() string {
	return string(c)
}

// DisplayName renders the category name in l.
func (c Category) DisplayName(catalog *locale.Catalog, l locale.Locale) string {
	r, ok := byCategory[c]
	if !ok {
		return string(c)
	}
	return catalog.Text(r.Name, l)
}
