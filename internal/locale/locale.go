// Package locale resolves requested languages to supported locales and picks
// localized strings with a default-locale fallback.
//
// Locales are passed explicitly to every call. There is no process-wide
// "current language"; a Catalog is immutable after construction and safe for
// concurrent use.
package locale

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// Locale is a supported content language.
type Locale string

const (
	English  Locale = "en"
	Romanian Locale = "ro"
	French   Locale = "fr"
	German   Locale = "de"

	// Default is the terminal fallback for every lookup.
	Default = English
)

// All lists every locale the site ships content for.
var All = []Locale{English, Romanian, French, German}

func (l Locale) String() string {
	return string(l)
}

// Tag returns the BCP 47 tag for the locale.
func (l Locale) Tag() language.Tag {
	return language.Make(string(l))
}

// Text is one localized field. The Default entry is mandatory.
type Text map[Locale]string

// Validate enforces the default-entry invariant.
func (t Text) Validate() error {
	if strings.TrimSpace(t[Default]) == "" {
		return fmt.Errorf("localized text is missing the %q entry", Default)
	}
	return nil
}

// Catalog owns the supported locale set.
type Catalog struct {
	supported []Locale
	set       map[Locale]struct{}
	matcher   language.Matcher
}

// NewCatalog builds a catalog for the given locales. The default locale is
// always supported and always first; unknown or duplicate entries are ignored.
func NewCatalog(supported ...Locale) *Catalog {
	c := &Catalog{set: map[Locale]struct{}{}}
	add := func(l Locale) {
		l = Locale(strings.ToLower(strings.TrimSpace(string(l))))
		if l == "" {
			return
		}
		if _, ok := c.set[l]; ok {
			return
		}
		c.set[l] = struct{}{}
		c.supported = append(c.supported, l)
	}
	add(Default)
	for _, l := range supported {
		add(l)
	}

	tags := make([]language.Tag, 0, len(c.supported))
	for _, l := range c.supported {
		tags = append(tags, l.Tag())
	}
	c.matcher = language.NewMatcher(tags)
	return c
}

// Supported returns the supported locales, default first.
func (c *Catalog) Supported() []Locale {
	return slices.Clone(c.supported)
}

// IsSupported reports whether l is exactly one of the supported locales.
func (c *Catalog) IsSupported(l Locale) bool {
	_, ok := c.set[l]
	return ok
}

// Resolve returns the requested locale when it is supported, otherwise the
// default. Matching ignores case and surrounding whitespace. A missing locale
// is a defined fallback, never an error.
func (c *Catalog) Resolve(requested string) Locale {
	l := Locale(strings.ToLower(strings.TrimSpace(requested)))
	if c.IsSupported(l) {
		return l
	}
	return Default
}

// Text returns t[l] when present and non-empty, else t[Default].
func (c *Catalog) Text(t Text, l Locale) string {
	if v, ok := t[l]; ok && v != "" {
		return v
	}
	return t[Default]
}

// Match picks the best supported locale for an Accept-Language header value.
// Regional variants match their base language (ro-RO -> ro).
func (c *Catalog) Match(acceptLanguage string) Locale {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, confidence := c.matcher.Match(tags...)
	if confidence == language.No {
		return Default
	}
	return c.supported[idx]
}
