package locale

import (
	"net/http"
	"strings"
	"time"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the visitor's language preference.
	LangCookieName = "raceday_lang"
)

// Negotiate picks the locale for a request: the lang query parameter, then
// the lang cookie, then Accept-Language, then the default.
func (c *Catalog) Negotiate(r *http.Request) Locale {
	if r == nil {
		return Default
	}
	if v := strings.TrimSpace(r.URL.Query().Get(LangParam)); v != "" {
		return c.Resolve(v)
	}
	if cookie, err := r.Cookie(LangCookieName); err == nil && cookie.Value != "" {
		return c.Resolve(cookie.Value)
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		return c.Match(accept)
	}
	return Default
}

// SetCookie persists the selected locale on the response.
func SetCookie(w http.ResponseWriter, l Locale) {
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    l.String(),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}
