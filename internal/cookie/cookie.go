package cookie

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mehmetcc/ppdb/internal/config"
)

// Read returns the value of name from a raw Cookie header. Pairs are
// separated by ';' with any amount of surrounding whitespace, and the name
// must match exactly. Percent-encoded values are decoded.
func Read(header, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	for _, pair := range strings.Split(header, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || strings.TrimSpace(k) != name {
			continue
		}
		v = strings.Trim(strings.TrimSpace(v), `"`)
		if dec, err := url.QueryUnescape(v); err == nil {
			v = dec
		}
		return v, true
	}
	return "", false
}

// ReadFirst tries names in priority order and reports which one matched.
// It exists for endpoints that still accept more than one session cookie.
func ReadFirst(header string, names ...string) (value, name string, ok bool) {
	for _, n := range names {
		if v, found := Read(header, n); found {
			return v, n, true
		}
	}
	return "", "", false
}

// Set writes a session cookie carrying value until expires.
func Set(w http.ResponseWriter, cfg *config.CookieConfig, name, value string, expires time.Time) {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cfg.Domain,
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	})
}

// Clear expires name on the client (Max-Age=0). Clearing a cookie the
// client doesn't hold is a no-op for the browser.
func Clear(w http.ResponseWriter, cfg *config.CookieConfig, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   cfg.Domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	})
}
