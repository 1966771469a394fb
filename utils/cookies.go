package utils

import (
	"net/http"
	"strings"
	"time"
)

// Cookies writes the app's cookies with shared flags: HttpOnly, SameSite=Lax, path "/".
// Secure is only set when the browser reached us over https, so plain-http
// deployments keep working; DevelopmentMode never sets it.
type Cookies struct {
	DevelopmentMode bool
}

// Set writes a cookie. A zero expires makes it a session cookie.
func (c Cookies) Set(w http.ResponseWriter, r *http.Request, name, value string, expires time.Time) {
	cookie := c.base(r, name, value)
	if !expires.IsZero() {
		cookie.Expires = expires
		cookie.MaxAge = int(time.Until(expires).Round(time.Second).Seconds())
	}
	http.SetCookie(w, cookie)
}

// Clear expires the cookie with the same flags it was set with.
func (c Cookies) Clear(w http.ResponseWriter, r *http.Request, name string) {
	cookie := c.base(r, name, "")
	cookie.Expires = time.Unix(0, 0)
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
}

// Secure reports whether the request arrived over TLS, directly or through a
// proxy that sets X-Forwarded-Proto.
func (c Cookies) Secure(r *http.Request) bool {
	if c.DevelopmentMode || r == nil {
		return false
	}
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func (c Cookies) base(r *http.Request, name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure(r),
		SameSite: http.SameSiteLaxMode,
	}
}
