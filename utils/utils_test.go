package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "", TruncateText("", 5))
	assert.Equal(t, "short", TruncateText("short", 5))
	assert.Equal(t, "abc...", TruncateText("abcdef", 3))
	assert.Equal(t, "héé...", TruncateText("hééllo", 3), "cuts on runes, not bytes")
}

func TestCookiesSet(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "https://cards.example.org/", nil)
	w := httptest.NewRecorder()
	Cookies{}.Set(w, r, "current_term", "0:1", time.Time{})

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "current_term", c.Name)
	assert.Equal(t, "0:1", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Zero(t, c.MaxAge, "session cookie")
}

func TestCookiesSetWithExpiry(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://cards.example.org/", nil)
	w := httptest.NewRecorder()
	Cookies{}.Set(w, r, "current_term", "0:1", time.Now().Add(time.Hour))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.InDelta(t, 3600, cookies[0].MaxAge, 2)
}

func TestCookiesClear(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "https://cards.example.org/", nil)
	w := httptest.NewRecorder()
	Cookies{DevelopmentMode: true}.Clear(w, r, "current_term")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Empty(t, cookies[0].Value)
	assert.False(t, cookies[0].Secure)
}

func TestCookiesSecure(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		proto   string
		devMode bool
		want    bool
	}{
		{name: "tls", target: "https://cards.example.org/", want: true},
		{name: "forwarded https", target: "http://cards.example.org/", proto: "https", want: true},
		{name: "forwarded http", target: "http://cards.example.org/", proto: "http", want: false},
		{name: "plain http on a lan address", target: "http://192.168.1.20:8080/", want: false},
		{name: "plain http remote host", target: "http://cards.example.org/", want: false},
		{name: "localhost", target: "http://localhost:8080/", want: false},
		{name: "development mode over tls", target: "https://cards.example.org/", devMode: true, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.proto != "" {
				r.Header.Set("X-Forwarded-Proto", tt.proto)
			}
			assert.Equal(t, tt.want, Cookies{DevelopmentMode: tt.devMode}.Secure(r))
		})
	}

	assert.False(t, Cookies{}.Secure(nil))
}
