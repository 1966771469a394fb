package services

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

// SanitiseText strips all markup from user input and trims it. A value made of
// markup only comes back empty and fails the required-field checks.
func SanitiseText(input string) string {
	cleaned := textPolicy.Sanitize(input)
	// StrictPolicy escapes entities; the templates escape again on output.
	return strings.TrimSpace(html.UnescapeString(cleaned))
}
