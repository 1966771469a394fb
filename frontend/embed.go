// Package frontend embeds the HTML templates and static assets served by the handlers.
package frontend

import "embed"

//go:embed templates static
var Files embed.FS
