package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareLinks(t *testing.T) {
	links := ShareLinks("https://cards.example.org/view-card/2")
	require.Len(t, links, 5)

	byName := map[string]string{}
	for _, l := range links {
		byName[l.Name] = l.Href
	}

	assert.Equal(t, "https://www.facebook.com/sharer/sharer.php?u=https%3A%2F%2Fcards.example.org%2Fview-card%2F2", byName["Facebook"])
	assert.True(t, strings.HasPrefix(byName["LinkedIn"], "https://www.linkedin.com/shareArticle?url="))
	assert.True(t, strings.HasPrefix(byName["WhatsApp"], "https://api.whatsapp.com/send?text="))
	assert.True(t, strings.HasPrefix(byName["Twitter"], "https://twitter.com/share?url="))
	assert.True(t, strings.HasPrefix(byName["Email"], "mailto:?body=Check%20out%20this%20link"))
	assert.Contains(t, byName["Email"], "cards.example.org")
}
