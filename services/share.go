package services

import (
	"net/url"
)

type ShareLink struct {
	Name string
	Href string
}

// ShareLinks returns pre-filled links to the usual sharing targets for pageURL.
func ShareLinks(pageURL string) []ShareLink {
	escaped := url.QueryEscape(pageURL)
	return []ShareLink{
		{Name: "Facebook", Href: "https://www.facebook.com/sharer/sharer.php?u=" + escaped},
		{Name: "LinkedIn", Href: "https://www.linkedin.com/shareArticle?url=" + escaped},
		{Name: "WhatsApp", Href: "https://api.whatsapp.com/send?text=" + escaped},
		{Name: "Twitter", Href: "https://twitter.com/share?url=" + escaped},
		{Name: "Email", Href: "mailto:?body=" + url.PathEscape("Check out this link: "+pageURL)},
	}
}
