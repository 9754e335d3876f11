package extract

import (
	"net/url"
	"strings"
)

// PageType classifies a source page before strategy selection.
type PageType string

// Page types. PDF and video sources bypass selector-based extraction
// entirely and take specialized paths.
const (
	PageTypeArticle PageType = "article"
	PageTypePDF     PageType = "pdf"
	PageTypeVideo   PageType = "video"
)

// videoHosts are platforms whose pages are players, not articles.
var videoHosts = []string{
	"youtube.com",
	"youtu.be",
	"vimeo.com",
	"dailymotion.com",
	"twitch.tv",
}

// DetectPageType classifies a page by URL and a sniff of its content.
func DetectPageType(rawURL, html string) PageType {
	if rawURL != "" {
		if u, err := url.Parse(rawURL); err == nil {
			host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
			for _, vh := range videoHosts {
				if host == vh || strings.HasSuffix(host, "."+vh) {
					return PageTypeVideo
				}
			}
			if strings.HasSuffix(strings.ToLower(u.Path), ".pdf") {
				return PageTypePDF
			}
		}
	}
	if strings.HasPrefix(html, "%PDF-") {
		return PageTypePDF
	}
	return PageTypeArticle
}
