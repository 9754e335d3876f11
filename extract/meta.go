package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// socialMetadata reads Open Graph and twitter card properties from markup.
// Video platforms keep their useful page data here rather than in the DOM.
func socialMetadata(html string) map[string]string {
	meta := make(map[string]string)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return meta
	}

	doc.Find("meta[property], meta[name]").Each(func(_ int, sel *goquery.Selection) {
		key, ok := sel.Attr("property")
		if !ok {
			key, _ = sel.Attr("name")
		}
		content, _ := sel.Attr("content")
		if key == "" || content == "" {
			return
		}
		key = strings.ToLower(key)
		if strings.HasPrefix(key, "og:") || strings.HasPrefix(key, "twitter:") {
			if _, exists := meta[key]; !exists {
				meta[key] = strings.TrimSpace(content)
			}
		}
	})

	// Twitter card fields stand in for missing Open Graph ones.
	for _, k := range []string{"title", "description", "image"} {
		if meta["og:"+k] == "" && meta["twitter:"+k] != "" {
			meta["og:"+k] = meta["twitter:"+k]
		}
	}

	return meta
}
