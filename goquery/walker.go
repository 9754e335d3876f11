package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagedoc"
)

// containerTags are structural wrappers the walker descends into looking
// for content blocks instead of emitting directly.
var containerTags = map[string]bool{
	"div": true, "section": true, "article": true, "main": true,
}

// inlineMarkupTags are tags preserved inside paragraph HTML so links and
// emphasis survive translation.
var inlineMarkupTags = []string{"a", "strong", "em", "b", "i", "code", "sub", "sup", "mark"}

// infoboxClasses identify callout/sidebar boxes that should keep their
// grouping in the output document.
var infoboxClasses = []string{"infobox", "callout", "admonition", "notice", "alert", "sidebar-box"}

// WalkSelection maps a DOM subtree onto the normalized content item model
// in document order.
func WalkSelection(sel *goquery.Selection) []pagedoc.ContentItem {
	var items []pagedoc.ContentItem
	sel.Children().Each(func(_ int, child *goquery.Selection) {
		items = append(items, walkNode(child)...)
	})
	return items
}

func walkNode(sel *goquery.Selection) []pagedoc.ContentItem {
	node := sel.Get(0)
	if node == nil {
		return nil
	}
	tag := goquery.NodeName(sel)

	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		text := cleanText(sel.Text())
		if text == "" {
			return nil
		}
		return []pagedoc.ContentItem{{
			Type:  pagedoc.ItemHeading,
			Text:  text,
			Level: int(tag[1] - '0'),
		}}

	case "p":
		return paragraphItems(sel)

	case "ul", "ol":
		return listItems(sel, tag == "ol")

	case "img", "figure", "picture":
		return imageItems(sel)

	case "table":
		return tableItems(sel)

	case "pre":
		return codeItems(sel)

	case "blockquote":
		text := cleanText(sel.Text())
		if text == "" {
			return nil
		}
		return []pagedoc.ContentItem{{Type: pagedoc.ItemQuote, Text: text}}

	case "hr":
		return []pagedoc.ContentItem{{Type: pagedoc.ItemSeparator}}

	case "aside":
		return infoboxItems(sel)
	}

	if isInfobox(sel) {
		return infoboxItems(sel)
	}

	if containerTags[tag] {
		// Structural wrapper: recurse into children.
		var items []pagedoc.ContentItem
		sel.Children().Each(func(_ int, child *goquery.Selection) {
			items = append(items, walkNode(child)...)
		})
		if len(items) > 0 {
			return items
		}
		// Leaf div with bare text reads as a paragraph.
		if text := cleanText(sel.Text()); text != "" {
			return []pagedoc.ContentItem{{Type: pagedoc.ItemParagraph, Text: text}}
		}
	}

	return nil
}

// paragraphItems emits a paragraph, preserving inline markup as HTML when
// present so tags survive translation verbatim.
func paragraphItems(sel *goquery.Selection) []pagedoc.ContentItem {
	text := cleanText(sel.Text())
	if text == "" {
		return nil
	}
	item := pagedoc.ContentItem{Type: pagedoc.ItemParagraph, Text: text}
	if hasInlineMarkup(sel) {
		if inner, err := sel.Html(); err == nil {
			item.HTML = strings.TrimSpace(inner)
		}
	}
	return []pagedoc.ContentItem{item}
}

func listItems(sel *goquery.Selection, ordered bool) []pagedoc.ContentItem {
	var entries []string
	sel.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		if text := cleanText(li.Text()); text != "" {
			entries = append(entries, text)
		}
	})
	if len(entries) == 0 {
		return nil
	}
	return []pagedoc.ContentItem{{
		Type:    pagedoc.ItemList,
		Items:   entries,
		Ordered: ordered,
	}}
}

func imageItems(sel *goquery.Selection) []pagedoc.ContentItem {
	img := sel
	if goquery.NodeName(sel) != "img" {
		img = sel.Find("img").First()
		if img.Length() == 0 {
			return nil
		}
	}
	src, _ := img.Attr("src")
	if src == "" {
		src, _ = img.Attr("data-src")
	}
	if src == "" {
		return nil
	}
	alt, _ := img.Attr("alt")
	item := pagedoc.ContentItem{
		Type: pagedoc.ItemImage,
		Src:  src,
		Alt:  cleanText(alt),
	}
	if caption := sel.Find("figcaption").First(); caption.Length() > 0 {
		item.Caption = cleanText(caption.Text())
	}
	return []pagedoc.ContentItem{item}
}

func tableItems(sel *goquery.Selection) []pagedoc.ContentItem {
	var headers []string
	sel.Find("thead th, tr:first-child th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, cleanText(th.Text()))
	})

	var rows [][]string
	sel.Find("tbody tr, table > tr").Each(func(_ int, tr *goquery.Selection) {
		var row []string
		tr.ChildrenFiltered("td").Each(func(_ int, td *goquery.Selection) {
			row = append(row, cleanText(td.Text()))
		})
		if len(row) > 0 {
			rows = append(rows, row)
		}
	})

	if len(headers) == 0 && len(rows) == 0 {
		return nil
	}
	return []pagedoc.ContentItem{{
		Type:    pagedoc.ItemTable,
		Headers: headers,
		Rows:    rows,
	}}
}

func codeItems(sel *goquery.Selection) []pagedoc.ContentItem {
	code := sel.Find("code").First()
	target := sel
	if code.Length() > 0 {
		target = code
	}
	text := strings.Trim(target.Text(), "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return []pagedoc.ContentItem{{
		Type:     pagedoc.ItemCode,
		Text:     text,
		Language: codeLanguage(target),
	}}
}

// codeLanguage extracts a language hint from class attributes like
// "language-go" or "lang-python".
func codeLanguage(sel *goquery.Selection) string {
	class, _ := sel.Attr("class")
	for _, c := range strings.Fields(class) {
		if lang, ok := strings.CutPrefix(c, "language-"); ok {
			return lang
		}
		if lang, ok := strings.CutPrefix(c, "lang-"); ok {
			return lang
		}
	}
	return ""
}

// infoboxItems wraps a callout's inner content between infobox markers so
// generators can render the grouping.
func infoboxItems(sel *goquery.Selection) []pagedoc.ContentItem {
	inner := WalkSelection(sel)
	if len(inner) == 0 {
		if text := cleanText(sel.Text()); text != "" {
			inner = []pagedoc.ContentItem{{Type: pagedoc.ItemParagraph, Text: text}}
		} else {
			return nil
		}
	}
	items := make([]pagedoc.ContentItem, 0, len(inner)+2)
	items = append(items, pagedoc.ContentItem{Type: pagedoc.ItemInfoboxStart})
	items = append(items, inner...)
	items = append(items, pagedoc.ContentItem{Type: pagedoc.ItemInfoboxEnd})
	return items
}

func isInfobox(sel *goquery.Selection) bool {
	class, _ := sel.Attr("class")
	lower := strings.ToLower(class)
	for _, marker := range infoboxClasses {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func hasInlineMarkup(sel *goquery.Selection) bool {
	for _, tag := range inlineMarkupTags {
		if sel.Find(tag).Length() > 0 {
			return true
		}
	}
	return false
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
