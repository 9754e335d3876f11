// Package epub renders an extraction result as an EPUB 3 archive: a zip
// with a stored mimetype entry, OPF package metadata and a single XHTML
// content document.
package epub

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/pagedoc"
	"github.com/google/uuid"
)

// Ensure Generator implements pagedoc.Generator at compile time.
var _ pagedoc.Generator = (*Generator)(nil)

// Generator renders the content model as an EPUB document.
type Generator struct{}

// NewGenerator creates a new Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Format returns the output format this generator produces.
func (g *Generator) Format() pagedoc.Format {
	return pagedoc.FormatEPUB
}

// Generate renders the result as an EPUB archive.
func (g *Generator) Generate(ctx context.Context, result *pagedoc.ExtractionResult, progress func(int)) (*pagedoc.Artifact, error) {
	if err := result.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, pagedoc.Errorf(pagedoc.ECANCELED, "canceled before generation")
	}

	bookID := uuid.New().String()
	lang := result.DetectedLanguage
	if lang == "" {
		lang = "en"
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	// The mimetype entry must come first and be stored uncompressed.
	mt, err := w.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return nil, err
	}
	if _, err := mt.Write([]byte("application/epub+zip")); err != nil {
		return nil, err
	}

	files := []struct {
		name    string
		content func() (string, error)
	}{
		{"META-INF/container.xml", containerXML},
		{"OEBPS/content.opf", func() (string, error) { return packageOPF(result, bookID, lang) }},
		{"OEBPS/nav.xhtml", func() (string, error) { return navXHTML(result, lang), nil }},
		{"OEBPS/chapter.xhtml", func() (string, error) { return chapterXHTML(result, lang), nil }},
	}

	for i, f := range files {
		content, err := f.content()
		if err != nil {
			return nil, err
		}
		entry, err := w.Create(f.name)
		if err != nil {
			return nil, err
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			return nil, err
		}
		if progress != nil {
			progress((i + 1) * 100 / len(files))
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return &pagedoc.Artifact{
		Name:     artifactName(result.Title) + ".epub",
		MIMEType: "application/epub+zip",
		Data:     buf.Bytes(),
	}, nil
}

func containerXML() (string, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	container := doc.CreateElement("container")
	container.CreateAttr("version", "1.0")
	container.CreateAttr("xmlns", "urn:oasis:names:tc:opendocument:xmlns:container")
	rootfile := container.CreateElement("rootfiles").CreateElement("rootfile")
	rootfile.CreateAttr("full-path", "OEBPS/content.opf")
	rootfile.CreateAttr("media-type", "application/oebps-package+xml")
	doc.Indent(2)
	return doc.WriteToString()
}

func packageOPF(result *pagedoc.ExtractionResult, bookID, lang string) (string, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	pkg := doc.CreateElement("package")
	pkg.CreateAttr("xmlns", "http://www.idpf.org/2007/opf")
	pkg.CreateAttr("version", "3.0")
	pkg.CreateAttr("unique-identifier", "book-id")

	meta := pkg.CreateElement("metadata")
	meta.CreateAttr("xmlns:dc", "http://purl.org/dc/elements/1.1/")
	id := meta.CreateElement("dc:identifier")
	id.CreateAttr("id", "book-id")
	id.SetText("urn:uuid:" + bookID)
	title := meta.CreateElement("dc:title")
	title.SetText(orDefault(result.Title, "Untitled"))
	language := meta.CreateElement("dc:language")
	language.SetText(lang)
	if result.Author != "" {
		creator := meta.CreateElement("dc:creator")
		creator.SetText(result.Author)
	}
	if result.SourceURL != "" {
		source := meta.CreateElement("dc:source")
		source.SetText(result.SourceURL)
	}

	manifest := pkg.CreateElement("manifest")
	for _, item := range []struct{ id, href, mediaType, properties string }{
		{"nav", "nav.xhtml", "application/xhtml+xml", "nav"},
		{"chapter", "chapter.xhtml", "application/xhtml+xml", ""},
	} {
		el := manifest.CreateElement("item")
		el.CreateAttr("id", item.id)
		el.CreateAttr("href", item.href)
		el.CreateAttr("media-type", item.mediaType)
		if item.properties != "" {
			el.CreateAttr("properties", item.properties)
		}
	}

	spine := pkg.CreateElement("spine")
	itemref := spine.CreateElement("itemref")
	itemref.CreateAttr("idref", "chapter")

	doc.Indent(2)
	return doc.WriteToString()
}

func navXHTML(result *pagedoc.ExtractionResult, lang string) string {
	var sb strings.Builder
	sb.WriteString(xhtmlHead(orDefault(result.Title, "Untitled"), lang))
	sb.WriteString(`<nav epub:type="toc"><h1>Contents</h1><ol>`)
	fmt.Fprintf(&sb, `<li><a href="chapter.xhtml">%s</a></li>`, html.EscapeString(orDefault(result.Title, "Untitled")))
	sb.WriteString(`</ol></nav></body></html>`)
	return sb.String()
}

func chapterXHTML(result *pagedoc.ExtractionResult, lang string) string {
	var sb strings.Builder
	sb.WriteString(xhtmlHead(orDefault(result.Title, "Untitled"), lang))

	if result.Title != "" {
		fmt.Fprintf(&sb, "<h1>%s</h1>", html.EscapeString(result.Title))
	}
	if result.Author != "" {
		fmt.Fprintf(&sb, "<p><em>%s</em></p>", html.EscapeString(result.Author))
	}
	if result.Summary != "" {
		fmt.Fprintf(&sb, "<blockquote>%s</blockquote>", html.EscapeString(result.Summary))
	}

	for i := range result.Content {
		sb.WriteString(itemXHTML(&result.Content[i]))
	}

	sb.WriteString("</body></html>")
	return sb.String()
}

func itemXHTML(item *pagedoc.ContentItem) string {
	switch item.Type {
	case pagedoc.ItemHeading:
		level := item.Level
		if level < 1 || level > 6 {
			level = 2
		}
		return fmt.Sprintf("<h%d>%s</h%d>", level, html.EscapeString(item.Text), level)

	case pagedoc.ItemParagraph:
		if item.HTML != "" {
			// Inline markup was preserved through translation verbatim.
			return "<p>" + item.HTML + "</p>"
		}
		return "<p>" + html.EscapeString(item.Text) + "</p>"

	case pagedoc.ItemList:
		tag := "ul"
		if item.Ordered {
			tag = "ol"
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "<%s>", tag)
		for _, li := range item.Items {
			sb.WriteString("<li>" + html.EscapeString(li) + "</li>")
		}
		fmt.Fprintf(&sb, "</%s>", tag)
		return sb.String()

	case pagedoc.ItemImage:
		s := fmt.Sprintf(`<figure><img src="%s" alt="%s"/>`,
			html.EscapeString(item.Src), html.EscapeString(item.Alt))
		if item.Caption != "" {
			s += "<figcaption>" + html.EscapeString(item.Caption) + "</figcaption>"
		}
		return s + "</figure>"

	case pagedoc.ItemTable:
		var sb strings.Builder
		sb.WriteString("<table>")
		if len(item.Headers) > 0 {
			sb.WriteString("<thead><tr>")
			for _, h := range item.Headers {
				sb.WriteString("<th>" + html.EscapeString(h) + "</th>")
			}
			sb.WriteString("</tr></thead>")
		}
		sb.WriteString("<tbody>")
		for _, row := range item.Rows {
			sb.WriteString("<tr>")
			for _, cell := range row {
				sb.WriteString("<td>" + html.EscapeString(cell) + "</td>")
			}
			sb.WriteString("</tr>")
		}
		sb.WriteString("</tbody></table>")
		return sb.String()

	case pagedoc.ItemCode:
		return "<pre><code>" + html.EscapeString(item.Text) + "</code></pre>"

	case pagedoc.ItemQuote:
		return "<blockquote>" + html.EscapeString(item.Text) + "</blockquote>"

	case pagedoc.ItemSeparator:
		return "<hr/>"

	case pagedoc.ItemInfoboxStart:
		return `<aside class="infobox">`

	case pagedoc.ItemInfoboxEnd:
		return "</aside>"
	}
	return ""
}

func xhtmlHead(title, lang string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops" xml:lang="%s">
<head><title>%s</title></head>
<body>`, html.EscapeString(lang), html.EscapeString(title))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// artifactName derives a filesystem-safe name from the document title.
func artifactName(title string) string {
	if title == "" {
		return "document"
	}
	var sb strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			sb.WriteRune('-')
		}
	}
	name := strings.Trim(sb.String(), "-")
	if name == "" {
		return "document"
	}
	if len(name) > 64 {
		name = name[:64]
	}
	return name
}
