// Package htmltomarkdown renders an extraction result as a Markdown
// document. Items carrying inline HTML are converted with
// html-to-markdown so links and emphasis survive.
package htmltomarkdown

import (
	"context"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/pagedoc"
)

// Ensure Generator implements pagedoc.Generator at compile time.
var _ pagedoc.Generator = (*Generator)(nil)

// Generator renders the content model as Markdown.
type Generator struct {
	conv *converter.Converter
}

// NewGenerator creates a new Generator.
func NewGenerator() *Generator {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Generator{conv: conv}
}

// Format returns the output format this generator produces.
func (g *Generator) Format() pagedoc.Format {
	return pagedoc.FormatMarkdown
}

// Generate renders the result as a Markdown document.
func (g *Generator) Generate(_ context.Context, result *pagedoc.ExtractionResult, progress func(int)) (*pagedoc.Artifact, error) {
	if err := result.Validate(); err != nil {
		return nil, err
	}

	var sb strings.Builder

	if result.Title != "" {
		fmt.Fprintf(&sb, "# %s\n\n", result.Title)
	}
	if result.Author != "" || result.PublishDate != "" {
		if result.Author != "" {
			fmt.Fprintf(&sb, "*%s*", result.Author)
		}
		if result.PublishDate != "" {
			if result.Author != "" {
				sb.WriteString(" — ")
			}
			sb.WriteString(result.PublishDate)
		}
		sb.WriteString("\n\n")
	}
	if result.Summary != "" {
		fmt.Fprintf(&sb, "> %s\n\n", strings.ReplaceAll(result.Summary, "\n", "\n> "))
	}

	total := len(result.Content)
	for i := range result.Content {
		md, err := g.renderItem(&result.Content[i])
		if err != nil {
			return nil, err
		}
		if md != "" {
			sb.WriteString(md)
			sb.WriteString("\n\n")
		}
		if progress != nil && total > 0 {
			progress((i + 1) * 100 / total)
		}
	}

	if result.SourceURL != "" {
		fmt.Fprintf(&sb, "---\n\nSource: <%s>\n", result.SourceURL)
	}

	return &pagedoc.Artifact{
		Name:     artifactName(result.Title) + ".md",
		MIMEType: "text/markdown",
		Data:     []byte(sb.String()),
	}, nil
}

func (g *Generator) renderItem(item *pagedoc.ContentItem) (string, error) {
	switch item.Type {
	case pagedoc.ItemHeading:
		level := item.Level
		if level < 1 || level > 6 {
			level = 2
		}
		return strings.Repeat("#", level) + " " + g.inline(item), nil

	case pagedoc.ItemParagraph:
		return g.inline(item), nil

	case pagedoc.ItemList:
		var sb strings.Builder
		for i, li := range item.Items {
			if item.Ordered {
				fmt.Fprintf(&sb, "%d. %s\n", i+1, li)
			} else {
				fmt.Fprintf(&sb, "- %s\n", li)
			}
		}
		return strings.TrimRight(sb.String(), "\n"), nil

	case pagedoc.ItemImage:
		md := fmt.Sprintf("![%s](%s)", item.Alt, item.Src)
		if item.Caption != "" {
			md += "\n*" + item.Caption + "*"
		}
		return md, nil

	case pagedoc.ItemTable:
		return renderTable(item), nil

	case pagedoc.ItemCode:
		return "```" + item.Language + "\n" + item.Text + "\n```", nil

	case pagedoc.ItemQuote:
		return "> " + strings.ReplaceAll(g.inline(item), "\n", "\n> "), nil

	case pagedoc.ItemSeparator:
		return "---", nil

	case pagedoc.ItemInfoboxStart:
		return "> **Note**", nil

	case pagedoc.ItemInfoboxEnd:
		return "", nil
	}
	return g.inline(item), nil
}

// inline prefers the HTML field, converted to Markdown, over plain text.
func (g *Generator) inline(item *pagedoc.ContentItem) string {
	if item.HTML != "" {
		if md, err := g.conv.ConvertString(item.HTML); err == nil {
			return strings.TrimSpace(md)
		}
	}
	return item.Text
}

func renderTable(item *pagedoc.ContentItem) string {
	cols := len(item.Headers)
	for _, row := range item.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return ""
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = strings.ReplaceAll(cells[i], "|", "\\|")
			}
			sb.WriteString(" " + cell + " |")
		}
		sb.WriteString("\n")
	}

	headers := item.Headers
	if len(headers) == 0 {
		headers = make([]string, cols)
	}
	writeRow(headers)
	sb.WriteString("|" + strings.Repeat(" --- |", cols) + "\n")
	for _, row := range item.Rows {
		writeRow(row)
	}
	return strings.TrimRight(sb.String(), "\n")
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
