package pagedoc

import "time"

// ItemType identifies the structural kind of a ContentItem.
type ItemType string

// Structural unit kinds produced by extraction.
const (
	ItemParagraph    ItemType = "paragraph"
	ItemHeading      ItemType = "heading"
	ItemList         ItemType = "list"
	ItemImage        ItemType = "image"
	ItemTable        ItemType = "table"
	ItemCode         ItemType = "code"
	ItemQuote        ItemType = "quote"
	ItemSeparator    ItemType = "separator"
	ItemInfoboxStart ItemType = "infobox_start"
	ItemInfoboxEnd   ItemType = "infobox_end"
)

// ContentItem represents one structural unit of an extracted document.
// Which fields are meaningful depends on Type; Text and HTML are the
// translation-bearing fields for most kinds.
type ContentItem struct {
	Type ItemType `json:"type"`

	// Text content. For ItemCode this is the literal source and is never
	// translated. HTML, when set, preserves inline markup for the same unit.
	Text string `json:"text,omitempty"`
	HTML string `json:"html,omitempty"`

	// Heading level (1-6). Only meaningful for ItemHeading.
	Level int `json:"level,omitempty"`

	// List items and ordering. Only meaningful for ItemList.
	Items   []string `json:"items,omitempty"`
	Ordered bool     `json:"ordered,omitempty"`

	// Image attributes. Only meaningful for ItemImage.
	Src     string `json:"src,omitempty"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`

	// Table content. Only meaningful for ItemTable.
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`

	// Code language hint. Only meaningful for ItemCode.
	Language string `json:"language,omitempty"`
}

// Translatable reports whether the item carries text that should be sent
// for translation. Code is reproduced byte-for-byte; separators and infobox
// markers carry no text.
func (i *ContentItem) Translatable() bool {
	switch i.Type {
	case ItemCode, ItemSeparator, ItemInfoboxStart, ItemInfoboxEnd:
		return false
	}
	return true
}

// ExtractionResult is the normalized content model for one page. It is
// created once per run by the extraction strategy, annotated by the
// language detector, rewritten in place by the translation engine, and
// consumed by a document generator.
type ExtractionResult struct {
	Title            string        `json:"title"`
	Author           string        `json:"author,omitempty"`
	PublishDate      string        `json:"publishDate,omitempty"`
	Content          []ContentItem `json:"content"`
	DetectedLanguage string        `json:"detectedLanguage,omitempty"`
	Summary          string        `json:"summary,omitempty"`
	SourceURL        string        `json:"sourceUrl,omitempty"`
	ExtractedAt      time.Time     `json:"extractedAt,omitempty"`
}

// Validate returns an error if the result is unusable.
func (r *ExtractionResult) Validate() error {
	if len(r.Content) == 0 {
		return Errorf(EEMPTY, "extraction produced no content items")
	}
	return nil
}

// PlainText concatenates the text of all items, primarily for language
// detection sampling. List items, table cells and captions are included;
// code is excluded since it skews script statistics.
func (r *ExtractionResult) PlainText() string {
	var b []byte
	appendPart := func(s string) {
		if s == "" {
			return
		}
		if len(b) > 0 {
			b = append(b, ' ')
		}
		b = append(b, s...)
	}
	appendPart(r.Title)
	for i := range r.Content {
		item := &r.Content[i]
		if !item.Translatable() {
			continue
		}
		appendPart(item.Text)
		for _, li := range item.Items {
			appendPart(li)
		}
		appendPart(item.Alt)
		appendPart(item.Caption)
		for _, h := range item.Headers {
			appendPart(h)
		}
		for _, row := range item.Rows {
			for _, cell := range row {
				appendPart(cell)
			}
		}
	}
	return string(b)
}

// TextField identifies which field of a ContentItem a TextRef points at.
type TextField string

// Addressable text fields within a ContentItem.
const (
	FieldText    TextField = "text"
	FieldHTML    TextField = "html"
	FieldItem    TextField = "item"    // list entry at SubIndex
	FieldAlt     TextField = "alt"     // image alt text
	FieldCaption TextField = "caption" // image caption
	FieldHeader  TextField = "header"  // table header at SubIndex
	FieldCell    TextField = "cell"    // table cell at SubIndex (row*stride+col)
)

// TextRef is a stable reference to one translatable text field inside an
// ExtractionResult. Refs are collected once, packed into chunks, and the
// translated strings are written back through the same refs.
type TextRef struct {
	// Index of the content item within ExtractionResult.Content.
	Index int

	Field    TextField
	SubIndex int

	// For FieldCell: number of columns per row used to flatten SubIndex.
	Stride int

	// Snapshot of the original text at collection time.
	Text string
}

// Len returns the character length of the referenced text.
func (ref *TextRef) Len() int {
	return len(ref.Text)
}

// Get reads the current value of the referenced field.
func (ref *TextRef) Get(r *ExtractionResult) string {
	item := &r.Content[ref.Index]
	switch ref.Field {
	case FieldText:
		return item.Text
	case FieldHTML:
		return item.HTML
	case FieldItem:
		return item.Items[ref.SubIndex]
	case FieldAlt:
		return item.Alt
	case FieldCaption:
		return item.Caption
	case FieldHeader:
		return item.Headers[ref.SubIndex]
	case FieldCell:
		return item.Rows[ref.SubIndex/ref.Stride][ref.SubIndex%ref.Stride]
	}
	return ""
}

// Set writes a translated value back through the reference.
func (ref *TextRef) Set(r *ExtractionResult, value string) {
	item := &r.Content[ref.Index]
	switch ref.Field {
	case FieldText:
		item.Text = value
	case FieldHTML:
		item.HTML = value
	case FieldItem:
		item.Items[ref.SubIndex] = value
	case FieldAlt:
		item.Alt = value
	case FieldCaption:
		item.Caption = value
	case FieldHeader:
		item.Headers[ref.SubIndex] = value
	case FieldCell:
		item.Rows[ref.SubIndex/ref.Stride][ref.SubIndex%ref.Stride] = value
	}
}

// CollectTextRefs flattens every translatable text field in document order.
// Code items are skipped entirely. When an item carries both HTML and plain
// text, the HTML field is collected so inline markup survives translation.
func CollectTextRefs(r *ExtractionResult) []TextRef {
	var refs []TextRef
	add := func(index int, field TextField, subIndex, stride int, text string) {
		if text == "" {
			return
		}
		refs = append(refs, TextRef{Index: index, Field: field, SubIndex: subIndex, Stride: stride, Text: text})
	}

	for i := range r.Content {
		item := &r.Content[i]
		if !item.Translatable() {
			continue
		}
		if item.HTML != "" {
			add(i, FieldHTML, 0, 0, item.HTML)
		} else {
			add(i, FieldText, 0, 0, item.Text)
		}
		for j, li := range item.Items {
			add(i, FieldItem, j, 0, li)
		}
		add(i, FieldAlt, 0, 0, item.Alt)
		add(i, FieldCaption, 0, 0, item.Caption)
		for j, h := range item.Headers {
			add(i, FieldHeader, j, 0, h)
		}
		if len(item.Rows) > 0 {
			stride := 0
			for _, row := range item.Rows {
				if len(row) > stride {
					stride = len(row)
				}
			}
			for ri, row := range item.Rows {
				for ci, cell := range row {
					add(i, FieldCell, ri*stride+ci, stride, cell)
				}
			}
		}
	}
	return refs
}
