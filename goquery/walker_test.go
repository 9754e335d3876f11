package goquery_test

import (
	"strings"
	"testing"

	gq "github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagedoc"
	"github.com/fwojciec/pagedoc/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walk(t *testing.T, html string) []pagedoc.ContentItem {
	t.Helper()
	doc, err := gq.NewDocumentFromReader(strings.NewReader("<html><body><div id='root'>" + html + "</div></body></html>"))
	require.NoError(t, err)
	return goquery.WalkSelection(doc.Find("#root"))
}

func TestWalkSelection(t *testing.T) {
	t.Parallel()

	t.Run("headings carry their level", func(t *testing.T) {
		t.Parallel()

		items := walk(t, "<h2>Section</h2><h4>Subsection</h4>")

		require.Len(t, items, 2)
		assert.Equal(t, pagedoc.ItemHeading, items[0].Type)
		assert.Equal(t, 2, items[0].Level)
		assert.Equal(t, 4, items[1].Level)
	})

	t.Run("plain paragraph has text only", func(t *testing.T) {
		t.Parallel()

		items := walk(t, "<p>Just words.</p>")

		require.Len(t, items, 1)
		assert.Equal(t, "Just words.", items[0].Text)
		assert.Empty(t, items[0].HTML)
	})

	t.Run("paragraph with inline markup keeps HTML", func(t *testing.T) {
		t.Parallel()

		items := walk(t, `<p>See <a href="/docs">the docs</a> for <em>details</em>.</p>`)

		require.Len(t, items, 1)
		assert.Equal(t, "See the docs for details.", items[0].Text)
		assert.Contains(t, items[0].HTML, `<a href="/docs">`)
		assert.Contains(t, items[0].HTML, "<em>")
	})

	t.Run("ordered and unordered lists", func(t *testing.T) {
		t.Parallel()

		items := walk(t, "<ul><li>a</li><li>b</li></ul><ol><li>x</li></ol>")

		require.Len(t, items, 2)
		assert.False(t, items[0].Ordered)
		assert.Equal(t, []string{"a", "b"}, items[0].Items)
		assert.True(t, items[1].Ordered)
	})

	t.Run("figure with caption", func(t *testing.T) {
		t.Parallel()

		items := walk(t, `<figure><img src="/x.png" alt="A chart"><figcaption>Quarterly numbers</figcaption></figure>`)

		require.Len(t, items, 1)
		assert.Equal(t, pagedoc.ItemImage, items[0].Type)
		assert.Equal(t, "/x.png", items[0].Src)
		assert.Equal(t, "A chart", items[0].Alt)
		assert.Equal(t, "Quarterly numbers", items[0].Caption)
	})

	t.Run("lazy-loaded image uses data-src", func(t *testing.T) {
		t.Parallel()

		items := walk(t, `<img data-src="/lazy.png" alt="x">`)

		require.Len(t, items, 1)
		assert.Equal(t, "/lazy.png", items[0].Src)
	})

	t.Run("table with headers and rows", func(t *testing.T) {
		t.Parallel()

		items := walk(t, `<table>
			<thead><tr><th>Name</th><th>Age</th></tr></thead>
			<tbody><tr><td>Ann</td><td>30</td></tr><tr><td>Bob</td><td>40</td></tr></tbody>
		</table>`)

		require.Len(t, items, 1)
		assert.Equal(t, []string{"Name", "Age"}, items[0].Headers)
		assert.Equal(t, [][]string{{"Ann", "30"}, {"Bob", "40"}}, items[0].Rows)
	})

	t.Run("code block with language hint", func(t *testing.T) {
		t.Parallel()

		items := walk(t, `<pre><code class="language-python">print("hi")</code></pre>`)

		require.Len(t, items, 1)
		assert.Equal(t, pagedoc.ItemCode, items[0].Type)
		assert.Equal(t, `print("hi")`, items[0].Text)
		assert.Equal(t, "python", items[0].Language)
	})

	t.Run("blockquote and separator", func(t *testing.T) {
		t.Parallel()

		items := walk(t, "<blockquote>Famous words.</blockquote><hr>")

		require.Len(t, items, 2)
		assert.Equal(t, pagedoc.ItemQuote, items[0].Type)
		assert.Equal(t, pagedoc.ItemSeparator, items[1].Type)
	})

	t.Run("aside becomes an infobox group", func(t *testing.T) {
		t.Parallel()

		items := walk(t, "<aside><p>Heads up!</p></aside>")

		require.Len(t, items, 3)
		assert.Equal(t, pagedoc.ItemInfoboxStart, items[0].Type)
		assert.Equal(t, "Heads up!", items[1].Text)
		assert.Equal(t, pagedoc.ItemInfoboxEnd, items[2].Type)
	})

	t.Run("callout class becomes an infobox group", func(t *testing.T) {
		t.Parallel()

		items := walk(t, `<div class="callout warning"><p>Careful now.</p></div>`)

		require.Len(t, items, 3)
		assert.Equal(t, pagedoc.ItemInfoboxStart, items[0].Type)
		assert.Equal(t, pagedoc.ItemInfoboxEnd, items[2].Type)
	})

	t.Run("wrapper divs are flattened", func(t *testing.T) {
		t.Parallel()

		items := walk(t, `<div><div><p>Nested content.</p></div></div>`)

		require.Len(t, items, 1)
		assert.Equal(t, "Nested content.", items[0].Text)
	})

	t.Run("empty elements are dropped", func(t *testing.T) {
		t.Parallel()

		items := walk(t, "<p>   </p><h2></h2><ul></ul>")
		assert.Empty(t, items)
	})

	t.Run("whitespace is normalized", func(t *testing.T) {
		t.Parallel()

		items := walk(t, "<p>many\n\n   spaces\t here</p>")

		require.Len(t, items, 1)
		assert.Equal(t, "many spaces here", items[0].Text)
	})
}
