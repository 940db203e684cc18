package goquery_test

import (
	"testing"

	"github.com/fwojciec/webcrawler"
	"github.com/fwojciec/webcrawler/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_ExtractLinks(t *testing.T) {
	t.Parallel()

	t.Run("resolves relative links against the page URL", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="/about">About</a>
			<a href="guide/intro">Intro</a>
			<a href="../up">Up</a>
			<a href="https://other.test/x">Other</a>
		</body></html>`
		doc := goquery.NewDocument("https://a.test/docs/index.html", []byte(html))

		links, err := doc.ExtractLinks()

		require.NoError(t, err)
		assert.Equal(t, []string{
			"https://a.test/about",
			"https://a.test/docs/guide/intro",
			"https://a.test/up",
			"https://other.test/x",
		}, links)
	})

	t.Run("honors base element", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><base href="https://cdn.test/v2/"></head>
			<body><a href="page">Page</a></body></html>`
		doc := goquery.NewDocument("https://a.test/", []byte(html))

		links, err := doc.ExtractLinks()

		require.NoError(t, err)
		assert.Equal(t, []string{"https://cdn.test/v2/page"}, links)
	})

	t.Run("includes area elements", func(t *testing.T) {
		t.Parallel()

		html := `<map><area href="/region" shape="rect"></map>`
		doc := goquery.NewDocument("https://a.test/", []byte(html))

		links, err := doc.ExtractLinks()

		require.NoError(t, err)
		assert.Equal(t, []string{"https://a.test/region"}, links)
	})

	t.Run("skips non-http and fragment-only links", func(t *testing.T) {
		t.Parallel()

		html := `<body>
			<a href="#top">Top</a>
			<a href="mailto:me@a.test">Mail</a>
			<a href="javascript:void(0)">JS</a>
			<a href="tel:+100">Call</a>
			<a href="data:text/plain,hi">Data</a>
			<a href="ftp://files.a.test/x">FTP</a>
			<a href="   ">Blank</a>
			<a>No href</a>
			<a href="/kept">Kept</a>
		</body>`
		doc := goquery.NewDocument("https://a.test/", []byte(html))

		links, err := doc.ExtractLinks()

		require.NoError(t, err)
		assert.Equal(t, []string{"https://a.test/kept"}, links)
	})

	t.Run("strips fragments and removes duplicates", func(t *testing.T) {
		t.Parallel()

		html := `<body>
			<a href="/page#one">One</a>
			<a href="/page#two">Two</a>
			<a href="/page">Plain</a>
			<a href="/next">Next</a>
		</body>`
		doc := goquery.NewDocument("https://a.test/", []byte(html))

		links, err := doc.ExtractLinks()

		require.NoError(t, err)
		assert.Equal(t, []string{"https://a.test/page", "https://a.test/next"}, links)
	})

	t.Run("returns nothing for page without links", func(t *testing.T) {
		t.Parallel()

		doc := goquery.NewDocument("https://a.test/", []byte("<p>plain text</p>"))

		links, err := doc.ExtractLinks()

		require.NoError(t, err)
		assert.Empty(t, links)
	})

	t.Run("rejects invalid document URL", func(t *testing.T) {
		t.Parallel()

		doc := goquery.NewDocument("http://[::1", []byte(`<a href="/x">x</a>`))

		_, err := doc.ExtractLinks()

		assert.Equal(t, webcrawler.EINVALID, webcrawler.ErrorCode(err))
	})
}
