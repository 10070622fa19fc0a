package discovery

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/openrsl/rslserver/internal/models"
	"github.com/openrsl/rslserver/internal/rsl"
)

func TestSeedDocument(t *testing.T) {
	pages := []models.DiscoveredPage{
		{URL: "https://example.com/a", Title: "Page A", LastModified: "2026-01-10"},
		{URL: "https://example.com/b", Description: "About B"},
		{URL: ""},
	}

	doc := SeedDocument(pages)

	if len(doc.Contents) != 2 {
		t.Fatalf("Expected 2 content blocks, got %d", len(doc.Contents))
	}

	first := doc.Contents[0]
	if first.URL != "https://example.com/a" {
		t.Errorf("Unexpected url: %s", first.URL)
	}
	if first.LastModified != "2026-01-10" {
		t.Errorf("Expected lastmod carried over, got %q", first.LastModified)
	}
	if first.Metadata["title"] != "Page A" {
		t.Errorf("Expected title metadata, got %v", first.Metadata)
	}
	if len(first.Licenses) != 1 || first.Licenses[0].Permits[0] != rsl.TermSearchIndex {
		t.Errorf("Expected default search-index license, got %+v", first.Licenses)
	}

	if doc.Contents[1].Metadata["description"] != "About B" {
		t.Errorf("Expected description metadata, got %v", doc.Contents[1].Metadata)
	}
}

func TestSeedDocument_ValidatesAndGenerates(t *testing.T) {
	pages := []models.DiscoveredPage{
		{URL: "https://example.com/a"},
		{URL: "https://example.com/b"},
	}

	doc := SeedDocument(pages)

	report := rsl.Validate(doc.Contents)
	if !report.IsValid {
		t.Errorf("Expected seeded draft to validate, got %v", report.Errors)
	}

	out := rsl.Generate(doc)
	if !strings.Contains(out, `url="https://example.com/a"`) {
		t.Errorf("Expected generated draft to contain discovered urls:\n%s", out)
	}
}

func TestTextSnippet(t *testing.T) {
	fragment := `<div><script>var x = 1;</script><p>Hello   world.</p><style>p{}</style><p>More text.</p></div>`

	snippet := textSnippet(fragment, 200)
	if snippet != "Hello world. More text." {
		t.Errorf("Unexpected snippet: %q", snippet)
	}

	short := textSnippet(fragment, 12)
	if short != "Hello" {
		t.Errorf("Expected snippet cut at word boundary, got %q", short)
	}
}

func TestTextSnippet_MultibyteRuneBoundary(t *testing.T) {
	// No spaces, three bytes per rune: a byte-indexed cut would split 語.
	snippet := textSnippet("<p>日本語のテキストです</p>", 7)

	if !utf8.ValidString(snippet) {
		t.Errorf("Expected valid UTF-8, got %q", snippet)
	}
	if snippet != "日本" {
		t.Errorf("Expected cut on rune boundary, got %q", snippet)
	}
}

func TestDefaultSitemapURL(t *testing.T) {
	got, err := defaultSitemapURL("https://example.com/some/page?x=1")
	if err != nil {
		t.Fatalf("defaultSitemapURL failed: %v", err)
	}
	if got != "https://example.com/sitemap.xml" {
		t.Errorf("Unexpected sitemap url: %s", got)
	}

	if _, err := defaultSitemapURL("not a url"); err == nil {
		t.Error("Expected error for invalid site url")
	}
}
