package discovery

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// textSnippet reduces an HTML fragment to at most maxLen characters of
// plain text, with scripts, styles and comments removed.
func textSnippet(fragment string, maxLen int) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	var builder strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			builder.WriteString(n.Data)
			builder.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	// Collapse runs of whitespace left behind by markup boundaries.
	text := strings.Join(strings.Fields(builder.String()), " ")
	if len(text) > maxLen {
		cut := strings.LastIndex(text[:maxLen], " ")
		if cut <= 0 {
			// No word boundary to cut on; back up to a rune boundary so a
			// multibyte rune is never split.
			cut = maxLen
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		text = text[:cut]
	}
	return text
}
