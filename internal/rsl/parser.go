package rsl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// Parse reasons carried by ParseError.
const (
	ReasonMalformedXML   = "malformed-xml"
	ReasonMissingRoot    = "missing-root"
	ReasonMissingURL     = "missing-url"
	ReasonInvalidBoolean = "invalid-boolean"
)

// ParseError is the hard-failure regime: the text could not be structurally
// understood, so validation and generation must not be attempted on it.
type ParseError struct {
	Reason  string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("rsl parse error (%s): %s", e.Reason, e.Message)
}

func parseErrorf(reason, format string, v ...interface{}) *ParseError {
	return &ParseError{Reason: reason, Message: fmt.Sprintf(format, v...)}
}

// Parse turns RSL XML text into a Document. sourceURLHint names where the
// text came from and only appears in error messages. Parsing is pure
// text-to-structure: no network access, no validation beyond structure.
//
// Extension preservation applies at the content level: unknown children and
// attributes of <content> survive into Metadata. Unknown top-level children
// of <rsl> have no content block to attach to and are skipped.
func Parse(xmlText string, sourceURLHint string) (*Document, error) {
	tree := etree.NewDocument()
	if err := tree.ReadFromString(xmlText); err != nil {
		return nil, parseErrorf(ReasonMalformedXML, "%s: %v", sourceURLHint, err)
	}

	root := tree.Root()
	if root == nil {
		return nil, parseErrorf(ReasonMissingRoot, "%s: document has no root element", sourceURLHint)
	}
	if root.Tag != "rsl" {
		return nil, parseErrorf(ReasonMissingRoot, "%s: unexpected root element %q, want <rsl>", sourceURLHint, root.Tag)
	}

	doc := &Document{}
	for _, child := range root.ChildElements() {
		if child.Tag != "content" {
			// Unknown top-level elements have no content block to attach
			// metadata to, so they are skipped.
			continue
		}
		content, err := parseContent(child)
		if err != nil {
			return nil, err
		}
		doc.Contents = append(doc.Contents, *content)
	}

	return doc, nil
}

func parseContent(el *etree.Element) (*Content, error) {
	content := &Content{}

	for _, attr := range el.Attr {
		switch attr.Key {
		case "url":
			content.URL = attr.Value
		case "server":
			content.LicenseServer = attr.Value
		case "encrypted":
			b, err := parseBool(attr.Value)
			if err != nil {
				return nil, err
			}
			content.Encrypted = b
		case "lastmod":
			content.LastModified = attr.Value
		case "xmlns":
			// Namespace declaration, not data.
		default:
			content.SetMetadata(attr.Key, attr.Value)
		}
	}

	if content.URL == "" {
		return nil, parseErrorf(ReasonMissingURL, "<content> element has no url attribute")
	}

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "license":
			license, err := parseLicense(child)
			if err != nil {
				return nil, err
			}
			content.Licenses = append(content.Licenses, *license)
		default:
			// Unmodeled extension element. Preserved so a parse/generate
			// round trip does not silently drop author-supplied fields.
			content.SetMetadata(child.Tag, strings.TrimSpace(child.Text()))
		}
	}

	return content, nil
}

func parseLicense(el *etree.Element) (*License, error) {
	license := &License{}

	for _, attr := range el.Attr {
		switch attr.Key {
		case "standard":
			b, err := parseBool(attr.Value)
			if err != nil {
				return nil, err
			}
			license.Standard = b
		case "name":
			license.Name = attr.Value
		}
	}

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "permits":
			license.Permits = appendTerm(license.Permits, termOf(child))
		case "prohibits":
			license.Prohibits = appendTerm(license.Prohibits, termOf(child))
		case "payment":
			license.Payment = &PaymentTerm{
				Type:     child.SelectAttrValue("type", ""),
				Amount:   child.SelectAttrValue("amount", ""),
				Currency: child.SelectAttrValue("currency", ""),
				URL:      child.SelectAttrValue("url", ""),
			}
		case "legal":
			license.Legal = &LegalTerm{
				Jurisdiction: child.SelectAttrValue("jurisdiction", ""),
				Warranty:     child.SelectAttrValue("warranty", ""),
				Disclaimer:   child.SelectAttrValue("disclaimer", ""),
			}
		}
	}

	// Permits and prohibits are sets; hold them in lexical order so equal
	// documents compare equal regardless of authoring order.
	sort.Strings(license.Permits)
	sort.Strings(license.Prohibits)

	return license, nil
}

// termOf reads a permission term from either the type attribute or, for
// older documents, the element text.
func termOf(el *etree.Element) string {
	if term := el.SelectAttrValue("type", ""); term != "" {
		return term
	}
	return strings.TrimSpace(el.Text())
}

// appendTerm adds a term to a set, dropping empties and duplicates.
func appendTerm(terms []string, term string) []string {
	if term == "" {
		return terms
	}
	for _, existing := range terms {
		if existing == term {
			return terms
		}
	}
	return append(terms, term)
}

// parseBool normalizes boolean-like tokens. Anything outside the accepted
// vocabulary is a hard parse failure rather than a silent default.
func parseBool(token string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, parseErrorf(ReasonInvalidBoolean, "cannot interpret %q as a boolean", token)
	}
}
